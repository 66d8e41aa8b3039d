// Package compliance evaluates proposed maintenance actions against the
// regulatory rule corpus and aggregates the results into auditable reports.
package compliance

import (
	"fmt"
	"time"
)

// MaintenanceAction is the unit of compliance evaluation, supplied by the
// caller and never mutated.
type MaintenanceAction struct {
	ID             string    `json:"id"`
	Component      string    `json:"component"`
	Description    string    `json:"description"`
	ProposedAction string    `json:"proposed_action"`
	Timestamp      time.Time `json:"timestamp"`
}

// ValidationError reports a malformed action field. Always recoverable by
// the caller correcting the input.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid maintenance action: %s: %s", e.Field, e.Detail)
}

// Validate checks the action eagerly, before any retrieval work.
func (a MaintenanceAction) Validate() error {
	switch {
	case a.ID == "":
		return &ValidationError{Field: "id", Detail: "required"}
	case a.Component == "":
		return &ValidationError{Field: "component", Detail: "required"}
	case a.Description == "":
		return &ValidationError{Field: "description", Detail: "required"}
	case a.ProposedAction == "":
		return &ValidationError{Field: "proposed_action", Detail: "required"}
	}
	return nil
}

// comparisonText builds the retrieval query from the action's fields, in
// the same shape the corpus was tuned against.
func (a MaintenanceAction) comparisonText() string {
	return fmt.Sprintf("Component: %s\nAction: %s\nDescription: %s",
		a.Component, a.ProposedAction, a.Description)
}
