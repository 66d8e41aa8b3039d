package features

import "fmt"

// ErrorKind classifies a normalization failure.
type ErrorKind int

const (
	// MissingField means a required reading was absent or not a number.
	MissingField ErrorKind = iota + 1
	// InvalidType means the categorical machine type was not a recognized code.
	InvalidType
	// OutOfDomain means a reading fell outside the configured physical bounds.
	OutOfDomain
)

func (k ErrorKind) String() string {
	switch k {
	case MissingField:
		return "MISSING_FIELD"
	case InvalidType:
		return "INVALID_TYPE"
	case OutOfDomain:
		return "OUT_OF_DOMAIN"
	}
	return "UNKNOWN"
}

// NormalizationError reports a field-level validation failure. It is always
// recoverable by the caller correcting the input; the engine never
// substitutes defaults for a bad reading.
type NormalizationError struct {
	Kind   ErrorKind
	Field  FeatureName
	Detail string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %q: %s: %s", e.Field, e.Kind, e.Detail)
}
