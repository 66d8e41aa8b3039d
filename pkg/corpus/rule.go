// Package corpus maintains the regulatory rule corpus: loading regulation
// packs, fitting the text representation, and serving deterministic
// similarity retrievals from an immutable index snapshot.
package corpus

// RuleEntry is one regulatory rule in the corpus. Entries are populated at
// corpus build time and read-only at request time.
type RuleEntry struct {
	RuleID         string `json:"rule_id" yaml:"rule_id"`
	Source         string `json:"source" yaml:"source"`
	Category       string `json:"category" yaml:"category"`
	RegulationText string `json:"regulation_text" yaml:"regulation_text"`
}

// Match pairs a rule with its similarity to a query.
type Match struct {
	Rule  RuleEntry `json:"rule"`
	Score float64   `json:"score"`
}
