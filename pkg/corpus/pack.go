package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// SupportedPackSchema is the semver range of regulation pack schemas this
// engine can load.
const SupportedPackSchema = ">= 1.0.0, < 2.0.0"

// Pack is one regulation pack file (pack_*.yaml): a set of rules from a
// single source, versioned by pack schema.
type Pack struct {
	SchemaVersion string     `yaml:"schema_version"`
	Source        string     `yaml:"source"`
	Category      string     `yaml:"category,omitempty"`
	Rules         []PackRule `yaml:"rules"`
}

// PackRule is one rule as authored in a pack. Category falls back to the
// pack-level category when empty.
type PackRule struct {
	RuleID   string `yaml:"rule_id"`
	Category string `yaml:"category,omitempty"`
	Text     string `yaml:"text"`
}

// ParsePack decodes and validates a single pack document.
func ParsePack(data []byte, name string) (*Pack, error) {
	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse pack %s: %w", name, err)
	}

	if pack.SchemaVersion == "" {
		return nil, fmt.Errorf("pack %s: missing schema_version", name)
	}
	version, err := semver.NewVersion(pack.SchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("pack %s: invalid schema_version %q: %w", name, pack.SchemaVersion, err)
	}
	constraint, err := semver.NewConstraint(SupportedPackSchema)
	if err != nil {
		return nil, err
	}
	if !constraint.Check(version) {
		return nil, fmt.Errorf("pack %s: schema_version %s outside supported range %q",
			name, pack.SchemaVersion, SupportedPackSchema)
	}

	if pack.Source == "" {
		return nil, fmt.Errorf("pack %s: missing source", name)
	}
	if len(pack.Rules) == 0 {
		return nil, fmt.Errorf("pack %s: no rules", name)
	}
	for i, r := range pack.Rules {
		if r.RuleID == "" {
			return nil, fmt.Errorf("pack %s: rule %d: missing rule_id", name, i)
		}
		if strings.TrimSpace(r.Text) == "" {
			return nil, fmt.Errorf("pack %s: rule %q: empty text", name, r.RuleID)
		}
	}
	return &pack, nil
}

// Entries flattens the pack into corpus rule entries.
func (p *Pack) Entries() []RuleEntry {
	entries := make([]RuleEntry, 0, len(p.Rules))
	for _, r := range p.Rules {
		category := r.Category
		if category == "" {
			category = p.Category
		}
		entries = append(entries, RuleEntry{
			RuleID:         r.RuleID,
			Source:         p.Source,
			Category:       category,
			RegulationText: r.Text,
		})
	}
	return entries
}

// PackSource supplies raw pack documents for a corpus build. Implemented by
// the local directory loader and the object-storage fetcher.
type PackSource interface {
	// Packs returns pack documents keyed by a stable name.
	Packs() (map[string][]byte, error)
}

// DirSource loads pack_*.yaml files from a local directory.
type DirSource struct {
	Dir string
}

// Packs reads every pack_*.yaml under the directory.
func (d DirSource) Packs() (map[string][]byte, error) {
	matches, err := filepath.Glob(filepath.Join(d.Dir, "pack_*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no regulation packs in %s", d.Dir)
	}

	packs := make(map[string][]byte, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		packs[filepath.Base(path)] = data
	}
	return packs, nil
}

// LoadEntries parses every pack from a source and merges the rules.
// Duplicate regulation texts are dropped (first pack in name order wins),
// duplicate rule IDs are an error. The result is deterministic for a given
// source content.
func LoadEntries(src PackSource) ([]RuleEntry, error) {
	raw, err := src.Packs()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []RuleEntry
	seenID := make(map[string]string)
	seenText := make(map[string]bool)
	for _, name := range names {
		pack, err := ParsePack(raw[name], name)
		if err != nil {
			return nil, err
		}
		for _, e := range pack.Entries() {
			if prev, ok := seenID[e.RuleID]; ok {
				return nil, fmt.Errorf("rule %q in %s already defined in %s", e.RuleID, name, prev)
			}
			seenID[e.RuleID] = name

			key := strings.Join(tokenize(e.RegulationText), " ")
			if seenText[key] {
				continue
			}
			seenText[key] = true
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no rules after deduplication")
	}
	return entries, nil
}
