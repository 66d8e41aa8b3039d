package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/plantops/sentinel/pkg/compliance"
	"github.com/plantops/sentinel/pkg/scoring"
)

// EngineProfile groups the tunable decision thresholds: severity tier
// boundaries for the advisor and the compliance matcher's evaluation
// policy. The defaults are the nominal policy; deployments override them
// with a profile file rather than code changes.
type EngineProfile struct {
	Severity   scoring.Thresholds       `yaml:"severity" json:"severity"`
	Compliance compliance.MatcherConfig `yaml:"compliance" json:"compliance"`
}

// DefaultEngineProfile returns the nominal decision policy.
func DefaultEngineProfile() *EngineProfile {
	return &EngineProfile{
		Severity:   scoring.DefaultThresholds(),
		Compliance: compliance.DefaultMatcherConfig(),
	}
}

// LoadEngineProfile reads an engine profile from a YAML file. Omitted
// sections keep their defaults.
func LoadEngineProfile(path string) (*EngineProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load engine profile: %w", err)
	}

	profile := DefaultEngineProfile()
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("parse engine profile %s: %w", path, err)
	}
	return profile, nil
}
