package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/plantops/sentinel/pkg/features"
)

// CoefficientProfile is the fitted parameter block for one feature.
// Min/Max, when present, become validation bounds in the normalizer.
type CoefficientProfile struct {
	Name   string   `yaml:"name" json:"name"`
	Weight float64  `yaml:"weight" json:"weight"`
	Mean   float64  `yaml:"mean" json:"mean"`
	Scale  float64  `yaml:"scale" json:"scale"`
	Min    *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max    *float64 `yaml:"max,omitempty" json:"max,omitempty"`
}

// ModelProfile is the serialized form of a fitted model: standardization
// parameters, logistic coefficients and the categorical encoding, exported
// together from the training pipeline.
type ModelProfile struct {
	Version      string               `yaml:"version" json:"version"`
	Intercept    float64              `yaml:"intercept" json:"intercept"`
	Features     []CoefficientProfile `yaml:"features" json:"features"`
	TypeEncoding map[string]float64   `yaml:"type_encoding" json:"type_encoding"`
}

// LoadModelProfile reads a fitted model profile from a YAML file.
func LoadModelProfile(path string) (*ModelProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load model profile: %w", err)
	}
	var profile ModelProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse model profile: %w", err)
	}
	if err := profile.validate(); err != nil {
		return nil, fmt.Errorf("model profile %s: %w", path, err)
	}
	return &profile, nil
}

// DefaultModelProfile returns the parameters shipped with the engine,
// fitted on the reference milling-machine telemetry set.
func DefaultModelProfile() *ModelProfile {
	return &ModelProfile{
		Version:   "2024.2",
		Intercept: -3.35,
		Features: []CoefficientProfile{
			{Name: string(features.AirTemperature), Weight: 0.45, Mean: 300.0, Scale: 2.0},
			{Name: string(features.ProcessTemperature), Weight: -0.25, Mean: 310.0, Scale: 1.48},
			{Name: string(features.RotationalSpeed), Weight: -0.60, Mean: 1538.8, Scale: 179.3},
			{Name: string(features.Torque), Weight: 0.85, Mean: 39.99, Scale: 9.97},
			{Name: string(features.MachineType), Weight: -0.10, Mean: 0.70, Scale: 0.78},
			{Name: string(features.ToolWear), Weight: 0.80, Mean: 107.95, Scale: 63.65},
		},
		TypeEncoding: map[string]float64{"L": 0, "M": 1, "H": 2},
	}
}

func (p *ModelProfile) validate() error {
	if len(p.Features) != features.NumFeatures {
		return fmt.Errorf("expected %d features, got %d", features.NumFeatures, len(p.Features))
	}
	for i, c := range p.Features {
		if c.Name != string(features.Schema[i]) {
			return fmt.Errorf("feature %d: expected %q, got %q", i, features.Schema[i], c.Name)
		}
		if c.Scale == 0 {
			return fmt.Errorf("feature %q: zero scale", c.Name)
		}
	}
	if len(p.TypeEncoding) == 0 {
		return fmt.Errorf("missing type encoding")
	}
	return nil
}

// NormalizerConfig derives the normalizer's fitted parameters from the profile.
func (p *ModelProfile) NormalizerConfig() (features.NormalizerConfig, error) {
	if err := p.validate(); err != nil {
		return features.NormalizerConfig{}, err
	}
	cfg := features.NormalizerConfig{
		TypeEncoding: p.TypeEncoding,
		Bounds:       make(map[features.FeatureName]features.Bounds),
	}
	for i, c := range p.Features {
		cfg.Scaling[i] = features.Scaling{Mean: c.Mean, Scale: c.Scale}
		if c.Min != nil && c.Max != nil {
			cfg.Bounds[features.Schema[i]] = features.Bounds{Min: *c.Min, Max: *c.Max}
		}
	}
	return cfg, nil
}

// Model builds the fitted scorer from the profile.
func (p *ModelProfile) Model() (*Model, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	var weights [features.NumFeatures]float64
	for i, c := range p.Features {
		weights[i] = c.Weight
	}
	return NewModel(p.Intercept, weights)
}
