package features

import (
	"fmt"
	"math"
)

// Scaling holds the fitted standardization parameters for one feature.
type Scaling struct {
	Mean  float64 `yaml:"mean" json:"mean"`
	Scale float64 `yaml:"scale" json:"scale"`
}

// Bounds is an optional physical validity range for a raw reading.
// Readings outside the range are rejected, never clamped.
type Bounds struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// NormalizerConfig carries the fitted parameters the normalizer applies.
// TypeEncoding maps categorical machine-type codes to the numeric values
// used at fit time.
type NormalizerConfig struct {
	Scaling      [NumFeatures]Scaling
	TypeEncoding map[string]float64
	Bounds       map[FeatureName]Bounds
}

// Normalizer validates raw readings and scales them into the scorer's
// trained numeric space. It is a pure transform; construction is the only
// place configuration is checked.
type Normalizer struct {
	cfg NormalizerConfig
}

// NewNormalizer validates the fitted parameters and returns a normalizer.
func NewNormalizer(cfg NormalizerConfig) (*Normalizer, error) {
	for i, s := range cfg.Scaling {
		if s.Scale == 0 {
			return nil, fmt.Errorf("feature %q: zero scale", Schema[i])
		}
	}
	if len(cfg.TypeEncoding) == 0 {
		return nil, fmt.Errorf("empty type encoding")
	}
	return &Normalizer{cfg: cfg}, nil
}

// Normalize converts a raw reading into a standardized feature vector.
// It fails with a NormalizationError before any scaling work if a required
// field is absent, the machine type is unrecognized, or a reading falls
// outside its configured bounds.
func (n *Normalizer) Normalize(raw RawReading) (FeatureVector, error) {
	var v FeatureVector

	if raw.MachineType == "" {
		return v, &NormalizationError{Kind: MissingField, Field: MachineType, Detail: "machine type is required"}
	}
	encoded, ok := n.cfg.TypeEncoding[raw.MachineType]
	if !ok {
		return v, &NormalizationError{
			Kind:   InvalidType,
			Field:  MachineType,
			Detail: fmt.Sprintf("unrecognized machine type %q", raw.MachineType),
		}
	}

	values := raw.numeric()
	values[4] = encoded

	for i := 0; i < NumFeatures; i++ {
		if err := n.check(Schema[i], values[i]); err != nil {
			return FeatureVector{}, err
		}
		s := n.cfg.Scaling[i]
		v[i] = (values[i] - s.Mean) / s.Scale
	}
	return v, nil
}

// NormalizeEncoded scales a reading whose machine type is already encoded
// numerically, as supplied by the single-prediction wire format.
func (n *Normalizer) NormalizeEncoded(values [NumFeatures]float64) (FeatureVector, error) {
	var v FeatureVector
	for i := 0; i < NumFeatures; i++ {
		if err := n.check(Schema[i], values[i]); err != nil {
			return FeatureVector{}, err
		}
		s := n.cfg.Scaling[i]
		v[i] = (values[i] - s.Mean) / s.Scale
	}
	return v, nil
}

func (n *Normalizer) check(name FeatureName, value float64) error {
	if math.IsNaN(value) {
		return &NormalizationError{Kind: MissingField, Field: name, Detail: "reading is not a number"}
	}
	if math.IsInf(value, 0) {
		return &NormalizationError{Kind: OutOfDomain, Field: name, Detail: "reading is not finite"}
	}
	if b, ok := n.cfg.Bounds[name]; ok {
		if value < b.Min || value > b.Max {
			return &NormalizationError{
				Kind:   OutOfDomain,
				Field:  name,
				Detail: fmt.Sprintf("reading %g outside [%g, %g]", value, b.Min, b.Max),
			}
		}
	}
	return nil
}
