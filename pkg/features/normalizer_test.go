package features

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig() NormalizerConfig {
	cfg := NormalizerConfig{
		TypeEncoding: map[string]float64{"L": 0, "M": 1, "H": 2},
	}
	for i := range cfg.Scaling {
		cfg.Scaling[i] = Scaling{Mean: 0, Scale: 1}
	}
	return cfg
}

func TestNewNormalizerRejectsZeroScale(t *testing.T) {
	cfg := testConfig()
	cfg.Scaling[3].Scale = 0

	_, err := NewNormalizer(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), string(Torque))
}

func TestNewNormalizerRejectsEmptyEncoding(t *testing.T) {
	cfg := testConfig()
	cfg.TypeEncoding = nil

	_, err := NewNormalizer(cfg)
	require.Error(t, err)
}

func TestNormalizeStandardizes(t *testing.T) {
	cfg := testConfig()
	cfg.Scaling[0] = Scaling{Mean: 300, Scale: 2}
	cfg.Scaling[5] = Scaling{Mean: 100, Scale: 50}
	n, err := NewNormalizer(cfg)
	require.NoError(t, err)

	v, err := n.Normalize(RawReading{
		AirTemperature:     302,
		ProcessTemperature: 310,
		RotationalSpeed:    1500,
		Torque:             40,
		MachineType:        "M",
		ToolWear:           150,
	})
	require.NoError(t, err)
	require.InDelta(t, 1.0, v[0], 1e-12)
	require.InDelta(t, 1.0, v[4], 1e-12) // encoded "M"
	require.InDelta(t, 1.0, v[5], 1e-12)
}

func TestNormalizeUnknownMachineType(t *testing.T) {
	n, err := NewNormalizer(testConfig())
	require.NoError(t, err)

	_, err = n.Normalize(RawReading{MachineType: "X"})
	var nerr *NormalizationError
	require.ErrorAs(t, err, &nerr)
	require.Equal(t, InvalidType, nerr.Kind)
	require.Equal(t, MachineType, nerr.Field)
}

func TestNormalizeMissingMachineType(t *testing.T) {
	n, err := NewNormalizer(testConfig())
	require.NoError(t, err)

	_, err = n.Normalize(RawReading{})
	var nerr *NormalizationError
	require.ErrorAs(t, err, &nerr)
	require.Equal(t, MissingField, nerr.Kind)
}

func TestNormalizeRejectsNaNAndInf(t *testing.T) {
	n, err := NewNormalizer(testConfig())
	require.NoError(t, err)

	_, err = n.Normalize(RawReading{MachineType: "L", Torque: math.NaN()})
	var nerr *NormalizationError
	require.ErrorAs(t, err, &nerr)
	require.Equal(t, MissingField, nerr.Kind)
	require.Equal(t, Torque, nerr.Field)

	_, err = n.Normalize(RawReading{MachineType: "L", ToolWear: math.Inf(1)})
	require.ErrorAs(t, err, &nerr)
	require.Equal(t, OutOfDomain, nerr.Kind)
}

func TestNormalizeBoundsRejectNotClamp(t *testing.T) {
	cfg := testConfig()
	cfg.Bounds = map[FeatureName]Bounds{
		ToolWear: {Min: 0, Max: 300},
	}
	n, err := NewNormalizer(cfg)
	require.NoError(t, err)

	_, err = n.Normalize(RawReading{MachineType: "L", ToolWear: 400})
	var nerr *NormalizationError
	require.ErrorAs(t, err, &nerr)
	require.Equal(t, OutOfDomain, nerr.Kind)
	require.Equal(t, ToolWear, nerr.Field)

	// In range passes untouched.
	v, err := n.Normalize(RawReading{MachineType: "L", ToolWear: 300})
	require.NoError(t, err)
	require.InDelta(t, 300.0, v[5], 1e-12)
}

func TestNormalizeEncodedChecksEverySlot(t *testing.T) {
	n, err := NewNormalizer(testConfig())
	require.NoError(t, err)

	_, err = n.NormalizeEncoded([NumFeatures]float64{0, 0, 0, 0, math.NaN(), 0})
	var nerr *NormalizationError
	require.True(t, errors.As(err, &nerr))
	require.Equal(t, MachineType, nerr.Field)
}

func TestNormalizeDeterministic(t *testing.T) {
	n, err := NewNormalizer(testConfig())
	require.NoError(t, err)

	raw := RawReading{
		AirTemperature:     298.1,
		ProcessTemperature: 308.6,
		RotationalSpeed:    1551,
		Torque:             42.8,
		MachineType:        "M",
		ToolWear:           0,
	}
	a, err := n.Normalize(raw)
	require.NoError(t, err)
	b, err := n.Normalize(raw)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
