package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plantops/sentinel/pkg/features"
)

const profileYAML = `
version: "test"
intercept: -2.5
type_encoding: {L: 0, M: 1, H: 2}
features:
  - {name: "Air temperature [K]", weight: 0.5, mean: 300.0, scale: 2.0}
  - {name: "Process temperature [K]", weight: -0.2, mean: 310.0, scale: 1.5}
  - {name: "Rotational speed [rpm]", weight: -0.6, mean: 1538.0, scale: 180.0}
  - {name: "Torque [Nm]", weight: 0.9, mean: 40.0, scale: 10.0}
  - {name: "Type", weight: -0.1, mean: 0.7, scale: 0.8}
  - {name: "Tool wear [min]", weight: 0.8, mean: 108.0, scale: 64.0, min: 0, max: 400}
`

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadModelProfile(t *testing.T) {
	p, err := LoadModelProfile(writeProfile(t, profileYAML))
	require.NoError(t, err)
	require.Equal(t, "test", p.Version)
	require.InDelta(t, -2.5, p.Intercept, 1e-12)

	model, err := p.Model()
	require.NoError(t, err)
	require.InDelta(t, -2.5, model.Baseline(), 1e-12)

	cfg, err := p.NormalizerConfig()
	require.NoError(t, err)
	require.InDelta(t, 300.0, cfg.Scaling[0].Mean, 1e-12)

	// min/max on tool wear become validation bounds.
	b, ok := cfg.Bounds[features.ToolWear]
	require.True(t, ok)
	require.Equal(t, 400.0, b.Max)
	_, ok = cfg.Bounds[features.AirTemperature]
	require.False(t, ok)
}

func TestLoadModelProfileMissingFile(t *testing.T) {
	_, err := LoadModelProfile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadModelProfileWrongFeatureOrder(t *testing.T) {
	bad := `
version: "test"
intercept: 0.0
type_encoding: {L: 0}
features:
  - {name: "Torque [Nm]", weight: 1.0, mean: 0.0, scale: 1.0}
  - {name: "Air temperature [K]", weight: 1.0, mean: 0.0, scale: 1.0}
  - {name: "Process temperature [K]", weight: 1.0, mean: 0.0, scale: 1.0}
  - {name: "Rotational speed [rpm]", weight: 1.0, mean: 0.0, scale: 1.0}
  - {name: "Type", weight: 1.0, mean: 0.0, scale: 1.0}
  - {name: "Tool wear [min]", weight: 1.0, mean: 0.0, scale: 1.0}
`
	_, err := LoadModelProfile(writeProfile(t, bad))
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected")
}

func TestDefaultModelProfileValid(t *testing.T) {
	p := DefaultModelProfile()
	require.NoError(t, p.validate())

	model, err := p.Model()
	require.NoError(t, err)

	// The baseline reading (all features at the training mean) must land
	// firmly on the healthy side.
	a := model.Score(features.FeatureVector{})
	require.Less(t, a.FailureProbability, 0.1)
}
