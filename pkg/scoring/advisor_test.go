package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plantops/sentinel/pkg/features"
)

func TestNewAdvisorValidatesThresholds(t *testing.T) {
	cases := []struct {
		name string
		t    Thresholds
		ok   bool
	}{
		{"defaults", DefaultThresholds(), true},
		{"inverted", Thresholds{High: 0.3, Medium: 0.7}, false},
		{"equal", Thresholds{High: 0.5, Medium: 0.5}, false},
		{"zero medium", Thresholds{High: 0.7, Medium: 0}, false},
		{"high at one", Thresholds{High: 1.0, Medium: 0.3}, false},
		{"custom", Thresholds{High: 0.9, Medium: 0.1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAdvisor(tc.t)
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestSeverityForTiers(t *testing.T) {
	a, err := NewAdvisor(DefaultThresholds())
	require.NoError(t, err)

	require.Equal(t, SeverityLow, a.SeverityFor(0.0))
	require.Equal(t, SeverityLow, a.SeverityFor(0.3)) // boundary stays low
	require.Equal(t, SeverityMedium, a.SeverityFor(0.31))
	require.Equal(t, SeverityMedium, a.SeverityFor(0.7)) // boundary stays medium
	require.Equal(t, SeverityHigh, a.SeverityFor(0.71))
	require.Equal(t, SeverityHigh, a.SeverityFor(1.0))
}

func TestSeverityMonotonic(t *testing.T) {
	a, err := NewAdvisor(DefaultThresholds())
	require.NoError(t, err)

	prev := SeverityLow
	for p := 0.0; p <= 1.0; p += 0.01 {
		s := a.SeverityFor(p)
		require.GreaterOrEqual(t, int(s), int(prev), "severity dropped at p=%g", p)
		prev = s
	}
}

func TestAdviseHighWearLeads(t *testing.T) {
	a, err := NewAdvisor(DefaultThresholds())
	require.NoError(t, err)

	assessment := RiskAssessment{
		FailureProbability: 0.85,
		Baseline:           -3.35,
		Attribution: map[features.FeatureName]float64{
			features.AirTemperature:     0.4,
			features.ProcessTemperature: -0.1,
			features.RotationalSpeed:    0.05,
			features.Torque:             0.2,
			features.MachineType:        -0.02,
			features.ToolWear:           1.9,
		},
	}
	s := a.Advise(assessment)

	require.Equal(t, SeverityHigh, s.Severity)
	require.Equal(t, "Immediate tool replacement recommended", s.Action)
	require.Contains(t, s.Reason, "Excessive tool wear")
	require.Contains(t, s.Reason, "Elevated air temperature")
	require.Equal(t, "Stop machine operation and isolate the equipment", s.Instructions[0])
	require.Contains(t, s.Instructions, "Replace worn tooling components")
	require.Equal(t, "Document the intervention in the maintenance log", s.Instructions[len(s.Instructions)-1])
}

func TestAdviseSkipsDecreasingDrivers(t *testing.T) {
	a, err := NewAdvisor(DefaultThresholds())
	require.NoError(t, err)

	// The largest contribution decreases risk; the action must come from
	// the leading increasing one.
	assessment := RiskAssessment{
		FailureProbability: 0.45,
		Attribution: map[features.FeatureName]float64{
			features.ToolWear:       -1.5,
			features.Torque:         0.8,
			features.AirTemperature: 0.1,
		},
	}
	s := a.Advise(assessment)

	require.Equal(t, SeverityMedium, s.Severity)
	require.Equal(t, "Load condition review recommended", s.Action)
	require.Contains(t, s.Reason, "Tool wear is low")
	require.Equal(t, "Schedule inspection within the current maintenance window", s.Instructions[0])
}

func TestAdviseNoIncreasingDriver(t *testing.T) {
	a, err := NewAdvisor(DefaultThresholds())
	require.NoError(t, err)

	assessment := RiskAssessment{
		FailureProbability: 0.05,
		Attribution: map[features.FeatureName]float64{
			features.ToolWear:       -1.2,
			features.AirTemperature: -0.4,
		},
	}
	s := a.Advise(assessment)

	require.Equal(t, SeverityLow, s.Severity)
	require.Equal(t, generalAction, s.Action)
	require.Equal(t, "Continue operation under routine monitoring", s.Instructions[0])
	require.Contains(t, s.Instructions, "Perform a comprehensive system diagnostic")
}

func TestAdviseDeterministic(t *testing.T) {
	a, err := NewAdvisor(DefaultThresholds())
	require.NoError(t, err)

	assessment := RiskAssessment{
		FailureProbability: 0.5,
		Attribution: map[features.FeatureName]float64{
			features.AirTemperature: 0.5,
			features.Torque:         0.5,
			features.ToolWear:       -0.2,
		},
	}
	first := a.Advise(assessment)
	for i := 0; i < 50; i++ {
		require.Equal(t, first, a.Advise(assessment))
	}
}
