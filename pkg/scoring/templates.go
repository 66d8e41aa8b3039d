package scoring

import "github.com/plantops/sentinel/pkg/features"

// featureTemplate holds the fixed message fragments for one feature:
// the recommended action when it leads the risk drivers, the reason text
// for a risk-increasing versus risk-decreasing contribution, and the
// feature-specific checklist steps.
type featureTemplate struct {
	Action     string
	Increasing string
	Decreasing string
	Checklist  []string
}

var templates = map[features.FeatureName]featureTemplate{
	features.ToolWear: {
		Action:     "Immediate tool replacement recommended",
		Increasing: "Excessive tool wear is the primary factor contributing to potential failure.",
		Decreasing: "Tool wear is low and currently reduces the failure risk.",
		Checklist: []string{
			"Replace worn tooling components",
			"Perform calibration check on the replaced tooling",
		},
	},
	features.AirTemperature: {
		Action:     "Cooling system inspection needed",
		Increasing: "Elevated air temperature detected beyond the optimal operating range.",
		Decreasing: "Ambient air temperature is within range and reduces the failure risk.",
		Checklist: []string{
			"Check coolant levels",
			"Inspect ventilation systems",
			"Clean heat exchangers",
			"Monitor air temperature for 24 hours",
		},
	},
	features.ProcessTemperature: {
		Action:     "Process cooling verification needed",
		Increasing: "Process temperature is elevated relative to the ambient baseline.",
		Decreasing: "Process temperature tracks the ambient baseline and reduces the failure risk.",
		Checklist: []string{
			"Verify process coolant flow rate",
			"Inspect temperature sensor calibration",
			"Monitor the air-to-process temperature differential",
		},
	},
	features.RotationalSpeed: {
		Action:     "Drive train inspection recommended",
		Increasing: "Rotational speed deviates from the nominal operating band.",
		Decreasing: "Rotational speed is within the nominal operating band.",
		Checklist: []string{
			"Inspect spindle bearings for play",
			"Verify drive controller setpoints",
			"Check for mechanical obstruction",
		},
	},
	features.Torque: {
		Action:     "Load condition review recommended",
		Increasing: "Sustained high torque indicates overstrain on the drive train.",
		Decreasing: "Torque load is moderate and reduces the failure risk.",
		Checklist: []string{
			"Review recent load profiles for overstrain events",
			"Inspect coupling and gearbox",
			"Verify torque sensor calibration",
		},
	},
	features.MachineType: {
		Action:     "Review duty cycle against product class rating",
		Increasing: "The machine's product class is associated with elevated failure rates at this duty cycle.",
		Decreasing: "The machine's product class is associated with lower failure rates at this duty cycle.",
		Checklist: []string{
			"Compare the current duty cycle with the class rating",
			"Review maintenance interval for this product class",
		},
	},
}

// generalAction and generalChecklist cover assessments with no
// risk-increasing driver among the templated features.
const generalAction = "General maintenance inspection recommended"

var generalChecklist = []string{
	"Perform a comprehensive system diagnostic",
	"Review the full sensor trend history",
}
