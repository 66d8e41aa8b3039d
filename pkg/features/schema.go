// Package features defines the sensor feature schema shared by the
// normalizer and the risk scorer, and converts raw process readings into
// the scorer's standardized numeric space.
package features

// FeatureName identifies one feature in the fixed schema. The names match
// the column headers of the telemetry exports the engine was fitted on, so
// they double as the human-readable keys in API responses.
type FeatureName string

const (
	AirTemperature     FeatureName = "Air temperature [K]"
	ProcessTemperature FeatureName = "Process temperature [K]"
	RotationalSpeed    FeatureName = "Rotational speed [rpm]"
	Torque             FeatureName = "Torque [Nm]"
	MachineType        FeatureName = "Type"
	ToolWear           FeatureName = "Tool wear [min]"
)

// NumFeatures is the fixed length of a feature vector.
const NumFeatures = 6

// Schema lists the features in wire order. The order is load-bearing: the
// normalizer emits vectors in this order and the scorer's fitted
// coefficients are indexed by it.
var Schema = [NumFeatures]FeatureName{
	AirTemperature,
	ProcessTemperature,
	RotationalSpeed,
	Torque,
	MachineType,
	ToolWear,
}

// FlagColumns are the optional failure-mode indicator columns accepted in
// tabular uploads. They are validated when present but do not enter the
// feature vector.
var FlagColumns = []string{"TWF", "HDF", "PWF", "OSF", "RNF"}

// ProductIDColumn is the optional per-row identifier column in tabular uploads.
const ProductIDColumn = "Product ID"

// RawReading is one unprocessed sensor observation. MachineType carries the
// categorical product class ("H", "M" or "L"); all other fields are physical
// measurements in the units named by the schema.
type RawReading struct {
	AirTemperature     float64
	ProcessTemperature float64
	RotationalSpeed    float64
	Torque             float64
	MachineType        string
	ToolWear           float64
}

// FeatureVector is a standardized reading ready for scoring: each slot holds
// (raw - mean) / scale for the feature at the same index in Schema.
type FeatureVector [NumFeatures]float64

// numeric returns the reading's non-categorical values keyed by schema index.
func (r RawReading) numeric() map[int]float64 {
	return map[int]float64{
		0: r.AirTemperature,
		1: r.ProcessTemperature,
		2: r.RotationalSpeed,
		3: r.Torque,
		5: r.ToolWear,
	}
}
