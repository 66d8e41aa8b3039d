package api

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/plantops/sentinel/pkg/features"
)

// tabularRow is one parsed telemetry row: the raw reading plus the optional
// per-row product identifier.
type tabularRow struct {
	Reading   features.RawReading
	ProductID string
}

// parseTelemetryCSV reads a telemetry export. All schema columns are
// required; the failure-mode flag columns and Product ID are optional. A
// malformed row fails the whole file with the offending row named; rows
// are never silently skipped.
func parseTelemetryCSV(r io.Reader) ([]tabularRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range features.Schema {
		if _, ok := colIdx[string(name)]; !ok {
			missing = append(missing, string(name))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	productCol, hasProduct := colIdx[features.ProductIDColumn]

	var rows []tabularRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		field := func(name features.FeatureName) string {
			return strings.TrimSpace(record[colIdx[string(name)]])
		}
		number := func(name features.FeatureName) (float64, error) {
			v, err := strconv.ParseFloat(field(name), 64)
			if err != nil {
				return 0, fmt.Errorf("row %d: column %q: %w", line, name, err)
			}
			return v, nil
		}

		var row tabularRow
		if row.Reading.AirTemperature, err = number(features.AirTemperature); err != nil {
			return nil, err
		}
		if row.Reading.ProcessTemperature, err = number(features.ProcessTemperature); err != nil {
			return nil, err
		}
		if row.Reading.RotationalSpeed, err = number(features.RotationalSpeed); err != nil {
			return nil, err
		}
		if row.Reading.Torque, err = number(features.Torque); err != nil {
			return nil, err
		}
		if row.Reading.ToolWear, err = number(features.ToolWear); err != nil {
			return nil, err
		}
		row.Reading.MachineType = field(features.MachineType)

		for _, flag := range features.FlagColumns {
			idx, ok := colIdx[flag]
			if !ok {
				continue
			}
			v := strings.TrimSpace(record[idx])
			if v != "" && v != "0" && v != "1" {
				return nil, fmt.Errorf("row %d: column %q: expected 0 or 1, got %q", line, flag, v)
			}
		}

		if hasProduct {
			row.ProductID = strings.TrimSpace(record[productCol])
		}
		rows = append(rows, row)
	}
	return rows, nil
}
