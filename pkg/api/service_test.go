package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/plantops/sentinel/pkg/compliance"
	"github.com/plantops/sentinel/pkg/features"
	"github.com/plantops/sentinel/pkg/observability"
)

func TestEngineOperationsTraced(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	svc := testService(t).WithObservability(&observability.Provider{})
	ctx := context.Background()

	values := [features.NumFeatures]float64{298.1, 308.6, 1551, 42.8, 1, 0}
	_, err := svc.PredictEncoded(ctx, values, "M14860")
	require.NoError(t, err)

	_, err = svc.PredictBatch(ctx, []tabularRow{
		{Reading: features.RawReading{
			AirTemperature:     298.1,
			ProcessTemperature: 308.6,
			RotationalSpeed:    1551,
			Torque:             42.8,
			MachineType:        "M",
			ToolWear:           0,
		}, ProductID: "M14860"},
	})
	require.NoError(t, err)

	_, err = svc.CheckCompliance(ctx, []compliance.MaintenanceAction{
		{
			ID:             "act-1",
			Component:      "coolant pump",
			Description:    "Replace the coolant pump seal assembly",
			ProposedAction: "Replace seal and verify torque settings",
			Timestamp:      time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, span := range recorder.Ended() {
		names[span.Name()] = true
	}
	require.True(t, names["scoring.predict"], "spans seen: %v", names)
	require.True(t, names["scoring.predict_batch"], "spans seen: %v", names)
	require.True(t, names["compliance.evaluate_batch"], "spans seen: %v", names)
}
