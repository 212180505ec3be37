package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitWiresInjectedExporters(t *testing.T) {
	var logs bytes.Buffer
	spans := tracetest.NewInMemoryExporter()
	reader := sdkmetric.NewManualReader()
	ctx := context.Background()

	instruments, shutdown, err := Init(ctx, "orders-test",
		WithLogWriter(&logs),
		WithSpanExporter(spans),
		WithMetricReader(reader),
	)
	require.NoError(t, err)

	instruments.Logger.Info("hello", slog.Int64("order.id", 7))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	require.Equal(t, "orders-test", entry["service"])
	require.EqualValues(t, 7, entry["order.id"])

	counter, err := instruments.Meter("test").Int64Counter("orders.test.count")
	require.NoError(t, err)
	counter.Add(ctx, 2)
	var rm metricdata.ResourceMetrics
	require.NoError(t, instruments.MetricReader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Equal(t, int64(2), sum.DataPoints[0].Value)

	_, span := instruments.Tracer("test").Start(ctx, "op")
	span.End()
	provider, ok := instruments.TracerProvider.(*sdktrace.TracerProvider)
	require.True(t, ok)
	require.NoError(t, provider.ForceFlush(ctx))
	require.Len(t, spans.GetSpans(), 1)
	require.NoError(t, shutdown(ctx))
}

func TestParseHelpers(t *testing.T) {
	require.Equal(t, slog.LevelInfo, parseLevel(""))
	require.Equal(t, slog.LevelDebug, parseLevel("debug"))
	require.Equal(t, 1.0, parseRatio(""))
	require.Equal(t, 0.25, parseRatio("0.25"))
	require.Equal(t, 1.0, parseRatio("7"))
}

func TestNilInstrumentsFallBack(t *testing.T) {
	var instruments *Instruments
	require.NotNil(t, instruments.Tracer("x"))
	require.NotNil(t, instruments.Meter("x"))
}
