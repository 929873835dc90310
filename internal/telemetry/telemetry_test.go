package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ronicTakouugang/stockz/internal/config"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TelemetryConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewExporter(t *testing.T) {
	var buf bytes.Buffer
	exp, err := newExporter(context.Background(), config.TelemetryConfig{Exporter: "stdout"}, &buf)
	require.NoError(t, err)
	assert.NotNil(t, exp)

	exp, err = newExporter(context.Background(), config.TelemetryConfig{Exporter: "otlp"}, &buf)
	require.NoError(t, err)
	assert.NotNil(t, exp)

	_, err = newExporter(context.Background(), config.TelemetryConfig{Exporter: "zipkin"}, &buf)
	assert.Error(t, err)
}

func TestNewProvider_ExportsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider, err := NewProvider(context.Background(), config.TelemetryConfig{ServiceVersion: "1.2.3"}, "test", exporter)
	require.NoError(t, err)

	_, span := provider.Tracer(InstrumentationName).Start(context.Background(), "analysis.run")
	span.End()
	require.NoError(t, provider.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "analysis.run", spans[0].Name)

	attrs := map[string]string{}
	for _, kv := range spans[0].Resource.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, DefaultServiceName, attrs["service.name"])
	assert.Equal(t, "1.2.3", attrs["service.version"])

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestTracer(t *testing.T) {
	assert.NotNil(t, Tracer())
}
