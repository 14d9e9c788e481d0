package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/codegaze/pkg/observability"
)

func filteredSpanAttrs(t *testing.T, logger *slog.Logger, attrs ...attribute.KeyValue) map[string]any {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	filter := observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exporter), logger)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(filter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	_, span := tp.Tracer("test").Start(context.Background(), "codegaze.parse")
	span.SetAttributes(attrs...)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	require.NoError(t, tp.Shutdown(context.Background()))

	return spanAttrMap(spans[0])
}

func spanAttrMap(s tracetest.SpanStub) map[string]any {
	m := make(map[string]any, len(s.Attributes))
	for _, a := range s.Attributes {
		m[string(a.Key)] = a.Value.AsInterface()
	}

	return m
}

func TestAttributeFilter_AllowsPipelineKeys(t *testing.T) {
	t.Parallel()

	attrs := filteredSpanAttrs(t, nil,
		attribute.String("recording.path", "eye_tracking.xml"),
		attribute.Int("samples.kept", 120),
		attribute.String("detector.name", "ivt"),
		attribute.Int("fixations.count", 7),
		attribute.String("error.type", "malformed"),
		attribute.Bool("error", true),
	)

	assert.Equal(t, "eye_tracking.xml", attrs["recording.path"])
	assert.Equal(t, int64(120), attrs["samples.kept"])
	assert.Equal(t, "ivt", attrs["detector.name"])
	assert.Equal(t, int64(7), attrs["fixations.count"])
	assert.Equal(t, "malformed", attrs["error.type"])
	assert.Equal(t, true, attrs["error"])
}

func TestAttributeFilter_BlocksSourceContent(t *testing.T) {
	t.Parallel()

	attrs := filteredSpanAttrs(t, nil,
		attribute.String("token.text", "password"),
		attribute.String("token.value", "secret"),
		attribute.String("source.text", "def f(): pass"),
		attribute.String("project.path", "/home/alice/thesis"),
		attribute.String("user.id", "p07"),
		attribute.Int("tokens.count", 12),
	)

	assert.Len(t, attrs, 1)
	assert.Equal(t, int64(12), attrs["tokens.count"])
}

func TestAttributeFilter_DropsUnknownKeys(t *testing.T) {
	t.Parallel()

	attrs := filteredSpanAttrs(t, nil, attribute.String("random.key", "x"))

	assert.Empty(t, attrs)
}

func TestAttributeFilter_WarnsWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	filteredSpanAttrs(t, logger, attribute.String("token.text", "x"))

	assert.Contains(t, buf.String(), "attribute blocked by filter")
	assert.Contains(t, buf.String(), "token.text")
}
