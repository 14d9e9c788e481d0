package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codegaze/pkg/observability"
)

func TestInit_NoopWhenNoEndpoint(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = "1.2.3"
	cfg.Environment = "test"
	cfg.Mode = observability.ModeBatch

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	require.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)

	ctx, span := providers.Tracer.Start(context.Background(), "codegaze.run")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	assert.NotNil(t, ctx)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_LogWriterAndLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogWriter = &buf
	cfg.LogJSON = true
	cfg.LogLevel = slog.LevelWarn
	cfg.ServiceVersion = "0.3.0"

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	providers.Logger.InfoContext(context.Background(), "hidden")
	assert.Zero(t, buf.Len())

	providers.Logger.WarnContext(context.Background(), "shown", "recording", "r.xml")
	assert.Contains(t, buf.String(), `"version":"0.3.0"`)
	assert.Contains(t, buf.String(), `"recording":"r.xml"`)
}

func TestInit_ProvidesPipelineMetrics(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	require.NotNil(t, providers.Metrics)

	done := providers.Metrics.TrackInflight(context.Background())
	providers.Metrics.RecordRecording(context.Background(), observability.RecordingStats{Samples: 3})
	done()
}

func TestInit_ShutdownIdempotent(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	// Multiple shutdowns should not panic or error.
	require.NoError(t, providers.Shutdown(context.Background()))
	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestBuildResource_IncludesAppMode(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.Mode = observability.ModeBatch

	res, err := observability.ProbeBuildResource(cfg)
	require.NoError(t, err)

	found := false

	for _, attr := range res.Attributes() {
		if string(attr.Key) == "app.mode" {
			assert.Equal(t, "batch", attr.Value.AsString())

			found = true
		}
	}

	assert.True(t, found, "app.mode attribute not found in resource")
}

func TestSelectSampler(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		arg     string
		debug   bool
		ratio   float64
		sampled bool
	}{
		{name: "default samples roots", sampled: true},
		{name: "always_on", env: "always_on", sampled: true},
		{name: "always_off", env: "always_off"},
		{name: "traceidratio full", env: "traceidratio", arg: "1.0", sampled: true},
		{name: "traceidratio zero", env: "traceidratio", arg: "0"},
		{name: "parentbased_always_on", env: "parentbased_always_on", sampled: true},
		{name: "parentbased_always_off drops roots", env: "parentbased_always_off"},
		{name: "debug overrides env", env: "always_off", debug: true, sampled: true},
		{name: "config ratio", ratio: 1.0, sampled: true},
		{name: "unknown env falls back to config", env: "sometimes", sampled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OTEL_TRACES_SAMPLER", tt.env)
			t.Setenv("OTEL_TRACES_SAMPLER_ARG", tt.arg)

			cfg := observability.DefaultConfig()
			cfg.DebugTrace = tt.debug
			cfg.SampleRatio = tt.ratio

			assert.Equal(t, tt.sampled, observability.ProbeSamplerSpan(cfg))
		})
	}
}
