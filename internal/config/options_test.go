package config_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codegaze/internal/config"
	"github.com/Sumatoshi-tech/codegaze/pkg/fixation"
	"github.com/Sumatoshi-tech/codegaze/pkg/observability"
	"github.com/Sumatoshi-tech/codegaze/pkg/pipeline"
)

func TestPipelineOptions_Overrides(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Token:  config.TokenConfig{MaxGapMS: ptr(int64(50)), DisplayGapMS: ptr(int64(500))},
		IVT:    config.IVTConfig{VelocityThreshold: ptr(0.25), MinDurationMS: ptr(int64(100))},
		Source: config.SourceConfig{Language: "go"},
	}

	opts := cfg.PipelineOptions("rec.xml")

	assert.Equal(t, "rec.xml", opts.Recording)
	assert.Equal(t, int64(50), opts.MaxGapMS)
	assert.Equal(t, int64(500), opts.DisplayGapMS)
	assert.InDelta(t, 0.25, opts.VelocityThreshold, 1e-12)
	assert.Equal(t, int64(100), opts.MinDurationMS)
	assert.Equal(t, "go", opts.Language)
	require.NoError(t, opts.Validate())
}

func TestApplyToOptions_ExplicitZeroOverridesDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Token: config.TokenConfig{MaxGapMS: ptr(int64(0)), DisplayGapMS: ptr(int64(0))},
		IVT:   config.IVTConfig{MinDurationMS: ptr(int64(0))},
	}

	opts := cfg.PipelineOptions("rec.xml")

	assert.Zero(t, opts.MaxGapMS)
	assert.Zero(t, opts.DisplayGapMS)
	assert.Zero(t, opts.MinDurationMS)
	assert.InDelta(t, fixation.DefaultVelocityThreshold, opts.VelocityThreshold, 1e-12)
	require.NoError(t, opts.Validate())
}

func TestApplyToOptions_UnsetKeepsDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}

	opts := pipeline.DefaultOptions("rec.xml")
	opts.Language = "python"
	cfg.ApplyToOptions(&opts)

	assert.Equal(t, fixation.DefaultMaxGapMS, opts.MaxGapMS)
	assert.Equal(t, fixation.DefaultDisplayGapMS, opts.DisplayGapMS)
	assert.InDelta(t, fixation.DefaultVelocityThreshold, opts.VelocityThreshold, 1e-12)
	assert.Equal(t, fixation.DefaultMinDurationMS, opts.MinDurationMS)
	assert.Equal(t, "python", opts.Language)
}

func TestTelemetry(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Log:           config.LogConfig{Level: "warn", JSON: true},
		Observability: config.ObservabilityConfig{
			OTLPEndpoint: "localhost:4317",
			OTLPInsecure: true,
			OTLPHeaders:  "x-team=eyelab",
			Environment:  "lab",
			SampleRatio:  0.25,
		},
	}

	obs := cfg.Telemetry(observability.ModeBatch, "v1.2.3")

	assert.Equal(t, "codegaze", obs.ServiceName)
	assert.Equal(t, "v1.2.3", obs.ServiceVersion)
	assert.Equal(t, observability.ModeBatch, obs.Mode)
	assert.Equal(t, "localhost:4317", obs.OTLPEndpoint)
	assert.True(t, obs.OTLPInsecure)
	assert.Equal(t, map[string]string{"x-team": "eyelab"}, obs.OTLPHeaders)
	assert.Equal(t, "lab", obs.Environment)
	assert.InDelta(t, 0.25, obs.SampleRatio, 1e-12)
	assert.False(t, obs.DebugTrace)
	assert.True(t, obs.LogJSON)
	assert.Equal(t, slog.LevelWarn, obs.LogLevel)
}

func TestTelemetry_DefaultLevel(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}

	assert.Equal(t, slog.LevelInfo, cfg.Telemetry(observability.ModeCLI, "").LogLevel)
}
