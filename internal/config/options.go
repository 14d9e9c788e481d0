package config

import (
	"github.com/Sumatoshi-tech/codegaze/pkg/observability"
	"github.com/Sumatoshi-tech/codegaze/pkg/pipeline"
)

// applySet sets *dst = *value when value is set. Nil keeps the option's
// built-in default; zero is a real value.
func applySet[T any](dst *T, value *T) {
	if value != nil {
		*dst = *value
	}
}

// applyNonEmpty sets *dst = value when value is non-empty.
func applyNonEmpty(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// PipelineOptions returns run options for recording with config values
// layered over the pipeline defaults.
func (c *Config) PipelineOptions(recording string) pipeline.Options {
	opts := pipeline.DefaultOptions(recording)
	c.ApplyToOptions(&opts)

	return opts
}

// ApplyToOptions merges config values into opts. Detector settings left
// unset keep the existing option; an empty language is skipped.
func (c *Config) ApplyToOptions(opts *pipeline.Options) {
	applySet(&opts.MaxGapMS, c.Token.MaxGapMS)
	applySet(&opts.DisplayGapMS, c.Token.DisplayGapMS)
	applySet(&opts.VelocityThreshold, c.IVT.VelocityThreshold)
	applySet(&opts.MinDurationMS, c.IVT.MinDurationMS)
	applyNonEmpty(&opts.Language, c.Source.Language)
}

// Telemetry returns telemetry settings for a process started in mode.
func (c *Config) Telemetry(mode observability.AppMode, version string) observability.Config {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version
	cfg.Mode = mode
	cfg.OTLPEndpoint = c.Observability.OTLPEndpoint
	cfg.OTLPInsecure = c.Observability.OTLPInsecure
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(c.Observability.OTLPHeaders)
	cfg.Environment = c.Observability.Environment
	cfg.SampleRatio = c.Observability.SampleRatio
	cfg.DebugTrace = c.Observability.DebugTrace
	cfg.LogJSON = c.Log.JSON

	if c.Log.Level != "" {
		cfg.LogLevel = observability.ParseLevel(c.Log.Level)
	}

	return cfg
}
