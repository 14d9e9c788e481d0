package config

import (
	"errors"
	"slices"
)

// Config is the top-level configuration struct for codegaze.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Token         TokenConfig         `mapstructure:"token"`
	IVT           IVTConfig           `mapstructure:"ivt"`
	Source        SourceConfig        `mapstructure:"source"`
	Output        OutputConfig        `mapstructure:"output"`
	Log           LogConfig           `mapstructure:"log"`
	Workers       int                 `mapstructure:"workers"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// TokenConfig holds token fixation grouping settings. Nil fields keep the
// detector defaults; an explicit zero is honoured.
type TokenConfig struct {
	MaxGapMS     *int64 `mapstructure:"max_gap_ms"`
	DisplayGapMS *int64 `mapstructure:"display_gap_ms"`
}

// IVTConfig holds velocity threshold detector settings. Nil fields keep the
// detector defaults.
type IVTConfig struct {
	VelocityThreshold *float64 `mapstructure:"velocity_threshold"`
	MinDurationMS     *int64   `mapstructure:"min_duration_ms"`
}

// SourceConfig holds tokenizer settings.
type SourceConfig struct {
	Language string `mapstructure:"language"`
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	Format   string `mapstructure:"format"`
	Compress bool   `mapstructure:"compress"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// ObservabilityConfig holds OTLP export settings.
type ObservabilityConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	DebugTrace   bool    `mapstructure:"debug_trace"`
}

// Output formats accepted by output.format.
var outputFormats = []string{"table", "json", "yaml", "plot"}

// Log levels accepted by log.level.
var logLevels = []string{"debug", "info", "warn", "error"}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidMaxGap indicates a negative token gap.
	ErrInvalidMaxGap = errors.New("token.max_gap_ms must be non-negative")
	// ErrInvalidDisplayGap indicates a negative display gap.
	ErrInvalidDisplayGap = errors.New("token.display_gap_ms must be non-negative")
	// ErrInvalidVelocityThreshold indicates a velocity threshold that is not positive.
	ErrInvalidVelocityThreshold = errors.New("ivt.velocity_threshold must be positive")
	// ErrInvalidMinDuration indicates a negative minimum fixation duration.
	ErrInvalidMinDuration = errors.New("ivt.min_duration_ms must be non-negative")
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("workers must be non-negative")
	// ErrInvalidOutputFormat indicates an unknown output format.
	ErrInvalidOutputFormat = errors.New("output.format must be one of table, json, yaml, plot")
	// ErrInvalidSampleRatio indicates a sample ratio outside [0, 1].
	ErrInvalidSampleRatio = errors.New("observability.sample_ratio must be between 0 and 1")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("log.level must be one of debug, info, warn, error")
)

// Validate checks Config invariants and returns the first error found.
// Zero numeric values are valid and mean "use the built-in default".
func (c *Config) Validate() error {
	detectorErr := c.validateDetectors()
	if detectorErr != nil {
		return detectorErr
	}

	if c.Workers < 0 {
		return ErrInvalidWorkers
	}

	if c.Output.Format != "" && !slices.Contains(outputFormats, c.Output.Format) {
		return ErrInvalidOutputFormat
	}

	if c.Log.Level != "" && !slices.Contains(logLevels, c.Log.Level) {
		return ErrInvalidLogLevel
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > 1 {
		return ErrInvalidSampleRatio
	}

	return nil
}

func (c *Config) validateDetectors() error {
	if negative(c.Token.MaxGapMS) {
		return ErrInvalidMaxGap
	}

	if negative(c.Token.DisplayGapMS) {
		return ErrInvalidDisplayGap
	}

	if c.IVT.VelocityThreshold != nil && *c.IVT.VelocityThreshold <= 0 {
		return ErrInvalidVelocityThreshold
	}

	if negative(c.IVT.MinDurationMS) {
		return ErrInvalidMinDuration
	}

	return nil
}

func negative(v *int64) bool {
	return v != nil && *v < 0
}
