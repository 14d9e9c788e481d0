// Package config loads codegaze settings from a YAML file, CODEGAZE_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/codegaze/pkg/fixation"
)

// configName is the config file name without extension.
const configName = ".codegaze"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for codegaze settings.
const envPrefix = "CODEGAZE"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Defaults applied when neither the config file nor the environment sets a key.
const (
	DefaultMaxGapMS          = fixation.DefaultMaxGapMS
	DefaultDisplayGapMS      = fixation.DefaultDisplayGapMS
	DefaultVelocityThreshold = fixation.DefaultVelocityThreshold
	DefaultMinDurationMS     = fixation.DefaultMinDurationMS
	DefaultOutputFormat      = "table"
	DefaultLogLevel          = "info"
	// DefaultWorkers of zero means one worker per CPU.
	DefaultWorkers = 0
)

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("token.max_gap_ms", DefaultMaxGapMS)
	viperCfg.SetDefault("token.display_gap_ms", DefaultDisplayGapMS)

	viperCfg.SetDefault("ivt.velocity_threshold", DefaultVelocityThreshold)
	viperCfg.SetDefault("ivt.min_duration_ms", DefaultMinDurationMS)

	viperCfg.SetDefault("source.language", "")

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.compress", false)

	viperCfg.SetDefault("log.level", DefaultLogLevel)
	viperCfg.SetDefault("log.json", false)

	viperCfg.SetDefault("workers", DefaultWorkers)

	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.otlp_headers", "")
	viperCfg.SetDefault("observability.environment", "")
	viperCfg.SetDefault("observability.sample_ratio", 0.0)
	viperCfg.SetDefault("observability.debug_trace", false)
}
