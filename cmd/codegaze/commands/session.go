// Package commands implements CLI command handlers for codegaze.
package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codegaze/internal/config"
	"github.com/Sumatoshi-tech/codegaze/pkg/observability"
	"github.com/Sumatoshi-tech/codegaze/pkg/pipeline"
	"github.com/Sumatoshi-tech/codegaze/pkg/version"
)

// Global flag names.
const (
	flagConfig   = "config"
	flagLogLevel = "log-level"
	flagLogJSON  = "log-json"
	flagNoColor  = "no-color"
)

// GlobalFlags holds the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigPath string
	LogLevel   string
	LogJSON    bool
	NoColor    bool
}

// Register adds the persistent flags to root.
func (g *GlobalFlags) Register(root *cobra.Command) {
	root.PersistentFlags().StringVar(&g.ConfigPath, flagConfig, "", "Config file (default: .codegaze.yaml in CWD or $HOME)")
	root.PersistentFlags().StringVar(&g.LogLevel, flagLogLevel, config.DefaultLogLevel, "Log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&g.LogJSON, flagLogJSON, false, "Emit logs as JSON")
	root.PersistentFlags().BoolVar(&g.NoColor, flagNoColor, false, "Disable colored output")
}

// session is the per-invocation state of a command: the merged config and
// the telemetry providers.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	runner    *pipeline.Runner
}

// open loads the config, applies explicitly set global flags over it and
// starts telemetry.
func (g *GlobalFlags) open(cmd *cobra.Command, mode observability.AppMode) (*session, error) {
	cfg, err := config.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed(flagLogLevel) {
		cfg.Log.Level = g.LogLevel
	}

	if cmd.Flags().Changed(flagLogJSON) {
		cfg.Log.JSON = g.LogJSON
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate flags: %w", validateErr)
	}

	if g.NoColor {
		color.NoColor = true
	}

	obsCfg := cfg.Telemetry(mode, version.Version)
	obsCfg.LogWriter = cmd.ErrOrStderr()

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	return &session{
		cfg:       cfg,
		providers: providers,
		runner:    pipeline.NewRunnerFromProviders(providers),
	}, nil
}

// close flushes telemetry. The command error, if any, takes precedence.
func (s *session) close(ctx context.Context, cmdErr error) error {
	shutdownErr := s.providers.Shutdown(ctx)
	if cmdErr != nil {
		return cmdErr
	}

	if shutdownErr != nil {
		return fmt.Errorf("shutdown observability: %w", shutdownErr)
	}

	return nil
}

// NewRootCommand creates the codegaze command tree.
func NewRootCommand() *cobra.Command {
	globals := &GlobalFlags{}

	root := &cobra.Command{
		Use:   "codegaze",
		Short: "Eye-tracking analysis for source code reading",
		Long: `Codegaze turns eye-tracker telemetry recorded in an IDE into fixations,
saccades and per-token attention statistics.

Commands:
  fixations  Token fixations of one recording
  ivt        Velocity-threshold fixations, saccades and dwell summary
  analyze    Full report with source token join
  tokens     Leaf tokens of a source file
  env        IDE environment of a recording session`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	globals.Register(root)

	root.AddCommand(NewFixationsCommand(globals))
	root.AddCommand(NewIVTCommand(globals))
	root.AddCommand(NewAnalyzeCommand(globals))
	root.AddCommand(NewTokensCommand(globals))
	root.AddCommand(NewEnvCommand(globals))

	return root
}
