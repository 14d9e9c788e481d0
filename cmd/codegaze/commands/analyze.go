package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codegaze/pkg/fixation"
	"github.com/Sumatoshi-tech/codegaze/pkg/observability"
	"github.com/Sumatoshi-tech/codegaze/pkg/pipeline"
	"github.com/Sumatoshi-tech/codegaze/pkg/report"
)

// AnalyzeCommand holds the flags of the analyze command.
type AnalyzeCommand struct {
	globals    *GlobalFlags
	out        outputFlags
	det        detectorFlags
	source     string
	language   string
	tokensFile string
	ide        string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(globals *GlobalFlags) *cobra.Command {
	ac := &AnalyzeCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "analyze <telemetry.xml>",
		Short: "Build the full report of a recording",
		Long: `Run both fixation detectors, saccades and the dwell summary, then join token
fixations against the tokens of the viewed source file.`,
		Args: cobra.ExactArgs(1),
		RunE: ac.run,
	}

	cmd.Flags().StringVar(&ac.source, flagSource, "", "Viewed source file, tokenized for the token join")
	cmd.Flags().StringVar(&ac.language, flagLanguage, "", "Grammar of the source file (default: detect)")
	cmd.Flags().StringVar(&ac.tokensFile, "tokens", "", "Token list JSON to join instead of tokenizing --source")
	cmd.Flags().StringVar(&ac.ide, "ide", "", "IDE tracking XML with environment metadata")
	cmd.Flags().Int64Var(&ac.det.gap, flagGap, fixation.DefaultMaxGapMS, "Maximum gap in ms between samples of one token fixation")
	cmd.Flags().Float64Var(&ac.det.vt, flagVT, fixation.DefaultVelocityThreshold, "Velocity threshold in units per second")
	cmd.Flags().Int64Var(&ac.det.minDur, flagMinDur, fixation.DefaultMinDurationMS, "Minimum I-VT fixation duration in ms")
	ac.out.register(cmd, "table, json, yaml, plot")

	return cmd
}

func (ac *AnalyzeCommand) run(cmd *cobra.Command, args []string) (err error) {
	sess, err := ac.globals.open(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}

	defer func() { err = sess.close(cmd.Context(), err) }()

	ac.out.resolve(cmd, sess)

	rep, err := sess.runner.Run(cmd.Context(), ac.options(cmd, sess, args[0]))
	if err != nil {
		return err
	}

	return ac.out.write(cmd, func(w io.Writer) error {
		switch {
		case ac.out.structured():
			return ac.out.encode(w, rep)
		case ac.out.format == report.FormatTable:
			return report.RenderText(w, rep, report.TextOptions{MaxRows: ac.out.maxRows})
		case ac.out.format == report.FormatPlot:
			return report.RenderPlot(w, rep)
		default:
			return fmt.Errorf("%w: %q", report.ErrUnknownFormat, ac.out.format)
		}
	})
}

func (ac *AnalyzeCommand) options(cmd *cobra.Command, sess *session, recording string) pipeline.Options {
	opts := sess.cfg.PipelineOptions(recording)
	opts.Source = ac.source
	opts.TokensFile = ac.tokensFile
	opts.IDETracking = ac.ide

	if cmd.Flags().Changed(flagLanguage) {
		opts.Language = ac.language
	}

	if cmd.Flags().Changed(flagGap) {
		opts.MaxGapMS = ac.det.gap
	}

	if cmd.Flags().Changed(flagVT) {
		opts.VelocityThreshold = ac.det.vt
	}

	if cmd.Flags().Changed(flagMinDur) {
		opts.MinDurationMS = ac.det.minDur
	}

	return opts
}
