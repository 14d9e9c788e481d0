package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codegaze/pkg/fixation"
	"github.com/Sumatoshi-tech/codegaze/pkg/observability"
	"github.com/Sumatoshi-tech/codegaze/pkg/report"
)

// FixationsCommand holds the flags of the fixations command.
type FixationsCommand struct {
	globals *GlobalFlags
	out     outputFlags
	source  string
	gap     int64
}

// NewFixationsCommand creates the fixations command.
func NewFixationsCommand(globals *GlobalFlags) *cobra.Command {
	fc := &FixationsCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "fixations <telemetry.xml>",
		Short: "Group gaze samples into token fixations",
		Long: `Group consecutive gaze samples that look at the same source token into
fixations. --source binds token ids to the viewed file.`,
		Args: cobra.ExactArgs(1),
		RunE: fc.run,
	}

	cmd.Flags().StringVar(&fc.source, flagSource, "", "Viewed source file")
	cmd.Flags().Int64Var(&fc.gap, flagGap, fixation.DefaultMaxGapMS, "Maximum gap in ms between samples of one fixation")
	fc.out.register(cmd, "table, json, yaml")

	return cmd
}

func (fc *FixationsCommand) run(cmd *cobra.Command, args []string) (err error) {
	sess, err := fc.globals.open(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}

	defer func() { err = sess.close(cmd.Context(), err) }()

	fc.out.resolve(cmd, sess)

	opts := sess.cfg.PipelineOptions(args[0])
	opts.Source = fc.source
	opts.SkipTokens = true

	if cmd.Flags().Changed(flagGap) {
		opts.MaxGapMS = fc.gap
	}

	rep, err := sess.runner.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	return fc.out.write(cmd, func(w io.Writer) error {
		switch {
		case fc.out.structured():
			return fc.out.encode(w, rep.TokenFixations)
		case fc.out.format == report.FormatTable:
			return report.RenderText(w, rep, report.TextOptions{
				MaxRows:  fc.out.maxRows,
				Sections: []string{report.SectionTokenFixations},
			})
		default:
			return fmt.Errorf("%w: %q", report.ErrUnknownFormat, fc.out.format)
		}
	})
}
