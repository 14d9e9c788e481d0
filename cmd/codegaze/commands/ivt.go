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

// IVTResult is the structured output of the ivt command for one recording.
type IVTResult struct {
	Recording             string                      `json:"recording"              yaml:"recording"`
	Fixations             []fixation.VelocityFixation `json:"fixations"              yaml:"fixations"`
	Saccades              []fixation.Saccade          `json:"saccades"               yaml:"saccades"`
	Summary               fixation.Summary            `json:"summary"                yaml:"summary"`
	UnattributedFixations int                         `json:"unattributed_fixations" yaml:"unattributed_fixations"`
}

// IVTCommand holds the flags of the ivt command.
type IVTCommand struct {
	globals *GlobalFlags
	out     outputFlags
	det     detectorFlags
}

// NewIVTCommand creates the ivt command.
func NewIVTCommand(globals *GlobalFlags) *cobra.Command {
	ic := &IVTCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "ivt <telemetry.xml>...",
		Short: "Detect fixations by velocity threshold",
		Long: `Classify samples by velocity (I-VT), build saccades between fixations and
summarize dwell time per token. Several recordings are processed in parallel.`,
		Args: cobra.MinimumNArgs(1),
		RunE: ic.run,
	}

	cmd.Flags().Float64Var(&ic.det.vt, flagVT, fixation.DefaultVelocityThreshold, "Velocity threshold in units per second")
	cmd.Flags().Int64Var(&ic.det.minDur, flagMinDur, fixation.DefaultMinDurationMS, "Minimum fixation duration in ms")
	cmd.Flags().IntVar(&ic.det.workers, flagWorkers, 0, "Recordings analyzed in parallel (0 = CPU count)")
	ic.out.register(cmd, "table, json, yaml")

	return cmd
}

func (ic *IVTCommand) run(cmd *cobra.Command, args []string) (err error) {
	mode := observability.ModeCLI
	if len(args) > 1 {
		mode = observability.ModeBatch
	}

	sess, err := ic.globals.open(cmd, mode)
	if err != nil {
		return err
	}

	defer func() { err = sess.close(cmd.Context(), err) }()

	ic.out.resolve(cmd, sess)

	workers := sess.cfg.Workers
	if cmd.Flags().Changed(flagWorkers) {
		workers = ic.det.workers
	}

	opts := make([]pipeline.Options, 0, len(args))

	for _, path := range args {
		o := sess.cfg.PipelineOptions(path)
		o.SkipTokens = true

		if cmd.Flags().Changed(flagVT) {
			o.VelocityThreshold = ic.det.vt
		}

		if cmd.Flags().Changed(flagMinDur) {
			o.MinDurationMS = ic.det.minDur
		}

		opts = append(opts, o)
	}

	reports, err := sess.runner.RunBatch(cmd.Context(), opts, workers)
	if err != nil {
		return err
	}

	return ic.out.write(cmd, func(w io.Writer) error {
		switch {
		case ic.out.structured():
			return ic.out.encode(w, ivtResults(reports))
		case ic.out.format == report.FormatTable:
			return renderIVTTables(w, reports, ic.out.maxRows)
		default:
			return fmt.Errorf("%w: %q", report.ErrUnknownFormat, ic.out.format)
		}
	})
}

func ivtResults(reports []*report.Report) []IVTResult {
	results := make([]IVTResult, 0, len(reports))

	for _, rep := range reports {
		results = append(results, IVTResult{
			Recording:             rep.Recording,
			Fixations:             rep.IVTFixations,
			Saccades:              rep.Saccades,
			Summary:               rep.Summary,
			UnattributedFixations: rep.UnattributedFixations,
		})
	}

	return results
}

func renderIVTTables(w io.Writer, reports []*report.Report, maxRows int) error {
	opts := report.TextOptions{
		MaxRows:  maxRows,
		Sections: []string{report.SectionIVTFixations, report.SectionSaccades, report.SectionDwell},
	}

	for i, rep := range reports {
		if i > 0 {
			_, err := io.WriteString(w, "\n")
			if err != nil {
				return fmt.Errorf("write separator: %w", err)
			}
		}

		err := report.RenderText(w, rep, opts)
		if err != nil {
			return err
		}
	}

	return nil
}
