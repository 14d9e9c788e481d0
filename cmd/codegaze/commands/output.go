package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codegaze/pkg/report"
)

// Shared flag names.
const (
	flagFormat   = "format"
	flagOutput   = "output"
	flagCompress = "compress"
	flagMaxRows  = "max-rows"
	flagSource   = "source"
	flagLanguage = "language"
	flagGap      = "gap"
	flagVT       = "vt"
	flagMinDur   = "min-dur"
	flagWorkers  = "workers"
)

// outputFlags are the flags of commands that print a result.
type outputFlags struct {
	format   string
	output   string
	compress bool
	maxRows  int
}

func (o *outputFlags) register(cmd *cobra.Command, formats string) {
	cmd.Flags().StringVar(&o.format, flagFormat, report.FormatTable, "Output format: "+formats)
	cmd.Flags().StringVarP(&o.output, flagOutput, "o", "", "Write output to a file instead of stdout")
	cmd.Flags().BoolVar(&o.compress, flagCompress, false, "LZ4-compress json/yaml output")
	cmd.Flags().IntVar(&o.maxRows, flagMaxRows, report.DefaultMaxRows, "Rows per table in table output (0 = all)")
}

// resolve layers the config output settings under explicitly set flags.
func (o *outputFlags) resolve(cmd *cobra.Command, s *session) {
	if !cmd.Flags().Changed(flagFormat) && s.cfg.Output.Format != "" {
		o.format = s.cfg.Output.Format
	}

	if !cmd.Flags().Changed(flagCompress) {
		o.compress = s.cfg.Output.Compress
	}
}

// write opens the destination and hands it to fn.
func (o *outputFlags) write(cmd *cobra.Command, fn func(io.Writer) error) error {
	if o.output == "" {
		return fn(cmd.OutOrStdout())
	}

	file, err := os.Create(o.output)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	writeErr := fn(file)
	closeErr := file.Close()

	if writeErr != nil {
		return writeErr
	}

	if closeErr != nil {
		return fmt.Errorf("close output file: %w", closeErr)
	}

	return nil
}

// encode serializes v with the codec of the selected format.
func (o *outputFlags) encode(w io.Writer, v any) error {
	codec, err := report.CodecForFormat(o.format, o.compress)
	if err != nil {
		return err
	}

	err = codec.Encode(w, v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", o.format, err)
	}

	return nil
}

// structured reports whether the format is a serialization format.
func (o *outputFlags) structured() bool {
	return o.format == report.FormatJSON || o.format == report.FormatYAML
}

// detectorFlags holds the detector parameters a command exposes.
type detectorFlags struct {
	gap     int64
	vt      float64
	minDur  int64
	workers int
}
