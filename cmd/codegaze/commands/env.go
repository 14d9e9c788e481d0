package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codegaze/pkg/gaze"
	"github.com/Sumatoshi-tech/codegaze/pkg/observability"
	"github.com/Sumatoshi-tech/codegaze/pkg/report"
)

// EnvCommand holds the flags of the env command.
type EnvCommand struct {
	globals *GlobalFlags
	out     outputFlags
}

// NewEnvCommand creates the env command.
func NewEnvCommand(globals *GlobalFlags) *cobra.Command {
	ec := &EnvCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "env <ide_tracking.xml>",
		Short: "Show the IDE environment of a recording session",
		Args:  cobra.ExactArgs(1),
		RunE:  ec.run,
	}

	ec.out.register(cmd, "table, json, yaml")

	return cmd
}

func (ec *EnvCommand) run(cmd *cobra.Command, args []string) (err error) {
	sess, err := ec.globals.open(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}

	defer func() { err = sess.close(cmd.Context(), err) }()

	ec.out.resolve(cmd, sess)

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open ide tracking: %w", err)
	}
	defer file.Close()

	env, err := gaze.ParseEnvironment(file)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	return ec.out.write(cmd, func(w io.Writer) error {
		switch {
		case ec.out.structured():
			return ec.out.encode(w, env)
		case ec.out.format == report.FormatTable:
			return report.RenderEnvironment(w, &env)
		default:
			return fmt.Errorf("%w: %q", report.ErrUnknownFormat, ec.out.format)
		}
	})
}
