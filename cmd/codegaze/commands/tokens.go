package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codegaze/pkg/observability"
	"github.com/Sumatoshi-tech/codegaze/pkg/report"
	"github.com/Sumatoshi-tech/codegaze/pkg/tokenize"
)

// TokensCommand holds the flags of the tokens command.
type TokensCommand struct {
	globals  *GlobalFlags
	out      outputFlags
	language string
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand(globals *GlobalFlags) *cobra.Command {
	tc := &TokensCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "tokens <source>",
		Short: "List the leaf tokens of a source file",
		Long: `Parse a source file with tree-sitter and list its non-blank leaf tokens with
the token ids gaze telemetry uses for the same spans.`,
		Args: cobra.ExactArgs(1),
		RunE: tc.run,
	}

	cmd.Flags().StringVar(&tc.language, flagLanguage, "", "Grammar of the source file (default: detect)")
	tc.out.register(cmd, "table, json, yaml")

	return cmd
}

func (tc *TokensCommand) run(cmd *cobra.Command, args []string) (err error) {
	sess, err := tc.globals.open(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}

	defer func() { err = sess.close(cmd.Context(), err) }()

	tc.out.resolve(cmd, sess)

	path := args[0]

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	language := sess.cfg.Source.Language
	if cmd.Flags().Changed(flagLanguage) {
		language = tc.language
	}

	if language == "" {
		language, err = tokenize.DetectLanguage(path, content)
		if err != nil {
			return err
		}
	}

	tokens, err := tokenize.Extract(cmd.Context(), content, tokenize.GrammarName(language), path)
	if err != nil {
		return err
	}

	sess.providers.Logger.DebugContext(cmd.Context(), "source tokenized",
		"source", path, "language", language, "tokens", len(tokens))

	return tc.out.write(cmd, func(w io.Writer) error {
		switch {
		case tc.out.structured():
			return tc.out.encode(w, tokens)
		case tc.out.format == report.FormatTable:
			return report.RenderTokens(w, tokens, tc.out.maxRows)
		default:
			return fmt.Errorf("%w: %q", report.ErrUnknownFormat, tc.out.format)
		}
	})
}
