package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/codegaze/pkg/gaze"
	"github.com/Sumatoshi-tech/codegaze/pkg/tokenize"
)

// RenderTokens writes a source token listing as a table.
func RenderTokens(w io.Writer, tokens []tokenize.Token, maxRows int) error {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Type", "Text", "Start", "End", "Token ID"})

	n := limit(len(tokens), maxRows)
	for _, t := range tokens[:n] {
		tbl.AppendRow(table.Row{
			t.Type, quote(t.Text),
			fmt.Sprintf("%d:%d", t.Start.Line, t.Start.Column),
			fmt.Sprintf("%d:%d", t.End.Line, t.End.Column),
			t.TokenID,
		})
	}

	footer(tbl, n, len(tokens))

	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("write token table: %w", err)
	}

	return nil
}

// RenderEnvironment writes IDE environment metadata as a two-column table.
func RenderEnvironment(w io.Writer, env *gaze.Environment) error {
	tbl := newTable()
	tbl.AppendRows([]table.Row{
		{"IDE", env.IDEName},
		{"Screen", fmt.Sprintf("%dx%d", env.ScreenWidth, env.ScreenHeight)},
		{"Scale", fmt.Sprintf("%.2f x %.2f", env.ScaleX, env.ScaleY)},
	})

	if env.ProjectPath != "" {
		tbl.AppendRow(table.Row{"Project", env.ProjectPath})
	}

	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("write environment table: %w", err)
	}

	return nil
}
