package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/codegaze/pkg/fixation"
)

// DefaultMaxRows caps each table in text output.
const DefaultMaxRows = 50

// Sections of the text report.
const (
	SectionTokenFixations = "token_fixations"
	SectionIVTFixations   = "ivt_fixations"
	SectionSaccades       = "saccades"
	SectionDwell          = "dwell"
	SectionTokens         = "tokens"
)

// TextOptions configures RenderText.
type TextOptions struct {
	// MaxRows limits rows per table. Zero or negative means unlimited.
	MaxRows int
	// Sections selects the tables to print. Empty means all.
	Sections []string
}

func (o TextOptions) wants(section string) bool {
	return len(o.Sections) == 0 || slices.Contains(o.Sections, section)
}

// RenderText writes a human-readable report: a coloured header followed by
// one table per non-empty section.
func RenderText(w io.Writer, r *Report, o TextOptions) error {
	var parts []string

	parts = append(parts, header(r))

	if o.wants(SectionTokenFixations) && len(r.TokenFixations) > 0 {
		parts = append(parts, section("Token fixations", tokenFixationTable(r.TokenFixations, o.MaxRows)))
	}

	if o.wants(SectionIVTFixations) && len(r.IVTFixations) > 0 {
		parts = append(parts, section("I-VT fixations", velocityTable(r.IVTFixations, o.MaxRows)))
	}

	if o.wants(SectionSaccades) && len(r.Saccades) > 0 {
		parts = append(parts, section("Saccades", saccadeTable(r.Saccades, o.MaxRows)))
	}

	if o.wants(SectionDwell) && len(r.Summary.TokenDwellTimes) > 0 {
		parts = append(parts, section("Dwell time by token", dwellTable(r.Summary.TokenDwellTimes, o.MaxRows)))
	}

	if o.wants(SectionTokens) && len(r.TokenStats) > 0 {
		parts = append(parts, section("Attended source tokens", tokenStatsTable(r, o.MaxRows)))
	}

	_, err := io.WriteString(w, strings.Join(parts, "\n\n")+"\n")
	if err != nil {
		return fmt.Errorf("write text report: %w", err)
	}

	return nil
}

func header(r *Report) string {
	title := color.New(color.FgCyan, color.Bold).Sprint("=== CODEGAZE ===")
	muted := color.New(color.Faint)

	lines := []string{
		title,
		fmt.Sprintf("Recording: %s", r.Recording),
	}

	if r.Source != "" {
		lines = append(lines, fmt.Sprintf("Source:    %s (%s)", r.Source, r.Language))
	}

	if r.Environment != nil {
		env := r.Environment
		lines = append(lines, fmt.Sprintf("IDE:       %s %dx%d @ %.2fx%.2f",
			env.IDEName, env.ScreenWidth, env.ScreenHeight, env.ScaleX, env.ScaleY))
	}

	ps := r.ParseStats
	lines = append(lines,
		fmt.Sprintf("Samples:   %s kept of %s records (%s dropped)",
			humanize.Comma(int64(ps.Kept)), humanize.Comma(int64(ps.Records)), humanize.Comma(int64(ps.Dropped()))),
		fmt.Sprintf("Fixations: %s token, %s I-VT, %s merged, %s saccades",
			humanize.Comma(int64(len(r.TokenFixations))),
			humanize.Comma(int64(len(r.IVTFixations))),
			humanize.Comma(int64(len(r.MergedFixations))),
			humanize.Comma(int64(len(r.Saccades)))),
	)

	if r.Join != nil {
		status := color.New(color.FgGreen).Sprintf("%d attached", r.Join.Attached)
		if r.Join.Orphaned > 0 {
			status += ", " + color.New(color.FgYellow).Sprintf("%d orphaned", r.Join.Orphaned)
		}

		lines = append(lines, fmt.Sprintf("Join:      %s across %s tokens", status, humanize.Comma(int64(r.Join.Tokens))))
	}

	if !r.GeneratedAt.IsZero() {
		lines = append(lines, muted.Sprintf("Run %s, generated %s", r.RunID, humanize.Time(r.GeneratedAt)))
	}

	return strings.Join(lines, "\n")
}

func section(title, body string) string {
	return color.New(color.Bold).Sprint(title+":") + "\n" + body
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false

	return tbl
}

// limit returns how many of n rows to render.
func limit(n, maxRows int) int {
	if maxRows > 0 && n > maxRows {
		return maxRows
	}

	return n
}

func footer(tbl table.Writer, shown, total int) {
	if shown < total {
		tbl.AppendFooter(table.Row{fmt.Sprintf("Showing %d of %s", shown, humanize.Comma(int64(total)))})

		return
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %s", humanize.Comma(int64(total)))})
}

func ms(v int64) string {
	return humanize.Comma(v) + " ms"
}

func tokenFixationTable(records []fixation.Record, maxRows int) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"#", "Token", "Start", "Duration", "Samples", "Centroid", "Token ID"})

	n := limit(len(records), maxRows)
	for _, rec := range records[:n] {
		tbl.AppendRow(table.Row{
			rec.Index, quote(rec.Value), ms(rec.StartTime), ms(rec.DurationMS), rec.NumSamples,
			fmt.Sprintf("(%.3f, %.3f)", rec.CentroidX, rec.CentroidY), rec.TokenID,
		})
	}

	footer(tbl, n, len(records))

	return tbl.Render()
}

func velocityTable(fixations []fixation.VelocityFixation, maxRows int) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Start", "Duration", "Samples", "Centroid", "Tokens"})

	n := limit(len(fixations), maxRows)
	for _, f := range fixations[:n] {
		tbl.AppendRow(table.Row{
			ms(f.StartTime), ms(f.DurationMS), f.NumSamples,
			fmt.Sprintf("(%.3f, %.3f)", f.CentroidX, f.CentroidY), tokenValues(f.ASTTokens),
		})
	}

	footer(tbl, n, len(fixations))

	return tbl.Render()
}

func saccadeTable(saccades []fixation.Saccade, maxRows int) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Start", "Duration", "Amplitude", "Peak velocity", "Samples"})

	n := limit(len(saccades), maxRows)
	for _, s := range saccades[:n] {
		tbl.AppendRow(table.Row{
			ms(s.StartTime), ms(s.DurationMS), fmt.Sprintf("%.4f", s.Amplitude),
			fmt.Sprintf("%.3f/s", s.PeakVelocity), fmt.Sprintf("%d..%d", s.FromIdx, s.ToIdx),
		})
	}

	footer(tbl, n, len(saccades))

	return tbl.Render()
}

func dwellTable(dwell map[string]int64, maxRows int) string {
	type entry struct {
		token string
		ms    int64
	}

	entries := make([]entry, 0, len(dwell))
	for k, v := range dwell {
		entries = append(entries, entry{k, v})
	}

	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(b.ms, a.ms); c != 0 {
			return c
		}

		return cmp.Compare(a.token, b.token)
	})

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Token", "Dwell"})

	n := limit(len(entries), maxRows)
	for _, e := range entries[:n] {
		tbl.AppendRow(table.Row{quote(e.token), ms(e.ms)})
	}

	footer(tbl, n, len(entries))

	return tbl.Render()
}

func tokenStatsTable(r *Report, maxRows int) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Token", "Fixations", "Total", "Mean", "Median", "Token ID"})

	n := limit(len(r.TokenStats), maxRows)
	for _, s := range r.TokenStats[:n] {
		tbl.AppendRow(table.Row{
			quote(s.Text), s.FixationCount, ms(s.TotalDwellMS),
			fmt.Sprintf("%.1f ms", s.MeanDwellMS), fmt.Sprintf("%.1f ms", s.MedianDwellMS), s.TokenID,
		})
	}

	footer(tbl, n, len(r.TokenStats))

	return tbl.Render()
}

func tokenValues(tokens []fixation.ASTToken) string {
	values := make([]string, 0, len(tokens))

	for _, t := range tokens {
		v := fixation.ValueMissing
		if t.Value != nil {
			v = *t.Value
		}

		if len(values) > 0 && values[len(values)-1] == quote(v) {
			continue
		}

		values = append(values, quote(v))
	}

	return strings.Join(values, " ")
}

// quote renders token text on one line.
func quote(s string) string {
	return strings.NewReplacer("\n", `\n`, "\t", `\t`).Replace(s)
}
