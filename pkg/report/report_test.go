package report_test

import (
	"github.com/Sumatoshi-tech/codegaze/pkg/fixation"
	"github.com/Sumatoshi-tech/codegaze/pkg/gaze"
	"github.com/Sumatoshi-tech/codegaze/pkg/report"
	"github.com/Sumatoshi-tech/codegaze/pkg/tokenindex"
	"github.com/Sumatoshi-tech/codegaze/pkg/tokenize"
)

func strPtr(s string) *string { return &s }

// sampleReport builds a small but fully populated report.
func sampleReport() *report.Report {
	r := report.New("testdata/eye_tracking.xml")
	r.Source = "add.py"
	r.Language = "python"
	r.Parameters = report.Parameters{MaxGapMS: 75, DisplayGapMS: 1000, VelocityThreshold: 0.1, MinDurationMS: 80}
	r.Environment = &gaze.Environment{ScreenWidth: 1382, ScreenHeight: 864, ScaleX: 1.25, ScaleY: 1.25, IDEName: "PyCharm"}
	r.ParseStats = gaze.ParseStats{Records: 12, Kept: 10, InvalidEyes: 2}

	r.TokenFixations = []fixation.Record{
		{Index: 1, TokenID: "abc123:1:1-1:4", StartTime: 0, EndTime: 100, DurationMS: 100, NumSamples: 6, Value: "def"},
		{Index: 2, TokenID: "abc123:1:5-1:8", StartTime: 120, EndTime: 240, DurationMS: 120, NumSamples: 7, Value: "add"},
	}
	r.DisplayFixations = r.TokenFixations

	def, add := strPtr("def"), strPtr("add")
	r.IVTFixations = []fixation.VelocityFixation{
		{
			StartTime: 0, EndTime: 100, DurationMS: 100, NumSamples: 6, EndIdx: 5,
			ASTTokens:    []fixation.ASTToken{{Token: def, Type: def, Value: def, Tags: []string{"def"}}},
			TokenSummary: map[string]int{"def": 1},
		},
		{
			StartTime: 140, EndTime: 240, DurationMS: 100, NumSamples: 6, StartIdx: 7, EndIdx: 12,
			ASTTokens:    []fixation.ASTToken{{Token: add, Type: strPtr("identifier"), Value: add}},
			TokenSummary: map[string]int{"identifier": 1},
		},
	}
	r.MergedFixations = fixation.Merge(r.IVTFixations)
	r.Saccades = []fixation.Saccade{
		{StartTime: 100, EndTime: 140, DurationMS: 40, Amplitude: 0.2, PeakVelocity: 10, FromIdx: 5, ToIdx: 7},
	}

	summary, err := fixation.Summarize(r.MergedFixations)
	if err != nil {
		panic(err)
	}

	r.Summary = summary

	tokens := []tokenize.Token{
		{Type: "def", Text: "def", TokenID: "abc123:1:1-1:4", Start: tokenize.Position{Line: 1, Column: 1}, End: tokenize.Position{Line: 1, Column: 4}},
		{Type: "identifier", Text: "add", TokenID: "abc123:1:5-1:8", Start: tokenize.Position{Line: 1, Column: 5}, End: tokenize.Position{Line: 1, Column: 8}},
	}
	idx := tokenindex.Build(tokens)
	attached, orphaned := idx.Attach(r.TokenFixations)
	r.SetTokens(tokens, idx, attached, orphaned)

	return r
}
