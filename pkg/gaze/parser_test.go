package gaze_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codegaze/pkg/gaze"
	"github.com/Sumatoshi-tech/codegaze/pkg/tokenid"
)

const demoSource = "src/demo.py"

func parseString(t *testing.T, source, doc string) gaze.Result {
	t.Helper()

	res, err := gaze.NewParser(source).Parse(strings.NewReader(doc))
	require.NoError(t, err)

	return res
}

func wrapGazes(gazes ...string) string {
	return "<itrace_core><gazes>" + strings.Join(gazes, "") + "</gazes></itrace_core>"
}

func TestParse_Fixture(t *testing.T) {
	t.Parallel()

	f, err := os.Open("testdata/eye_tracking.xml")
	require.NoError(t, err)

	t.Cleanup(func() { f.Close() })

	res, err := gaze.NewParser(demoSource).Parse(f)
	require.NoError(t, err)

	wantID := tokenid.Format(tokenid.FileID(demoSource), tokenid.Span{StartLine: 1, StartCol: 5, EndLine: 1, EndCol: 8})

	require.Len(t, res.Samples, 4)

	times := make([]int64, len(res.Samples))
	for i, s := range res.Samples {
		times[i] = s.T
	}

	assert.Equal(t, []int64{1000, 1020, 1040, 1080}, times)

	// Both eyes valid: mean position.
	assert.InDelta(t, 0.2, res.Samples[0].X, 1e-9)
	assert.InDelta(t, 0.3, res.Samples[0].Y, 1e-9)
	assert.Equal(t, wantID, res.Samples[0].TokenID())
	require.NotNil(t, res.Samples[0].Location)
	assert.Equal(t, demoSource, res.Samples[0].Location.Path)
	require.NotNil(t, res.Samples[0].Location.Line)
	assert.Equal(t, 1, *res.Samples[0].Location.Line)

	// Repeat record resolved against the previous AST reference.
	assert.Equal(t, wantID, res.Samples[2].TokenID())
	assert.InDelta(t, 0.21, res.Samples[2].X, 1e-9)

	// Left eye unparseable: right eye used; bad location dropped; repeat
	// with a different token keeps no levels.
	last := res.Samples[3]
	assert.InDelta(t, 0.6, last.X, 1e-9)
	assert.InDelta(t, 0.7, last.Y, 1e-9)
	assert.Nil(t, last.Location)
	require.NotNil(t, last.AST)
	assert.Empty(t, last.AST.Levels)
	assert.Empty(t, last.TokenID())

	assert.Equal(t, gaze.ParseStats{
		Records:          6,
		Kept:             4,
		MissingTimestamp: 1,
		InvalidEyes:      1,
		WithoutTokenID:   1,
		RepeatsResolved:  1,
	}, res.Stats)
	assert.Equal(t, 2, res.Stats.Dropped())
}

func TestParse_EyeMerging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		left  string
		right string
		wantX float64
		wantY float64
		kept  bool
	}{
		{
			name:  "both valid averaged",
			left:  `<left_eye gaze_point_x="0" gaze_point_y="0" gaze_validity="1"/>`,
			right: `<right_eye gaze_point_x="1" gaze_point_y="0.5" gaze_validity="1"/>`,
			wantX: 0.5, wantY: 0.25, kept: true,
		},
		{
			name:  "only left valid",
			left:  `<left_eye gaze_point_x="0" gaze_point_y="0" gaze_validity="1"/>`,
			right: `<right_eye gaze_point_x="0.8" gaze_point_y="0.8" gaze_validity="0"/>`,
			wantX: 0, wantY: 0, kept: true,
		},
		{
			name:  "only right valid",
			left:  `<left_eye gaze_point_x="0.1" gaze_point_y="0.1" gaze_validity="0.5"/>`,
			right: `<right_eye gaze_point_x="0.8" gaze_point_y="0.9" gaze_validity="1.0"/>`,
			wantX: 0.8, wantY: 0.9, kept: true,
		},
		{
			name:  "left missing validity",
			left:  `<left_eye gaze_point_x="0.1" gaze_point_y="0.1"/>`,
			right: `<right_eye gaze_point_x="0.8" gaze_point_y="0.9" gaze_validity="1"/>`,
			wantX: 0.8, wantY: 0.9, kept: true,
		},
		{
			name:  "no valid eye",
			left:  `<left_eye gaze_point_x="0.1" gaze_point_y="0.1" gaze_validity="0"/>`,
			right: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := wrapGazes(`<gaze timestamp="5">` + tt.left + tt.right + `</gaze>`)
			res := parseString(t, demoSource, doc)

			if !tt.kept {
				assert.Empty(t, res.Samples)
				assert.Equal(t, 1, res.Stats.InvalidEyes)

				return
			}

			require.Len(t, res.Samples, 1)
			assert.InDelta(t, tt.wantX, res.Samples[0].X, 1e-9)
			assert.InDelta(t, tt.wantY, res.Samples[0].Y, 1e-9)
		})
	}
}

func TestParse_RepeatRequiresMatchingTokenAndType(t *testing.T) {
	t.Parallel()

	eyes := `<left_eye gaze_point_x="0.1" gaze_point_y="0.1" gaze_validity="1"/>`

	doc := wrapGazes(
		`<gaze timestamp="1">`+eyes+`<ast_structure token="x" type="identifier"><level start="2:1" end="2:2" tag="id"/></ast_structure></gaze>`,
		`<gaze timestamp="2">`+eyes+`<ast_structure token="x" type="string" remark="Same"/></gaze>`,
		`<gaze timestamp="3">`+eyes+`<ast_structure token="x" type="string" remark="Same"/></gaze>`,
	)

	res := parseString(t, demoSource, doc)
	require.Len(t, res.Samples, 3)

	assert.NotEmpty(t, res.Samples[0].TokenID())
	// Type differs from the previous record.
	assert.Empty(t, res.Samples[1].AST.Levels)
	assert.Empty(t, res.Samples[1].TokenID())
	// Matches the previous record, but that record had no levels to copy.
	assert.Empty(t, res.Samples[2].AST.Levels)
	assert.Empty(t, res.Samples[2].TokenID())
	assert.Zero(t, res.Stats.RepeatsResolved)
}

func TestParse_RepeatWithoutRemarkKeepsNoLevels(t *testing.T) {
	t.Parallel()

	eyes := `<left_eye gaze_point_x="0.1" gaze_point_y="0.1" gaze_validity="1"/>`

	doc := wrapGazes(
		`<gaze timestamp="1">`+eyes+`<ast_structure token="x" type="identifier"><level start="2:1" end="2:2" tag="id"/></ast_structure></gaze>`,
		`<gaze timestamp="2">`+eyes+`<ast_structure token="x" type="identifier"/></gaze>`,
	)

	res := parseString(t, demoSource, doc)
	require.Len(t, res.Samples, 2)
	assert.Empty(t, res.Samples[1].TokenID())
}

func TestParse_UnparseableSpanHasNoTokenID(t *testing.T) {
	t.Parallel()

	eyes := `<left_eye gaze_point_x="0.1" gaze_point_y="0.1" gaze_validity="1"/>`
	doc := wrapGazes(
		`<gaze timestamp="1">` + eyes + `<ast_structure token="x" type="identifier"><level start="2:1" end="oops" tag="id"/></ast_structure></gaze>`,
	)

	res := parseString(t, demoSource, doc)
	require.Len(t, res.Samples, 1)
	require.NotNil(t, res.Samples[0].AST)
	assert.Len(t, res.Samples[0].AST.Levels, 1)
	assert.Empty(t, res.Samples[0].TokenID())
	assert.Equal(t, 1, res.Stats.WithoutTokenID)
}

func TestParse_BadTimestampDropped(t *testing.T) {
	t.Parallel()

	eyes := `<left_eye gaze_point_x="0.1" gaze_point_y="0.1" gaze_validity="1"/>`
	doc := wrapGazes(`<gaze timestamp="soon">` + eyes + `</gaze>`)

	res := parseString(t, demoSource, doc)
	assert.Empty(t, res.Samples)
	assert.Equal(t, 1, res.Stats.MissingTimestamp)
}

func TestParse_UnknownSourceUsesSentinelFileID(t *testing.T) {
	t.Parallel()

	eyes := `<left_eye gaze_point_x="0.1" gaze_point_y="0.1" gaze_validity="1"/>`
	doc := wrapGazes(`<gaze timestamp="1">` + eyes + `<ast_structure token="x" type="id"><level start="1:1" end="1:2" tag="id"/></ast_structure></gaze>`)

	res := parseString(t, "", doc)
	require.Len(t, res.Samples, 1)
	assert.Equal(t, "unknown:1:1-1:2", res.Samples[0].TokenID())
}

func TestParse_MalformedXML(t *testing.T) {
	t.Parallel()

	_, err := gaze.NewParser(demoSource).Parse(strings.NewReader(`<gazes><gaze timestamp="1"></gazes>`))
	require.ErrorIs(t, err, gaze.ErrMalformedTelemetry)
}

func TestParseFrom_CarryAcrossChunks(t *testing.T) {
	t.Parallel()

	eyes := `<left_eye gaze_point_x="0.1" gaze_point_y="0.1" gaze_validity="1"/>`
	first := wrapGazes(`<gaze timestamp="1">` + eyes + `<ast_structure token="x" type="id"><level start="4:2" end="4:3" tag="id"/></ast_structure></gaze>`)
	second := wrapGazes(`<gaze timestamp="2">` + eyes + `<ast_structure token="x" type="id" remark="Same"/></gaze>`)

	parser := gaze.NewParser(demoSource)

	head, err := parser.Parse(strings.NewReader(first))
	require.NoError(t, err)

	tail, err := parser.ParseFrom(strings.NewReader(second), head.Carry)
	require.NoError(t, err)
	require.Len(t, tail.Samples, 1)
	assert.Equal(t, head.Samples[0].TokenID(), tail.Samples[0].TokenID())

	// Without the carry the repeat cannot be resolved.
	cold, err := parser.Parse(strings.NewReader(second))
	require.NoError(t, err)
	assert.Empty(t, cold.Samples[0].TokenID())
}

func TestParse_Deterministic(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile("testdata/eye_tracking.xml")
	require.NoError(t, err)

	first := parseString(t, demoSource, string(data))
	second := parseString(t, demoSource, string(data))

	assert.Equal(t, first, second)
}
