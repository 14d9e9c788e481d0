package gaze

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/codegaze/pkg/tokenid"
)

// ErrMalformedTelemetry indicates the telemetry stream is not well-formed XML.
var ErrMalformedTelemetry = errors.New("malformed gaze telemetry")

const (
	elemGaze = "gaze"

	// repeatRemark marks an AST record that repeats the previous token.
	repeatRemark = "Same"

	// fullValidity is the validity an eye must report to be usable.
	fullValidity = 1.0
)

type rawEye struct {
	X        *string `xml:"gaze_point_x,attr"`
	Y        *string `xml:"gaze_point_y,attr"`
	Validity *string `xml:"gaze_validity,attr"`
}

type rawLocation struct {
	Path   *string `xml:"path,attr"`
	Line   *string `xml:"line,attr"`
	Column *string `xml:"column,attr"`
	X      *string `xml:"x,attr"`
	Y      *string `xml:"y,attr"`
}

type rawLevel struct {
	Start *string `xml:"start,attr"`
	End   *string `xml:"end,attr"`
	Tag   *string `xml:"tag,attr"`
}

type rawAST struct {
	Token  *string    `xml:"token,attr"`
	Type   *string    `xml:"type,attr"`
	Remark *string    `xml:"remark,attr"`
	Levels []rawLevel `xml:"level"`
}

type rawGaze struct {
	Timestamp *string      `xml:"timestamp,attr"`
	Left      *rawEye      `xml:"left_eye"`
	Right     *rawEye      `xml:"right_eye"`
	Location  *rawLocation `xml:"location"`
	AST       *rawAST      `xml:"ast_structure"`
}

// Carry is the state threaded through a forward pass: the last AST reference
// that was decoded. A zero Carry starts a fresh recording.
type Carry struct {
	Last *ASTRef
}

// Result is the outcome of decoding one telemetry stream.
type Result struct {
	Samples []Sample
	Stats   ParseStats
	// Carry is the state after the last record, usable to continue decoding
	// a following chunk of the same recording.
	Carry Carry
}

// Parser decodes gaze telemetry for a single source file.
type Parser struct {
	fileID string
}

// NewParser creates a parser whose token ids are bound to sourcePath.
// An empty sourcePath yields the "unknown" file id.
func NewParser(sourcePath string) *Parser {
	return &Parser{fileID: tokenid.FileID(sourcePath)}
}

// FileID returns the file id embedded in produced token ids.
func (p *Parser) FileID() string {
	return p.fileID
}

// Parse decodes a complete recording.
func (p *Parser) Parse(r io.Reader) (Result, error) {
	return p.ParseFrom(r, Carry{})
}

// ParseFrom decodes a stream starting from a known carry state.
// Samples are returned sorted by timestamp.
func (p *Parser) ParseFrom(r io.Reader, carry Carry) (Result, error) {
	dec := xml.NewDecoder(r)

	var (
		samples []Sample
		stats   ParseStats
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrMalformedTelemetry, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != elemGaze {
			continue
		}

		var raw rawGaze

		decodeErr := dec.DecodeElement(&raw, &start)
		if decodeErr != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrMalformedTelemetry, decodeErr)
		}

		stats.Records++

		sample, kept := p.decodeGaze(&raw, &carry, &stats)
		if !kept {
			continue
		}

		samples = append(samples, sample)
	}

	slices.SortStableFunc(samples, func(a, b Sample) int {
		switch {
		case a.T < b.T:
			return -1
		case a.T > b.T:
			return 1
		default:
			return 0
		}
	})

	stats.Kept = len(samples)

	return Result{Samples: samples, Stats: stats, Carry: carry}, nil
}

func (p *Parser) decodeGaze(raw *rawGaze, carry *Carry, stats *ParseStats) (Sample, bool) {
	if raw.Timestamp == nil {
		stats.MissingTimestamp++

		return Sample{}, false
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(*raw.Timestamp), 10, 64)
	if err != nil {
		stats.MissingTimestamp++

		return Sample{}, false
	}

	x, y, ok := mergeEyes(readEye(raw.Left), readEye(raw.Right))
	if !ok {
		stats.InvalidEyes++

		return Sample{}, false
	}

	sample := Sample{
		T:        ts,
		X:        x,
		Y:        y,
		Location: decodeLocation(raw.Location),
	}

	if raw.AST != nil {
		ast, repeated := p.decodeAST(raw.AST, carry.Last)
		if repeated {
			stats.RepeatsResolved++
		}

		if ast.TokenID == "" {
			stats.WithoutTokenID++
		}

		sample.AST = ast
		carry.Last = ast
	}

	return sample, true
}

// decodeAST builds an ASTRef, resolving "same as previous" records against prev.
func (p *Parser) decodeAST(raw *rawAST, prev *ASTRef) (*ASTRef, bool) {
	ast := &ASTRef{
		Token:  raw.Token,
		Type:   raw.Type,
		Levels: make([]Level, 0, len(raw.Levels)),
	}

	for _, lvl := range raw.Levels {
		ast.Levels = append(ast.Levels, Level{
			Start: deref(lvl.Start),
			End:   deref(lvl.End),
			Tag:   deref(lvl.Tag),
		})
	}

	repeated := false

	if len(ast.Levels) == 0 && isRepeat(raw.Remark) && prev != nil &&
		sameOptional(prev.Token, ast.Token) && sameOptional(prev.Type, ast.Type) {
		ast.Levels = slices.Clone(prev.Levels)
		repeated = len(ast.Levels) > 0
	}

	if leaf, ok := ast.Leaf(); ok {
		if id, idOK := tokenid.FromLeaf(p.fileID, leaf.Start, leaf.End); idOK {
			ast.TokenID = id
		}
	}

	return ast, repeated
}

func isRepeat(remark *string) bool {
	return remark != nil && strings.Contains(*remark, repeatRemark)
}

func sameOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func decodeLocation(raw *rawLocation) *Location {
	if raw == nil {
		return nil
	}

	loc := &Location{Path: deref(raw.Path)}

	fields := []struct {
		src *string
		dst **int
	}{
		{raw.Line, &loc.Line},
		{raw.Column, &loc.Column},
		{raw.X, &loc.X},
		{raw.Y, &loc.Y},
	}

	for _, f := range fields {
		if f.src == nil {
			continue
		}

		v, err := strconv.Atoi(strings.TrimSpace(*f.src))
		if err != nil {
			// One bad field invalidates the whole location.
			return nil
		}

		*f.dst = &v
	}

	return loc
}
