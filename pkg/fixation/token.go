package fixation

import (
	"errors"

	"github.com/Sumatoshi-tech/codegaze/pkg/alg/stats"
	"github.com/Sumatoshi-tech/codegaze/pkg/gaze"
)

// ErrEmptyFixation is returned when finalizing a fixation without samples.
var ErrEmptyFixation = errors.New("fixation has no samples")

// Display values for tokens without printable text.
const (
	ValueMissing = "N/A"
	ValueNewline = "Newline"
)

// RawFixation is an open or closed run of samples on one token.
type RawFixation struct {
	Index     int
	TokenID   string
	StartTime int64
	EndTime   int64
	Samples   []gaze.Sample
}

// Record is a finalized token fixation.
type Record struct {
	Index      int     `json:"index"       yaml:"index"`
	TokenID    string  `json:"token_id"    yaml:"token_id"`
	StartTime  int64   `json:"start_time"  yaml:"start_time"`
	EndTime    int64   `json:"end_time"    yaml:"end_time"`
	DurationMS int64   `json:"duration_ms" yaml:"duration_ms"`
	CentroidX  float64 `json:"centroid_x"  yaml:"centroid_x"`
	CentroidY  float64 `json:"centroid_y"  yaml:"centroid_y"`
	NumSamples int     `json:"num_samples" yaml:"num_samples"`
	Value      string  `json:"value"       yaml:"value"`
}

// Bounds implements Window.
func (r Record) Bounds() (start, end int64) { return r.StartTime, r.EndTime }

// Group splits samples into runs on the same token id. A run is closed when
// the token changes or the gap since its last sample exceeds maxGapMS.
// Samples without a token id are ignored. Indexes start at 1.
func Group(samples []gaze.Sample, maxGapMS int64) []RawFixation {
	var (
		groups []RawFixation
		cur    *RawFixation
		next   = 1
	)

	for i := range samples {
		s := &samples[i]

		tid := s.TokenID()
		if tid == "" {
			continue
		}

		if cur != nil && tid == cur.TokenID && s.T-cur.EndTime <= maxGapMS {
			cur.EndTime = s.T
			cur.Samples = append(cur.Samples, *s)

			continue
		}

		if cur != nil {
			groups = append(groups, *cur)
		}

		cur = &RawFixation{
			Index:     next,
			TokenID:   tid,
			StartTime: s.T,
			EndTime:   s.T,
			Samples:   []gaze.Sample{*s},
		}
		next++
	}

	if cur != nil {
		groups = append(groups, *cur)
	}

	return groups
}

// Finalize reduces a raw fixation to its summary record.
func Finalize(f *RawFixation) (Record, error) {
	if len(f.Samples) == 0 {
		return Record{}, ErrEmptyFixation
	}

	xs := make([]float64, len(f.Samples))
	ys := make([]float64, len(f.Samples))

	for i := range f.Samples {
		xs[i] = f.Samples[i].X
		ys[i] = f.Samples[i].Y
	}

	return Record{
		Index:      f.Index,
		TokenID:    f.TokenID,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		DurationMS: f.EndTime - f.StartTime,
		CentroidX:  stats.Mean(xs),
		CentroidY:  stats.Mean(ys),
		NumSamples: len(f.Samples),
		Value:      DisplayValue(f.Samples[0].AST),
	}, nil
}

// DisplayValue renders a token for display: "N/A" when there is no text,
// "Newline" for a lone line break, the raw text otherwise.
func DisplayValue(ast *gaze.ASTRef) string {
	if ast == nil || ast.Token == nil {
		return ValueMissing
	}

	if *ast.Token == "\n" {
		return ValueNewline
	}

	return *ast.Token
}
