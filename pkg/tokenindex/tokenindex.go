// Package tokenindex joins token fixations to the source tokens they landed on.
package tokenindex

import (
	"github.com/Sumatoshi-tech/codegaze/pkg/alg/stats"
	"github.com/Sumatoshi-tech/codegaze/pkg/fixation"
	"github.com/Sumatoshi-tech/codegaze/pkg/tokenize"
)

// Entry is a source token with the fixations attached to it.
type Entry struct {
	tokenize.Token `yaml:",inline"`

	Fixations []fixation.Record `json:"fixations" yaml:"fixations"`
}

// Index maps token ids to entries and keeps source order.
type Index struct {
	entries    []*Entry
	byID       map[string]*Entry
	duplicates int
}

// Build indexes tokens by token id. When two tokens share an id the first
// one is kept.
func Build(tokens []tokenize.Token) *Index {
	idx := &Index{
		entries: make([]*Entry, 0, len(tokens)),
		byID:    make(map[string]*Entry, len(tokens)),
	}

	for _, tok := range tokens {
		if _, ok := idx.byID[tok.TokenID]; ok {
			idx.duplicates++

			continue
		}

		e := &Entry{Token: tok}
		idx.entries = append(idx.entries, e)
		idx.byID[tok.TokenID] = e
	}

	return idx
}

// Len returns the number of indexed tokens.
func (idx *Index) Len() int { return len(idx.entries) }

// Duplicates returns how many tokens were skipped for a repeated id.
func (idx *Index) Duplicates() int { return idx.duplicates }

// Lookup returns the entry for a token id.
func (idx *Index) Lookup(tokenID string) (*Entry, bool) {
	e, ok := idx.byID[tokenID]

	return e, ok
}

// Entries returns the entries in source order.
func (idx *Index) Entries() []*Entry { return idx.entries }

// Attach appends each record to the entry with the same token id. Records
// whose id is not indexed are counted as orphaned.
func (idx *Index) Attach(records []fixation.Record) (attached, orphaned int) {
	for _, rec := range records {
		e, ok := idx.byID[rec.TokenID]
		if !ok {
			orphaned++

			continue
		}

		e.Fixations = append(e.Fixations, rec)
		attached++
	}

	return attached, orphaned
}

// TokenStats is the attention summary of one token.
type TokenStats struct {
	TokenID       string  `json:"token_id"        yaml:"token_id"`
	Text          string  `json:"text"            yaml:"text"`
	FixationCount int     `json:"fixation_count"  yaml:"fixation_count"`
	TotalDwellMS  int64   `json:"total_dwell_ms"  yaml:"total_dwell_ms"`
	MeanDwellMS   float64 `json:"mean_dwell_ms"   yaml:"mean_dwell_ms"`
	StdDevDwellMS float64 `json:"stddev_dwell_ms" yaml:"stddev_dwell_ms"`
	MedianDwellMS float64 `json:"median_dwell_ms" yaml:"median_dwell_ms"`
}

// Stats summarizes the fixations attached to e.
func Stats(e *Entry) TokenStats {
	durations := make([]int64, len(e.Fixations))
	floats := make([]float64, len(e.Fixations))

	for i, f := range e.Fixations {
		durations[i] = f.DurationMS
		floats[i] = float64(f.DurationMS)
	}

	mean, stddev := stats.MeanStdDev(floats)

	return TokenStats{
		TokenID:       e.TokenID,
		Text:          e.Text,
		FixationCount: len(e.Fixations),
		TotalDwellMS:  stats.Sum(durations),
		MeanDwellMS:   mean,
		StdDevDwellMS: stddev,
		MedianDwellMS: stats.Median(floats),
	}
}

// Attended returns stats for every token with at least one fixation, in
// source order.
func (idx *Index) Attended() []TokenStats {
	var out []TokenStats

	for _, e := range idx.entries {
		if len(e.Fixations) == 0 {
			continue
		}

		out = append(out, Stats(e))
	}

	return out
}
