package fixation

import (
	"errors"
	"fmt"
)

// ErrNoTokens is returned when summarizing a fixation that observed no AST tokens.
var ErrNoTokens = errors.New("fixation has no AST tokens")

// DwellRecord is the per-fixation line of a Summary.
type DwellRecord struct {
	Token    string `json:"token"    yaml:"token"`
	Duration int64  `json:"duration" yaml:"duration"`
	Start    int64  `json:"start"    yaml:"start"`
	End      int64  `json:"end"      yaml:"end"`
}

// Summary aggregates a merged I-VT fixation sequence.
type Summary struct {
	FixationCount   int              `json:"fixation_count"    yaml:"fixation_count"`
	SaccadeCount    int              `json:"saccade_count"     yaml:"saccade_count"`
	TokenDwellTimes map[string]int64 `json:"token_dwell_times" yaml:"token_dwell_times"`
	FixationRecords []DwellRecord    `json:"fixation_records"  yaml:"fixation_records"`
}

// Merge collapses consecutive fixations whose AST token values are pairwise
// equal. The earlier fixation is extended to the end of the later one; its
// centroid and sample count are left unchanged. The input is not modified.
func Merge(fixations []VelocityFixation) []VelocityFixation {
	if len(fixations) == 0 {
		return nil
	}

	merged := make([]VelocityFixation, 0, len(fixations))
	cur := fixations[0]

	for _, fix := range fixations[1:] {
		if sameTokenValues(cur.ASTTokens, fix.ASTTokens) {
			cur.EndTime = fix.EndTime
			cur.DurationMS = cur.EndTime - cur.StartTime
			cur.EndIdx = fix.EndIdx

			continue
		}

		merged = append(merged, cur)
		cur = fix
	}

	return append(merged, cur)
}

func sameTokenValues(a, b []ASTToken) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !equalOptional(a[i].Value, b[i].Value) {
			return false
		}
	}

	return true
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}

// Summarize aggregates dwell time per token over merged fixations. Each
// fixation's whole duration is credited to the value of its first AST token
// (a missing value is keyed as "N/A"). Every fixation must carry at least one
// AST token.
func Summarize(merged []VelocityFixation) (Summary, error) {
	summary := Summary{
		FixationCount:   len(merged),
		SaccadeCount:    max(0, len(merged)-1),
		TokenDwellTimes: make(map[string]int64),
		FixationRecords: make([]DwellRecord, 0, len(merged)),
	}

	for i := range merged {
		fix := &merged[i]
		if len(fix.ASTTokens) == 0 {
			return Summary{}, fmt.Errorf("%w: fixation %d (%d-%d ms)", ErrNoTokens, i, fix.StartTime, fix.EndTime)
		}

		value := ValueMissing
		if v := fix.ASTTokens[0].Value; v != nil {
			value = *v
		}

		summary.TokenDwellTimes[value] += fix.DurationMS
		summary.FixationRecords = append(summary.FixationRecords, DwellRecord{
			Token:    value,
			Duration: fix.DurationMS,
			Start:    fix.StartTime,
			End:      fix.EndTime,
		})
	}

	return summary, nil
}

// WithTokens returns the fixations that observed at least one AST token,
// establishing the precondition of Summarize. dropped counts the rest.
func WithTokens(fixations []VelocityFixation) (kept []VelocityFixation, dropped int) {
	kept = make([]VelocityFixation, 0, len(fixations))

	for i := range fixations {
		if len(fixations[i].ASTTokens) == 0 {
			dropped++

			continue
		}

		kept = append(kept, fixations[i])
	}

	return kept, dropped
}

// MergeAttributed merges the full fixation sequence and only then drops the
// merged windows without AST tokens. Filtering after the merge keeps
// adjacency intact: a token-less window still separates its neighbours.
func MergeAttributed(fixations []VelocityFixation) (merged []VelocityFixation, dropped int) {
	return WithTokens(Merge(fixations))
}
