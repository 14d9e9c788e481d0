// Package report assembles, persists and renders the result of analyzing
// one gaze recording.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/Sumatoshi-tech/codegaze/pkg/fixation"
	"github.com/Sumatoshi-tech/codegaze/pkg/gaze"
	"github.com/Sumatoshi-tech/codegaze/pkg/tokenindex"
	"github.com/Sumatoshi-tech/codegaze/pkg/tokenize"
)

// Parameters records the detector settings a report was produced with.
type Parameters struct {
	MaxGapMS          int64   `json:"max_gap_ms"          yaml:"max_gap_ms"`
	DisplayGapMS      int64   `json:"display_gap_ms"      yaml:"display_gap_ms"`
	VelocityThreshold float64 `json:"velocity_threshold"  yaml:"velocity_threshold"`
	MinDurationMS     int64   `json:"min_duration_ms"     yaml:"min_duration_ms"`
}

// JoinStats describes how token fixations matched source tokens.
type JoinStats struct {
	Tokens     int `json:"tokens"     yaml:"tokens"`
	Duplicates int `json:"duplicates" yaml:"duplicates"`
	Attached   int `json:"attached"   yaml:"attached"`
	Orphaned   int `json:"orphaned"   yaml:"orphaned"`
}

// Report is the full analysis of one recording.
type Report struct {
	RunID       string            `json:"run_id"                yaml:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"          yaml:"generated_at"`
	Recording   string            `json:"recording"             yaml:"recording"`
	Source      string            `json:"source,omitempty"      yaml:"source,omitempty"`
	Language    string            `json:"language,omitempty"    yaml:"language,omitempty"`
	Parameters  Parameters        `json:"parameters"            yaml:"parameters"`
	Environment *gaze.Environment `json:"environment,omitempty" yaml:"environment,omitempty"`
	ParseStats  gaze.ParseStats   `json:"parse_stats"           yaml:"parse_stats"`

	TokenFixations   []fixation.Record           `json:"token_fixations"   yaml:"token_fixations"`
	DisplayFixations []fixation.Record           `json:"display_fixations" yaml:"display_fixations"`
	IVTFixations     []fixation.VelocityFixation `json:"ivt_fixations"     yaml:"ivt_fixations"`
	MergedFixations  []fixation.VelocityFixation `json:"merged_fixations"  yaml:"merged_fixations"`
	Saccades         []fixation.Saccade          `json:"saccades"          yaml:"saccades"`
	Summary          fixation.Summary            `json:"summary"           yaml:"summary"`

	// UnattributedFixations counts merged fixations that saw no AST token
	// and were left out of MergedFixations and the summary.
	UnattributedFixations int `json:"unattributed_fixations" yaml:"unattributed_fixations"`

	Tokens     []tokenize.Token        `json:"tokens,omitempty"      yaml:"tokens,omitempty"`
	TokenStats []tokenindex.TokenStats `json:"token_stats,omitempty" yaml:"token_stats,omitempty"`
	Join       *JoinStats              `json:"join,omitempty"        yaml:"join,omitempty"`
}

// New returns an empty report for a recording with a fresh run id.
func New(recording string) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Recording:   recording,
	}
}

// SetTokens stores the token list and the attention statistics of idx.
func (r *Report) SetTokens(tokens []tokenize.Token, idx *tokenindex.Index, attached, orphaned int) {
	r.Tokens = tokens
	r.TokenStats = idx.Attended()
	r.Join = &JoinStats{
		Tokens:     idx.Len(),
		Duplicates: idx.Duplicates(),
		Attached:   attached,
		Orphaned:   orphaned,
	}
}
