package fixation

import (
	"github.com/Sumatoshi-tech/codegaze/pkg/alg/stats"
	"github.com/Sumatoshi-tech/codegaze/pkg/gaze"
)

// UnknownNodeType is the token summary key for AST references without a type.
const UnknownNodeType = "unknown"

// ASTToken is an AST reference observed inside a fixation or saccade window.
type ASTToken struct {
	Token *string  `json:"token" yaml:"token"`
	Type  *string  `json:"type"  yaml:"type"`
	Tags  []string `json:"tags"  yaml:"tags"`
	Value *string  `json:"value" yaml:"value"`
}

// VelocityFixation is a fixation found by the I-VT detector.
type VelocityFixation struct {
	StartTime    int64          `json:"start_time"    yaml:"start_time"`
	EndTime      int64          `json:"end_time"      yaml:"end_time"`
	DurationMS   int64          `json:"duration_ms"   yaml:"duration_ms"`
	CentroidX    float64        `json:"centroid_x"    yaml:"centroid_x"`
	CentroidY    float64        `json:"centroid_y"    yaml:"centroid_y"`
	NumSamples   int            `json:"num_samples"   yaml:"num_samples"`
	StartIdx     int            `json:"start_idx"     yaml:"start_idx"`
	EndIdx       int            `json:"end_idx"       yaml:"end_idx"`
	ASTTokens    []ASTToken     `json:"ast_tokens"    yaml:"ast_tokens"`
	TokenSummary map[string]int `json:"token_summary" yaml:"token_summary"`
}

// Bounds implements Window.
func (f VelocityFixation) Bounds() (start, end int64) { return f.StartTime, f.EndTime }

// DetectIVT runs identification by velocity threshold. A sample is fixating
// when its velocity from the previous sample is at most threshold (units per
// second). Contiguous fixating runs lasting at least minDurationMS are kept.
func DetectIVT(samples []gaze.Sample, threshold float64, minDurationMS int64) []VelocityFixation {
	if len(samples) == 0 {
		return nil
	}

	vel := sampleVelocities(samples)
	n := len(samples)

	var fixations []VelocityFixation

	for i := 0; i < n; {
		if vel[i] > threshold {
			i++

			continue
		}

		startIdx, endIdx := i, i
		for endIdx+1 < n && vel[endIdx+1] <= threshold {
			endIdx++
		}

		duration := samples[endIdx].T - samples[startIdx].T
		if duration >= minDurationMS {
			fixations = append(fixations, newVelocityFixation(samples, startIdx, endIdx))
		}

		i = endIdx + 1
	}

	return fixations
}

func newVelocityFixation(samples []gaze.Sample, startIdx, endIdx int) VelocityFixation {
	window := samples[startIdx : endIdx+1]

	xs := make([]float64, len(window))
	ys := make([]float64, len(window))

	for i := range window {
		xs[i] = window[i].X
		ys[i] = window[i].Y
	}

	tokens := collectASTTokens(window)

	return VelocityFixation{
		StartTime:    samples[startIdx].T,
		EndTime:      samples[endIdx].T,
		DurationMS:   samples[endIdx].T - samples[startIdx].T,
		CentroidX:    stats.Mean(xs),
		CentroidY:    stats.Mean(ys),
		NumSamples:   len(window),
		StartIdx:     startIdx,
		EndIdx:       endIdx,
		ASTTokens:    tokens,
		TokenSummary: summarizeTokens(tokens),
	}
}

// collectASTTokens returns one entry per sample in window that carries an AST reference.
func collectASTTokens(window []gaze.Sample) []ASTToken {
	tokens := make([]ASTToken, 0, len(window))

	for i := range window {
		ast := window[i].AST
		if ast == nil {
			continue
		}

		tokens = append(tokens, ASTToken{
			Token: ast.Token,
			Type:  ast.Type,
			Tags:  ast.Tags(),
			Value: ast.Token,
		})
	}

	return tokens
}

func summarizeTokens(tokens []ASTToken) map[string]int {
	summary := make(map[string]int)

	for _, t := range tokens {
		key := UnknownNodeType
		if t.Type != nil {
			key = *t.Type
		}

		summary[key]++
	}

	return summary
}
