package fixation

import "github.com/Sumatoshi-tech/codegaze/pkg/gaze"

// Saccade is the transition between two consecutive I-VT fixations.
type Saccade struct {
	StartTime    int64      `json:"start_time"    yaml:"start_time"`
	EndTime      int64      `json:"end_time"      yaml:"end_time"`
	DurationMS   int64      `json:"duration_ms"   yaml:"duration_ms"`
	Amplitude    float64    `json:"amplitude"     yaml:"amplitude"`
	PeakVelocity float64    `json:"peak_velocity" yaml:"peak_velocity"`
	FromIdx      int        `json:"from_idx"      yaml:"from_idx"`
	ToIdx        int        `json:"to_idx"        yaml:"to_idx"`
	ASTTokens    []ASTToken `json:"ast_tokens"    yaml:"ast_tokens"`
}

// Bounds implements Window.
func (s Saccade) Bounds() (start, end int64) { return s.StartTime, s.EndTime }

// BuildSaccades returns one saccade per adjacent fixation pair, spanning from
// the last sample of one fixation to the first sample of the next. Pairs
// whose boundary indexes do not advance are skipped.
//
// Peak velocity ignores sample pairs with non-positive elapsed time, whereas
// DetectIVT counts such pairs as zero velocity. Both behaviours are relied on
// by existing reports and are kept as is.
func BuildSaccades(fixations []VelocityFixation, samples []gaze.Sample) []Saccade {
	if len(fixations) < 2 { //nolint:mnd // a saccade needs two fixations
		return nil
	}

	saccades := make([]Saccade, 0, len(fixations)-1)

	for k := range len(fixations) - 1 {
		from := fixations[k].EndIdx
		to := fixations[k+1].StartIdx

		if from >= to {
			continue
		}

		peak := 0.0

		for i := from + 1; i <= to; i++ {
			v, ok := velocity(&samples[i-1], &samples[i])
			if ok && v > peak {
				peak = v
			}
		}

		saccades = append(saccades, Saccade{
			StartTime:    samples[from].T,
			EndTime:      samples[to].T,
			DurationMS:   samples[to].T - samples[from].T,
			Amplitude:    distance(&samples[from], &samples[to]),
			PeakVelocity: peak,
			FromIdx:      from,
			ToIdx:        to,
			ASTTokens:    collectASTTokens(samples[from : to+1]),
		})
	}

	return saccades
}
