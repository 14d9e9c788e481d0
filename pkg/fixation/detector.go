// Package fixation turns gaze samples into fixations and saccades.
//
// Two detectors are provided. TokenDetector groups consecutive samples that
// look at the same AST token. VelocityDetector (I-VT) classifies samples by
// velocity and keeps sufficiently long low-velocity runs. Both are pure
// single-pass functions of an already decoded sample sequence.
package fixation

import "github.com/Sumatoshi-tech/codegaze/pkg/gaze"

// Window is a time interval produced by a detector.
type Window interface {
	Bounds() (start, end int64)
}

// Detector finds fixations in a time-ordered sample sequence.
type Detector[F Window] interface {
	Name() string
	Detect(samples []gaze.Sample) ([]F, error)
}

// Detector names.
const (
	NameToken    = "token"
	NameVelocity = "ivt"
)

// Default parameters.
const (
	DefaultMaxGapMS          int64   = 75
	DefaultDisplayGapMS      int64   = 1000
	DefaultVelocityThreshold float64 = 0.1
	DefaultMinDurationMS     int64   = 80
)

// TokenDetector groups samples by token identity and finalizes each group.
type TokenDetector struct {
	MaxGapMS int64
}

// NewTokenDetector returns a token detector with the given gap tolerance.
func NewTokenDetector(maxGapMS int64) *TokenDetector {
	return &TokenDetector{MaxGapMS: maxGapMS}
}

// Name implements Detector.
func (d *TokenDetector) Name() string { return NameToken }

// Detect implements Detector.
func (d *TokenDetector) Detect(samples []gaze.Sample) ([]Record, error) {
	groups := Group(samples, d.MaxGapMS)
	records := make([]Record, 0, len(groups))

	for i := range groups {
		rec, err := Finalize(&groups[i])
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	return records, nil
}

// VelocityDetector is the I-VT detector.
type VelocityDetector struct {
	Threshold     float64
	MinDurationMS int64
}

// NewVelocityDetector returns an I-VT detector.
func NewVelocityDetector(threshold float64, minDurationMS int64) *VelocityDetector {
	return &VelocityDetector{Threshold: threshold, MinDurationMS: minDurationMS}
}

// Name implements Detector.
func (d *VelocityDetector) Name() string { return NameVelocity }

// Detect implements Detector.
func (d *VelocityDetector) Detect(samples []gaze.Sample) ([]VelocityFixation, error) {
	return DetectIVT(samples, d.Threshold, d.MinDurationMS), nil
}

var (
	_ Detector[Record]           = (*TokenDetector)(nil)
	_ Detector[VelocityFixation] = (*VelocityDetector)(nil)
)
