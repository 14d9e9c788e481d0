package fixation

import (
	"math"

	"github.com/Sumatoshi-tech/codegaze/pkg/gaze"
)

// msPerSecond converts per-millisecond rates to per-second rates.
const msPerSecond = 1000.0

// distance is the Euclidean distance between two sample positions.
func distance(a, b *gaze.Sample) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// velocity returns the speed from prev to cur in position units per second.
// ok is false when the elapsed time is not positive.
func velocity(prev, cur *gaze.Sample) (v float64, ok bool) {
	dt := cur.T - prev.T
	if dt <= 0 {
		return 0, false
	}

	return distance(prev, cur) / float64(dt) * msPerSecond, true
}

// sampleVelocities returns one velocity per sample. The first sample and any
// sample with non-positive elapsed time get zero.
func sampleVelocities(samples []gaze.Sample) []float64 {
	vel := make([]float64, len(samples))

	for i := 1; i < len(samples); i++ {
		v, _ := velocity(&samples[i-1], &samples[i])
		vel[i] = v
	}

	return vel
}
