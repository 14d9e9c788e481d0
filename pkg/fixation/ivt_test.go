package fixation_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codegaze/pkg/fixation"
	"github.com/Sumatoshi-tech/codegaze/pkg/gaze"
)

func TestDetectIVT_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, fixation.DetectIVT(nil, 0.1, 80))
}

func TestDetectIVT_ThresholdIsInclusive(t *testing.T) {
	t.Parallel()

	samples := []gaze.Sample{
		at(0, 0, 0),
		at(100, 0.3, 0.4),
		at(200, 0.3, 0.4),
	}

	// Same arithmetic as the detector: distance / dt * 1000.
	v := math.Hypot(0.3, 0.4) / float64(100) * 1000

	fixs := fixation.DetectIVT(samples, v, 0)
	require.Len(t, fixs, 1)
	assert.Equal(t, int64(0), fixs[0].StartTime)
	assert.Equal(t, int64(200), fixs[0].EndTime)
	assert.Equal(t, 3, fixs[0].NumSamples)

	below := fixation.DetectIVT(samples, math.Nextafter(v, 0), 0)
	require.Len(t, below, 2)
	assert.Equal(t, 0, below[0].EndIdx)
	assert.Equal(t, 2, below[1].StartIdx)
}

func TestDetectIVT_MinDurationBoundary(t *testing.T) {
	t.Parallel()

	short := []gaze.Sample{at(0, 0.5, 0.5), at(40, 0.5, 0.5), at(79, 0.5, 0.5)}
	assert.Empty(t, fixation.DetectIVT(short, 0.1, 80))

	exact := []gaze.Sample{at(0, 0.5, 0.5), at(40, 0.5, 0.5), at(80, 0.5, 0.5)}
	fixs := fixation.DetectIVT(exact, 0.1, 80)
	require.Len(t, fixs, 1)
	assert.Equal(t, int64(80), fixs[0].DurationMS)
}

func TestDetectIVT_NonPositiveElapsedIsZeroVelocity(t *testing.T) {
	t.Parallel()

	samples := []gaze.Sample{
		at(0, 0, 0),
		at(0, 0.9, 0.9),
		at(100, 0.9, 0.9),
	}

	fixs := fixation.DetectIVT(samples, 0.1, 80)
	require.Len(t, fixs, 1)
	assert.Equal(t, 0, fixs[0].StartIdx)
	assert.Equal(t, 2, fixs[0].EndIdx)
	assert.InDelta(t, 0.6, fixs[0].CentroidX, 1e-9)
}

func TestDetectIVT_SplitsOnFastMovement(t *testing.T) {
	t.Parallel()

	samples := []gaze.Sample{
		at(0, 0.1, 0.1),
		at(50, 0.1, 0.1),
		at(100, 0.1, 0.1),
		at(120, 0.8, 0.8),
		at(170, 0.8, 0.8),
		at(220, 0.8, 0.8),
	}

	fixs := fixation.DetectIVT(samples, 0.1, 50)
	require.Len(t, fixs, 2)

	assert.Equal(t, 0, fixs[0].StartIdx)
	assert.Equal(t, 2, fixs[0].EndIdx)
	assert.Equal(t, 4, fixs[1].StartIdx)
	assert.Equal(t, 5, fixs[1].EndIdx)
	// The landing sample itself moved fast and is not part of the run.
	assert.Equal(t, int64(50), fixs[1].DurationMS)

	assert.Len(t, fixation.DetectIVT(samples, 0.1, 80), 1)
}

func TestDetectIVT_CollectsASTTokens(t *testing.T) {
	t.Parallel()

	samples := []gaze.Sample{
		typed(0, 0.2, 0.2, "def", "keyword"),
		at(40, 0.2, 0.2),
		typed(80, 0.2, 0.2, "add", "identifier"),
		typed(120, 0.2, 0.2, "add", "identifier"),
	}
	samples[3].AST.Type = nil

	fixs := fixation.DetectIVT(samples, 0.1, 80)
	require.Len(t, fixs, 1)

	fix := fixs[0]
	require.Len(t, fix.ASTTokens, 3)
	assert.Equal(t, "def", *fix.ASTTokens[0].Value)
	assert.Equal(t, "def", *fix.ASTTokens[0].Token)
	assert.Equal(t, []string{"identifier"}, fix.ASTTokens[0].Tags)
	assert.Equal(t, map[string]int{
		"keyword":                1,
		"identifier":             1,
		fixation.UnknownNodeType: 1,
	}, fix.TokenSummary)
}
