package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRecordingsTotal   = "codegaze.recordings.total"
	metricRecordingDuration = "codegaze.recording.duration.seconds"
	metricInflight          = "codegaze.recordings.inflight"
	metricSamplesTotal      = "codegaze.samples.total"
	metricSamplesDropped    = "codegaze.samples.dropped.total"
	metricFixationsTotal    = "codegaze.fixations.total"
	metricSaccadesTotal     = "codegaze.saccades.total"
	metricOrphanedTotal     = "codegaze.join.orphaned.total"

	attrStatus   = "status"
	attrReason   = "reason"
	attrDetector = "detector"

	// StatusOK marks a recording processed without error.
	StatusOK = "ok"
	// StatusError marks a failed recording.
	StatusError = "error"
)

// Drop reasons for samples.
const (
	ReasonMissingTimestamp = "missing_timestamp"
	ReasonInvalidEyes      = "invalid_eyes"
)

// durationBucketBoundaries covers 1ms to 60s: a recording ranges from a
// short smoke test to an hour-long session.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// PipelineMetrics holds the OTel instruments recorded per analyzed recording.
type PipelineMetrics struct {
	recordingsTotal   metric.Int64Counter
	recordingDuration metric.Float64Histogram
	inflight          metric.Int64UpDownCounter
	samplesTotal      metric.Int64Counter
	samplesDropped    metric.Int64Counter
	fixationsTotal    metric.Int64Counter
	saccadesTotal     metric.Int64Counter
	orphanedTotal     metric.Int64Counter
}

// RecordingStats holds the counters of a single recording run, decoupled
// from the pipeline types.
type RecordingStats struct {
	Samples          int
	MissingTimestamp int
	InvalidEyes      int
	Fixations        map[string]int
	Saccades         int
	Orphaned         int
	Duration         time.Duration
	Err              error
}

// NewPipelineMetrics creates pipeline instruments from the given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	recordings, err := mt.Int64Counter(metricRecordingsTotal,
		metric.WithDescription("Recordings analyzed by status"),
		metric.WithUnit("{recording}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRecordingsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricRecordingDuration,
		metric.WithDescription("Per-recording analysis duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRecordingDuration, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricInflight,
		metric.WithDescription("Recordings currently being analyzed"),
		metric.WithUnit("{recording}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInflight, err)
	}

	samples, err := mt.Int64Counter(metricSamplesTotal,
		metric.WithDescription("Gaze samples kept after parsing"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSamplesTotal, err)
	}

	dropped, err := mt.Int64Counter(metricSamplesDropped,
		metric.WithDescription("Gaze records dropped by reason"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSamplesDropped, err)
	}

	fixations, err := mt.Int64Counter(metricFixationsTotal,
		metric.WithDescription("Fixations detected by detector"),
		metric.WithUnit("{fixation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFixationsTotal, err)
	}

	saccades, err := mt.Int64Counter(metricSaccadesTotal,
		metric.WithDescription("Saccades built between I-VT fixations"),
		metric.WithUnit("{saccade}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSaccadesTotal, err)
	}

	orphaned, err := mt.Int64Counter(metricOrphanedTotal,
		metric.WithDescription("Token fixations without a matching source token"),
		metric.WithUnit("{fixation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricOrphanedTotal, err)
	}

	return &PipelineMetrics{
		recordingsTotal:   recordings,
		recordingDuration: duration,
		inflight:          inflight,
		samplesTotal:      samples,
		samplesDropped:    dropped,
		fixationsTotal:    fixations,
		saccadesTotal:     saccades,
		orphanedTotal:     orphaned,
	}, nil
}

// TrackInflight increments the in-flight gauge and returns a function to
// decrement it. Safe to call on a nil receiver.
func (pm *PipelineMetrics) TrackInflight(ctx context.Context) func() {
	if pm == nil {
		return func() {}
	}

	pm.inflight.Add(ctx, 1)

	return func() {
		pm.inflight.Add(ctx, -1)
	}
}

// RecordRecording records the statistics of a finished recording.
// Safe to call on a nil receiver (no-op).
func (pm *PipelineMetrics) RecordRecording(ctx context.Context, stats RecordingStats) {
	if pm == nil {
		return
	}

	status := StatusOK
	if stats.Err != nil {
		status = StatusError
	}

	statusAttrs := metric.WithAttributes(attribute.String(attrStatus, status))
	pm.recordingsTotal.Add(ctx, 1, statusAttrs)
	pm.recordingDuration.Record(ctx, stats.Duration.Seconds(), statusAttrs)

	if stats.Err != nil {
		return
	}

	pm.samplesTotal.Add(ctx, int64(stats.Samples))
	pm.samplesDropped.Add(ctx, int64(stats.MissingTimestamp),
		metric.WithAttributes(attribute.String(attrReason, ReasonMissingTimestamp)))
	pm.samplesDropped.Add(ctx, int64(stats.InvalidEyes),
		metric.WithAttributes(attribute.String(attrReason, ReasonInvalidEyes)))

	for detector, n := range stats.Fixations {
		pm.fixationsTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attrDetector, detector)))
	}

	pm.saccadesTotal.Add(ctx, int64(stats.Saccades))
	pm.orphanedTotal.Add(ctx, int64(stats.Orphaned))
}
