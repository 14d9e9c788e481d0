package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/codegaze/pkg/fixation"
	"github.com/Sumatoshi-tech/codegaze/pkg/gaze"
	"github.com/Sumatoshi-tech/codegaze/pkg/observability"
	"github.com/Sumatoshi-tech/codegaze/pkg/report"
	"github.com/Sumatoshi-tech/codegaze/pkg/tokenindex"
	"github.com/Sumatoshi-tech/codegaze/pkg/tokenize"
)

// spanPrefix is the prefix of every stage span name.
const spanPrefix = "codegaze."

// Stage names.
const (
	StageParse     = "parse"
	StageToken     = "detect.token"
	StageIVT       = "detect.ivt"
	StageSaccades  = "saccades"
	StageSummarize = "summarize"
	StageTokenize  = "tokenize"
)

// Runner executes pipeline runs with shared telemetry.
type Runner struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics *observability.PipelineMetrics
}

// NewRunner creates a runner. A nil tracer or logger is replaced by a no-op
// one; nil metrics disables recording.
func NewRunner(tracer trace.Tracer, logger *slog.Logger, metrics *observability.PipelineMetrics) *Runner {
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Runner{tracer: tracer, logger: logger, metrics: metrics}
}

// NewRunnerFromProviders creates a runner wired to initialized providers.
func NewRunnerFromProviders(p observability.Providers) *Runner {
	return NewRunner(p.Tracer, p.Logger, p.Metrics)
}

// Run analyzes a single recording.
func (r *Runner) Run(ctx context.Context, opts Options) (*report.Report, error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	ctx, span := r.tracer.Start(ctx, spanPrefix+"run",
		trace.WithAttributes(attribute.String("recording.name", filepath.Base(opts.Recording))),
	)
	defer span.End()

	done := r.metrics.TrackInflight(ctx)
	defer done()

	start := time.Now()

	rep, stats, err := r.run(ctx, &opts)

	stats.Duration = time.Since(start)
	stats.Err = err
	r.metrics.RecordRecording(ctx, stats)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("analyze %s: %w", opts.Recording, err)
	}

	r.logger.InfoContext(ctx, "recording analyzed",
		"recording", opts.Recording,
		"samples", stats.Samples,
		"token_fixations", len(rep.TokenFixations),
		"ivt_fixations", len(rep.IVTFixations),
		"saccades", len(rep.Saccades),
		"duration", stats.Duration,
	)

	return rep, nil
}

func (r *Runner) run(ctx context.Context, opts *Options) (*report.Report, observability.RecordingStats, error) {
	stats := observability.RecordingStats{Fixations: make(map[string]int)}

	rep := report.New(opts.Recording)
	rep.Source = opts.Source
	rep.Parameters = opts.Parameters()

	parsed, err := stage(ctx, r, StageParse, func(context.Context) (gaze.Result, error) {
		return parseRecording(opts.Recording, opts.Source)
	})
	if err != nil {
		return nil, stats, err
	}

	samples := parsed.Samples
	rep.ParseStats = parsed.Stats
	stats.Samples = len(samples)
	stats.MissingTimestamp = parsed.Stats.MissingTimestamp
	stats.InvalidEyes = parsed.Stats.InvalidEyes

	if parsed.Stats.Dropped() > 0 {
		r.logger.WarnContext(ctx, "samples dropped",
			"recording", opts.Recording,
			"missing_timestamp", parsed.Stats.MissingTimestamp,
			"invalid_eyes", parsed.Stats.InvalidEyes,
		)
	}

	r.logger.DebugContext(ctx, "telemetry decoded",
		"recording", opts.Recording,
		"records", parsed.Stats.Records,
		"samples", len(samples),
		"without_token_id", parsed.Stats.WithoutTokenID,
	)

	rep.TokenFixations, err = stage(ctx, r, StageToken, func(context.Context) ([]fixation.Record, error) {
		return fixation.NewTokenDetector(opts.MaxGapMS).Detect(samples)
	})
	if err != nil {
		return nil, stats, err
	}

	rep.DisplayFixations, err = fixation.NewTokenDetector(opts.DisplayGapMS).Detect(samples)
	if err != nil {
		return nil, stats, fmt.Errorf("display fixations: %w", err)
	}

	stats.Fixations[fixation.NameToken] = len(rep.TokenFixations)

	rep.IVTFixations, err = stage(ctx, r, StageIVT, func(context.Context) ([]fixation.VelocityFixation, error) {
		return fixation.NewVelocityDetector(opts.VelocityThreshold, opts.MinDurationMS).Detect(samples)
	})
	if err != nil {
		return nil, stats, err
	}

	stats.Fixations[fixation.NameVelocity] = len(rep.IVTFixations)

	rep.Saccades, err = stage(ctx, r, StageSaccades, func(context.Context) ([]fixation.Saccade, error) {
		return fixation.BuildSaccades(rep.IVTFixations, samples), nil
	})
	if err != nil {
		return nil, stats, err
	}

	stats.Saccades = len(rep.Saccades)

	err = r.summarize(ctx, rep)
	if err != nil {
		return nil, stats, err
	}

	if opts.IDETracking != "" {
		env, envErr := readEnvironment(opts.IDETracking)
		if envErr != nil {
			return nil, stats, envErr
		}

		rep.Environment = &env
	}

	if !opts.tokenSource() {
		return rep, stats, nil
	}

	err = ctx.Err()
	if err != nil {
		return nil, stats, err
	}

	err = r.join(ctx, opts, rep)
	if err != nil {
		return nil, stats, err
	}

	stats.Orphaned = rep.Join.Orphaned

	return rep, stats, nil
}

func (r *Runner) summarize(ctx context.Context, rep *report.Report) error {
	summary, err := stage(ctx, r, StageSummarize, func(context.Context) (fixation.Summary, error) {
		rep.MergedFixations, rep.UnattributedFixations = fixation.MergeAttributed(rep.IVTFixations)

		return fixation.Summarize(rep.MergedFixations)
	})
	if err != nil {
		return err
	}

	rep.Summary = summary

	if rep.UnattributedFixations > 0 {
		r.logger.DebugContext(ctx, "merged fixations without tokens left out of summary",
			"recording", rep.Recording,
			"fixations", rep.UnattributedFixations,
		)
	}

	return nil
}

// join loads or extracts the source tokens and attaches token fixations.
func (r *Runner) join(ctx context.Context, opts *Options, rep *report.Report) error {
	tokens, err := stage(ctx, r, StageTokenize, func(ctx context.Context) ([]tokenize.Token, error) {
		if opts.TokensFile != "" {
			return readTokens(opts.TokensFile, opts.Source)
		}

		toks, lang, extractErr := extractTokens(ctx, opts.Source, opts.Language)
		rep.Language = lang

		return toks, extractErr
	})
	if err != nil {
		return err
	}

	idx := tokenindex.Build(tokens)
	attached, orphaned := idx.Attach(rep.TokenFixations)
	rep.SetTokens(tokens, idx, attached, orphaned)

	if idx.Duplicates() > 0 {
		r.logger.WarnContext(ctx, "duplicate token ids in token list",
			"recording", opts.Recording,
			"duplicates", idx.Duplicates(),
		)
	}

	if orphaned > 0 {
		r.logger.WarnContext(ctx, "token fixations without a matching token",
			"recording", opts.Recording,
			"orphaned", orphaned,
			"attached", attached,
		)
	}

	return nil
}

// RunBatch analyzes independent recordings concurrently with at most workers
// runs in flight (zero or negative means GOMAXPROCS). Reports are returned in
// input order. The first failure cancels the remaining runs.
func (r *Runner) RunBatch(ctx context.Context, opts []Options, workers int) ([]*report.Report, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	reports := make([]*report.Report, len(opts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range opts {
		g.Go(func() error {
			rep, err := r.Run(gctx, opts[i])
			if err != nil {
				return err
			}

			reports[i] = rep

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "batch analyzed", "recordings", len(opts), "workers", workers)

	return reports, nil
}

// Run analyzes a single recording without telemetry.
func Run(ctx context.Context, opts Options) (*report.Report, error) {
	return NewRunner(nil, nil, nil).Run(ctx, opts)
}

// RunBatch analyzes recordings concurrently without telemetry.
func RunBatch(ctx context.Context, opts []Options, workers int) ([]*report.Report, error) {
	return NewRunner(nil, nil, nil).RunBatch(ctx, opts, workers)
}

// stage runs fn inside a span named after the stage.
func stage[T any](ctx context.Context, r *Runner, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := r.tracer.Start(ctx, spanPrefix+name)
	defer span.End()

	var v T

	err := ctx.Err()
	if err == nil {
		v, err = fn(ctx)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return v, err
}

func parseRecording(path, source string) (gaze.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return gaze.Result{}, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	return gaze.NewParser(source).Parse(f)
}

func readEnvironment(path string) (gaze.Environment, error) {
	f, err := os.Open(path)
	if err != nil {
		return gaze.Environment{}, fmt.Errorf("open ide tracking: %w", err)
	}
	defer f.Close()

	env, err := gaze.ParseEnvironment(f)
	if err != nil {
		return gaze.Environment{}, fmt.Errorf("%s: %w", path, err)
	}

	return env, nil
}

func readTokens(path, source string) ([]tokenize.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open token list: %w", err)
	}
	defer f.Close()

	return tokenize.LoadTokens(f, source)
}

// extractTokens tokenizes the source file, detecting its language when
// language is empty. The resolved grammar name is returned.
func extractTokens(ctx context.Context, path, language string) ([]tokenize.Token, string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read source: %w", err)
	}

	if language == "" {
		language, err = tokenize.DetectLanguage(path, content)
		if err != nil {
			return nil, "", err
		}
	} else {
		language = tokenize.GrammarName(language)
	}

	tokens, err := tokenize.Extract(ctx, content, language, path)
	if err != nil {
		return nil, language, err
	}

	return tokens, language, nil
}
