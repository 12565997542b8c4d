package postbuild

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docpostbuild/internal/config"
	pberrors "git.home.luguber.info/inful/docpostbuild/internal/errors"
	"git.home.luguber.info/inful/docpostbuild/internal/logfields"
	"git.home.luguber.info/inful/docpostbuild/internal/metrics"
	"git.home.luguber.info/inful/docpostbuild/internal/observability"
	"git.home.luguber.info/inful/docpostbuild/internal/searchindex"
)

// Task is a unit of downstream work fed with the parsed artifact.
// Tasks must not modify the artifact; it is shared between them.
type Task interface {
	Name() string
	Run(ctx context.Context, art *searchindex.Artifact) error
}

// Runner is anything that performs one complete post-build run.
type Runner interface {
	Run(ctx context.Context) error
}

// Orchestrator performs post-build runs.
type Orchestrator struct {
	artifactPath string
	tasks        []Task

	recorder metrics.Recorder
	logger   *slog.Logger
	newRunID func() string
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRunIDFunc replaces the uuid run id generator.
func WithRunIDFunc(f func() string) Option {
	return func(o *Orchestrator) {
		if f != nil {
			o.newRunID = f
		}
	}
}

// New creates an Orchestrator reading the artifact configured in cfg and
// feeding it to tasks.
func New(cfg *config.Config, tasks []Task, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		artifactPath: cfg.ArtifactPath(),
		tasks:        tasks,
		recorder:     metrics.NoopRecorder{},
		logger:       slog.Default(),
		newRunID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ArtifactPath is the file the orchestrator reads.
func (o *Orchestrator) ArtifactPath() string { return o.artifactPath }

// Tasks returns the names of the registered tasks.
func (o *Orchestrator) Tasks() []string {
	names := make([]string, len(o.tasks))
	for i, t := range o.tasks {
		names[i] = t.Name()
	}
	return names
}

// Run performs one post-build run. It returns an artifact_read or
// artifact_parse error without starting any task when the artifact is
// unusable, and a downstream error naming every failed task otherwise.
func (o *Orchestrator) Run(ctx context.Context) error {
	start := time.Now()
	runID := o.newRunID()
	ctx = observability.WithRunID(ctx, runID)

	o.logger.InfoContext(ctx, "Post-build run started",
		logfields.Path(o.artifactPath),
		slog.Any("tasks", o.Tasks()))

	art, err := searchindex.Load(o.artifactPath)
	if err != nil {
		o.finish(ctx, start, metrics.RunOutcomeArtifactError)
		return err
	}
	o.recorder.SetArtifactPages(art.Len())
	if art.Len() == 0 {
		o.logger.WarnContext(ctx, "Search index artifact lists no pages", logfields.Path(o.artifactPath))
	}

	errs := o.fanOut(ctx, art)

	var failed []string
	var joined []error
	for i, err := range errs {
		if err != nil {
			failed = append(failed, o.tasks[i].Name())
			joined = append(joined, fmt.Errorf("%s: %w", o.tasks[i].Name(), err))
		}
	}
	if len(failed) > 0 {
		o.finish(ctx, start, metrics.RunOutcomeTaskFailed)
		return pberrors.DownstreamTaskError(failed, errors.Join(joined...))
	}

	o.finish(ctx, start, metrics.RunOutcomeSuccess)
	o.logger.InfoContext(ctx, "Post-build run completed",
		logfields.Pages(art.Len()),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return nil
}

// fanOut starts every task before waiting for any and returns their errors
// in task order.
func (o *Orchestrator) fanOut(ctx context.Context, art *searchindex.Artifact) []error {
	errs := make([]error, len(o.tasks))
	var wg sync.WaitGroup
	for i, t := range o.tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = o.runTask(observability.WithTask(ctx, t.Name()), t, art)
		}()
	}
	wg.Wait()
	return errs
}

func (o *Orchestrator) runTask(ctx context.Context, t Task, art *searchindex.Artifact) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.logger.ErrorContext(ctx, "Post-build task panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			err = pberrors.InternalError(fmt.Sprintf("task panicked: %v", r), nil)
		}

		d := time.Since(start)
		o.recorder.ObserveTaskDuration(t.Name(), d)
		if err != nil {
			o.recorder.IncTaskResult(t.Name(), metrics.ResultFailed)
			// the caller reports the joined error
			o.logger.DebugContext(ctx, "Post-build task failed",
				logfields.DurationMS(float64(d.Milliseconds())),
				slog.String("category", string(pberrors.GetCategory(err))))
			return
		}
		o.recorder.IncTaskResult(t.Name(), metrics.ResultSuccess)
		o.logger.DebugContext(ctx, "Post-build task finished",
			logfields.DurationMS(float64(d.Milliseconds())))
	}()

	return t.Run(ctx, art)
}

func (o *Orchestrator) finish(ctx context.Context, start time.Time, outcome metrics.RunOutcomeLabel) {
	o.recorder.ObserveRunDuration(time.Since(start))
	o.recorder.IncRunOutcome(outcome)
	if outcome != metrics.RunOutcomeSuccess {
		o.logger.DebugContext(ctx, "Post-build run ended", slog.String("outcome", string(outcome)))
	}
}
