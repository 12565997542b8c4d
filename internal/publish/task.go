package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docpostbuild/internal/git"
	"git.home.luguber.info/inful/docpostbuild/internal/logfields"
	"git.home.luguber.info/inful/docpostbuild/internal/metrics"
	"git.home.luguber.info/inful/docpostbuild/internal/observability"
	"git.home.luguber.info/inful/docpostbuild/internal/retry"
	"git.home.luguber.info/inful/docpostbuild/internal/searchindex"
)

// TaskName identifies the publication task in logs, metrics and errors.
const TaskName = "publish"

// Task runs a Publisher as a post-build task: it stamps the publication with
// the run id and source commit and retries failed attempts.
type Task struct {
	publisher Publisher
	policy    retry.Policy
	repoDir   string
	recorder  metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// TaskOption customizes a Task.
type TaskOption func(*Task)

func WithPolicy(p retry.Policy) TaskOption {
	return func(t *Task) { t.policy = p }
}

// WithRepoDir sets the git checkout used to stamp publications.
// An empty dir disables the stamp.
func WithRepoDir(dir string) TaskOption {
	return func(t *Task) { t.repoDir = dir }
}

func WithRecorder(r metrics.Recorder) TaskOption {
	return func(t *Task) {
		if r != nil {
			t.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) TaskOption {
	return func(t *Task) {
		if l != nil {
			t.logger = l
		}
	}
}

func NewTask(p Publisher, opts ...TaskOption) *Task {
	t := &Task{
		publisher: p,
		policy:    retry.DefaultPolicy(),
		recorder:  metrics.NoopRecorder{},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Task) Name() string { return TaskName }

func (t *Task) Run(ctx context.Context, art *searchindex.Artifact) error {
	md := Metadata{
		RunID:       observability.GetContext(ctx).RunID,
		Commit:      t.commit(ctx),
		PublishedAt: t.now().UTC(),
	}
	name := t.publisher.Name()

	err := t.policy.Do(ctx, func(ctx context.Context) error {
		return t.publisher.Publish(ctx, art, md)
	}, func(attempt int, err error) {
		t.recorder.IncPublishRetry(name)
		t.logger.WarnContext(ctx, "Search index publication failed, retrying",
			logfields.Publisher(name),
			logfields.Attempt(attempt),
			logfields.Error(err))
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", name, err)
	}

	t.logger.InfoContext(ctx, "Search index published",
		logfields.Publisher(name),
		logfields.Pages(art.Len()),
		logfields.Commit(git.ShortHash(md.Commit)))
	return nil
}

func (t *Task) commit(ctx context.Context) string {
	if t.repoDir == "" {
		return ""
	}
	hash, err := git.HeadCommit(t.repoDir)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, git.ErrNotRepository) {
			level = slog.LevelDebug
		}
		t.logger.Log(ctx, level, "Publishing without commit stamp", logfields.Path(t.repoDir), logfields.Error(err))
		return ""
	}
	return hash
}

// Close releases the publisher.
func (t *Task) Close() error {
	return t.publisher.Close()
}
