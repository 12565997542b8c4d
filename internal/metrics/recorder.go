package metrics

import "time"

// ResultLabel enumerates task result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// RunOutcomeLabel enumerates the final status of a post-build run.
type RunOutcomeLabel string

const (
	RunOutcomeSuccess       RunOutcomeLabel = "success"
	RunOutcomeArtifactError RunOutcomeLabel = "artifact_error"
	RunOutcomeTaskFailed    RunOutcomeLabel = "task_failed"
)

// Recorder defines observability hooks for post-build runs and their tasks.
type Recorder interface {
	ObserveTaskDuration(task string, d time.Duration)
	IncTaskResult(task string, result ResultLabel)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome RunOutcomeLabel)
	SetArtifactPages(n int)
	AddImages(rendered, skipped, failed int)
	IncPublishRetry(publisher string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveTaskDuration(string, time.Duration) {}
func (NoopRecorder) IncTaskResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveRunDuration(time.Duration)          {}
func (NoopRecorder) IncRunOutcome(RunOutcomeLabel)             {}
func (NoopRecorder) SetArtifactPages(int)                      {}
func (NoopRecorder) AddImages(int, int, int)                   {}
func (NoopRecorder) IncPublishRetry(string)                    {}
