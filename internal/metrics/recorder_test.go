package metrics

import (
	"sync"
	"time"
)

// testRecorder counts calls; used by the interface conformance test.
type testRecorder struct {
	mu          sync.Mutex
	taskResults map[string]map[ResultLabel]int
	outcomes    map[RunOutcomeLabel]int
	pages       int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{taskResults: map[string]map[ResultLabel]int{}, outcomes: map[RunOutcomeLabel]int{}}
}

func (t *testRecorder) ObserveTaskDuration(string, time.Duration) {}
func (t *testRecorder) IncTaskResult(task string, result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.taskResults[task]
	if !ok {
		m = map[ResultLabel]int{}
		t.taskResults[task] = m
	}
	m[result]++
}
func (t *testRecorder) ObserveRunDuration(time.Duration) {}
func (t *testRecorder) IncRunOutcome(o RunOutcomeLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes[o]++
}
func (t *testRecorder) SetArtifactPages(n int)  { t.pages = n }
func (t *testRecorder) AddImages(int, int, int) {}
func (t *testRecorder) IncPublishRetry(string)  {}

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
	_ Recorder = (*testRecorder)(nil)
)
