package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docpostbuild"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry      *prom.Registry
	taskDuration  *prom.HistogramVec
	taskResults   *prom.CounterVec
	runDuration   prom.Histogram
	runOutcome    *prom.CounterVec
	artifactPages prom.Gauge
	images        *prom.CounterVec
	publishRetry  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the post-build metrics on reg.
// A nil registry gets a fresh one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		taskDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Duration of individual post-build tasks",
			Buckets:   prom.DefBuckets,
		}, []string{"task"}),
		taskResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "task_results_total",
			Help:      "Task result counts by outcome",
		}, []string{"task", "result"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total post-build run duration",
			Buckets:   prom.DefBuckets,
		}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Post-build runs by final status",
		}, []string{"outcome"}),
		artifactPages: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "artifact_pages",
			Help:      "Number of pages described by the last search index artifact",
		}),
		images: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "preview_images_total",
			Help:      "Social preview images by result (rendered|skipped|failed)",
		}, []string{"result"}),
		publishRetry: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "publish_retries_total",
			Help:      "Search index publication retries",
		}, []string{"publisher"}),
	}
	reg.MustRegister(pr.taskDuration, pr.taskResults, pr.runDuration, pr.runOutcome, pr.artifactPages, pr.images, pr.publishRetry)
	return pr
}

// Registry exposes the registry the recorder writes to.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

func (p *PrometheusRecorder) ObserveTaskDuration(task string, d time.Duration) {
	if p == nil {
		return
	}
	p.taskDuration.WithLabelValues(task).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncTaskResult(task string, result ResultLabel) {
	if p == nil {
		return
	}
	p.taskResults.WithLabelValues(task, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome RunOutcomeLabel) {
	if p == nil {
		return
	}
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetArtifactPages(n int) {
	if p == nil {
		return
	}
	p.artifactPages.Set(float64(n))
}

func (p *PrometheusRecorder) AddImages(rendered, skipped, failed int) {
	if p == nil {
		return
	}
	p.images.WithLabelValues("rendered").Add(float64(rendered))
	p.images.WithLabelValues("skipped").Add(float64(skipped))
	p.images.WithLabelValues("failed").Add(float64(failed))
}

func (p *PrometheusRecorder) IncPublishRetry(publisher string) {
	if p == nil {
		return
	}
	p.publishRetry.WithLabelValues(publisher).Inc()
}

// WriteTextfile writes the recorder's registry in the node-exporter textfile
// collector format. The write is atomic.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
