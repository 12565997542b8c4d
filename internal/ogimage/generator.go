// Package ogimage renders one social preview card (Open Graph image) per
// documentation page listed in the search index.
package ogimage

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/docpostbuild/internal/config"
	"git.home.luguber.info/inful/docpostbuild/internal/logfields"
	"git.home.luguber.info/inful/docpostbuild/internal/metrics"
	"git.home.luguber.info/inful/docpostbuild/internal/searchindex"
	"git.home.luguber.info/inful/docpostbuild/internal/storage"
	"git.home.luguber.info/inful/docpostbuild/internal/util/sets"
)

// TaskName identifies the image task in logs, metrics and errors.
const TaskName = "images"

// renderVersion is folded into every fingerprint; bump it when the card
// layout changes so existing images are redrawn.
const renderVersion = "1"

// Generator renders cards for every record of an artifact.
type Generator struct {
	siteName    string
	outputDir   string
	concurrency int
	force       bool
	theme       Theme

	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option customizes a Generator.
type Option func(*Generator)

func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithForce re-renders every card regardless of the manifest.
func WithForce(force bool) Option {
	return func(g *Generator) { g.force = force }
}

// NewGenerator builds a Generator from the images and site configuration.
func NewGenerator(cfg *config.Config, opts ...Option) (*Generator, error) {
	theme, err := ThemeFromConfig(cfg.Images)
	if err != nil {
		return nil, fmt.Errorf("images theme: %w", err)
	}
	g := &Generator{
		siteName:    cfg.Site.Name,
		outputDir:   cfg.ResolvePath(cfg.Images.OutputDir),
		concurrency: max(1, cfg.Images.Concurrency),
		force:       cfg.Images.Force,
		theme:       theme,
		recorder:    metrics.NoopRecorder{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Generator) Name() string { return TaskName }

// OutputDir is where cards and the manifest are written.
func (g *Generator) OutputDir() string { return g.outputDir }

type job struct {
	record      searchindex.Record
	file        string
	fingerprint string
}

type result struct {
	job     job
	skipped bool
	err     error
}

// Run renders a card for each record. Pages whose fingerprint is unchanged and
// whose image still exists are skipped. Failures of individual pages do not
// stop the others; they are joined into the returned error.
func (g *Generator) Run(ctx context.Context, art *searchindex.Artifact) error {
	start := time.Now()
	if err := os.MkdirAll(g.outputDir, 0o750); err != nil {
		return fmt.Errorf("create image directory %s: %w", g.outputDir, err)
	}

	prev, err := loadManifest(g.outputDir)
	if err != nil {
		g.logger.Warn("Ignoring image manifest", logfields.Path(g.outputDir), logfields.Error(err))
	}

	jobs := g.plan(art)
	results := g.render(ctx, jobs, prev)

	next := newManifest()
	var errs []error
	var rendered, skipped, failed int
	for _, r := range results {
		switch {
		case r.err != nil:
			failed++
			errs = append(errs, fmt.Errorf("page %s: %w", r.job.record.ID, r.err))
			// keep the old entry so a later run can still skip or prune it
			if old, ok := prev.Pages[r.job.file]; ok {
				next.Pages[r.job.file] = old
			}
			continue
		case r.skipped:
			skipped++
		default:
			rendered++
		}
		next.Pages[r.job.file] = PageEntry{ID: r.job.record.ID, Fingerprint: r.job.fingerprint}
	}
	g.recorder.AddImages(rendered, skipped, failed)

	if art.Len() > 0 {
		g.prune(prev, next)
	}
	if err := next.save(g.outputDir); err != nil {
		errs = append(errs, err)
	}

	g.logger.Info("Social preview images generated",
		logfields.Pages(art.Len()),
		slog.Int("rendered", rendered),
		slog.Int("skipped", skipped),
		slog.Int("failed", failed),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// plan pairs each record with its image file and current fingerprint.
func (g *Generator) plan(art *searchindex.Artifact) []job {
	if art.Len() == 0 {
		return nil
	}
	extra := map[string]string{
		"site":   g.siteName,
		"theme":  fmt.Sprintf("%v/%v/%v", g.theme.Background, g.theme.Foreground, g.theme.Accent),
		"layout": renderVersion,
	}
	slugs := art.Slugs()
	jobs := make([]job, 0, len(art.Records))
	for i, rec := range art.Records {
		jobs = append(jobs, job{
			record:      rec,
			file:        slugs[i] + ".png",
			fingerprint: rec.Fingerprint(extra),
		})
	}
	return jobs
}

func (g *Generator) render(ctx context.Context, jobs []job, prev *Manifest) []result {
	results := make([]result, len(jobs))
	work := make(chan int)

	var wg sync.WaitGroup
	for range min(g.concurrency, len(jobs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				results[i] = g.renderOne(ctx, jobs[i], prev)
			}
		}()
	}

feed:
	for i := range jobs {
		select {
		case work <- i:
		case <-ctx.Done():
			for j := i; j < len(jobs); j++ {
				results[j] = result{job: jobs[j], err: ctx.Err()}
			}
			break feed
		}
	}
	close(work)
	wg.Wait()
	return results
}

func (g *Generator) renderOne(ctx context.Context, j job, prev *Manifest) (res result) {
	res.job = j
	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("render panic: %v", r)
		}
	}()
	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}

	path := filepath.Join(g.outputDir, j.file)
	if !g.force {
		if old, ok := prev.Pages[j.file]; ok && old.Fingerprint == j.fingerprint {
			if _, err := os.Stat(path); err == nil {
				res.skipped = true
				return res
			}
		}
	}

	img := Render(CardFor(g.siteName, j.record), g.theme)
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	res.err = storage.WriteWith(path, 0o644, func(w io.Writer) error {
		return enc.Encode(w, img)
	})
	if res.err == nil {
		g.logger.Debug("Rendered card", logfields.PageID(j.record.ID), logfields.Path(j.file))
	}
	return res
}

// prune removes images that the previous run produced but no current page
// owns any more.
func (g *Generator) prune(prev, next *Manifest) {
	keep := sets.New[string]()
	for file := range next.Pages {
		keep.Add(file)
	}
	previous := sets.New[string]()
	for file := range prev.Pages {
		previous.Add(file)
	}
	for _, file := range keep.Missing(sets.Sorted(previous)) {
		if !strings.HasSuffix(file, ".png") || filepath.Base(file) != file {
			continue
		}
		id := prev.Pages[file].ID
		if err := os.Remove(filepath.Join(g.outputDir, file)); err != nil && !os.IsNotExist(err) {
			g.logger.Warn("Failed to remove stale image", logfields.PageID(id), logfields.Path(file), logfields.Error(err))
			continue
		}
		g.logger.Debug("Removed stale image", logfields.PageID(id), logfields.Path(file))
	}
}
