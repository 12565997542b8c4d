// Package publish makes the search index available to the site's search
// backend. Each Publisher replaces the previously published index as a whole.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docpostbuild/internal/config"
	"git.home.luguber.info/inful/docpostbuild/internal/searchindex"
)

// Publisher is implemented by every search backend.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, art *searchindex.Artifact, md Metadata) error
	Close() error
}

// Metadata describes the run that produced a publication.
type Metadata struct {
	RunID       string
	Commit      string
	PublishedAt time.Time
}

// New returns the publisher selected by publish.kind.
func New(cfg *config.Config, logger *slog.Logger) (Publisher, error) {
	switch cfg.Publish.Kind {
	case config.PublisherFile:
		return NewFilePublisher(cfg.ResolvePath(cfg.Publish.File.Path), cfg.Site.Name), nil
	case config.PublisherSQLite:
		return NewSQLitePublisher(cfg.ResolvePath(cfg.Publish.SQLite.Path))
	case config.PublisherNATS:
		return NewNATSPublisher(cfg.Publish.NATS, WithNATSLogger(logger)), nil
	default:
		return nil, fmt.Errorf("%w: unknown publisher %q", config.ErrInvalidConfig, cfg.Publish.Kind)
	}
}
