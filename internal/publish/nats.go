package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/docpostbuild/internal/config"
	pberrors "git.home.luguber.info/inful/docpostbuild/internal/errors"
	"git.home.luguber.info/inful/docpostbuild/internal/logfields"
	"git.home.luguber.info/inful/docpostbuild/internal/searchindex"
	"git.home.luguber.info/inful/docpostbuild/internal/util/sets"
)

// UpdatedEventType is the type of the event announced after a publication.
const UpdatedEventType = "index.updated"

// UpdatedEvent is published on the configured subject once the bucket holds
// the new index.
type UpdatedEvent struct {
	Type        string    `json:"type"`
	Bucket      string    `json:"bucket"`
	RunID       string    `json:"run_id,omitempty"`
	Commit      string    `json:"commit,omitempty"`
	Pages       int       `json:"pages"`
	Removed     int       `json:"removed"`
	PublishedAt time.Time `json:"published_at"`
}

// NATSPublisher stores one JetStream key-value entry per page, keyed by slug.
// The connection is established on first use so an unreachable server fails
// the publication (and its retries) rather than start-up.
type NATSPublisher struct {
	cfg    config.NATSPublish
	logger *slog.Logger

	mu   sync.Mutex
	conn *nats.Conn
	kv   jetstream.KeyValue
}

// NATSOption customizes a NATSPublisher.
type NATSOption func(*NATSPublisher)

func WithNATSLogger(l *slog.Logger) NATSOption {
	return func(p *NATSPublisher) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewNATSPublisher(cfg config.NATSPublish, opts ...NATSOption) *NATSPublisher {
	p := &NATSPublisher{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// networkError marks a failed exchange with the server as worth retrying.
func networkError(err error, format string, args ...any) *pberrors.PostBuildError {
	return pberrors.WrapRetryable(err, pberrors.CategoryNetwork, pberrors.SeverityError, fmt.Sprintf(format, args...))
}

func (p *NATSPublisher) Name() string { return "nats" }

func (p *NATSPublisher) connect(ctx context.Context) error {
	if p.kv != nil {
		return nil
	}
	conn, err := nats.Connect(p.cfg.URL,
		nats.Name("docpostbuild"),
		nats.Timeout(p.cfg.Timeout),
	)
	if err != nil {
		return networkError(err, "connect to NATS %s", p.cfg.URL)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return networkError(err, "create JetStream context")
	}

	kv, err := js.KeyValue(ctx, p.cfg.Bucket)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      p.cfg.Bucket,
			Description: "Documentation search index",
			History:     1,
		})
		if err == nil {
			p.logger.InfoContext(ctx, "Created KV bucket for search index", slog.String("bucket", p.cfg.Bucket))
		}
	}
	if err != nil {
		conn.Close()
		return networkError(err, "open KV bucket %s", p.cfg.Bucket)
	}
	p.conn = conn
	p.kv = kv
	return nil
}

func (p *NATSPublisher) Publish(ctx context.Context, art *searchindex.Artifact, md Metadata) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	if err := p.connect(ctx); err != nil {
		return err
	}

	doc := NewDocument(art, "", md)
	current := sets.New[string]()
	for _, e := range doc.Records {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal page %s: %w", e.ID, err)
		}
		if _, err := p.kv.Put(ctx, e.Slug, data); err != nil {
			return networkError(err, "put page %s", e.Slug)
		}
		current.Add(e.Slug)
	}

	removed, err := p.deleteStale(ctx, current)
	if err != nil {
		return err
	}

	event := UpdatedEvent{
		Type:        UpdatedEventType,
		Bucket:      p.cfg.Bucket,
		RunID:       doc.RunID,
		Commit:      doc.Commit,
		Pages:       len(doc.Records),
		Removed:     removed,
		PublishedAt: doc.GeneratedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.cfg.Subject, payload); err != nil {
		return networkError(err, "publish %s", p.cfg.Subject)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return networkError(err, "flush %s", p.cfg.Subject)
	}

	p.logger.DebugContext(ctx, "Published search index to NATS",
		slog.String("bucket", p.cfg.Bucket),
		logfields.Pages(len(doc.Records)),
		slog.Int("removed", removed))
	return nil
}

// deleteStale removes keys of pages that are no longer in the index.
func (p *NATSPublisher) deleteStale(ctx context.Context, current sets.Set[string]) (int, error) {
	lister, err := p.kv.ListKeys(ctx)
	if err != nil {
		return 0, networkError(err, "list keys")
	}
	var stale []string
	for key := range lister.Keys() {
		if !current.Has(key) {
			stale = append(stale, key)
		}
	}
	_ = lister.Stop()

	for _, key := range stale {
		if err := p.kv.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
			return 0, networkError(err, "delete stale page %s", key)
		}
	}
	return len(stale), nil
}

func (p *NATSPublisher) timeout() time.Duration {
	if p.cfg.Timeout > 0 {
		return p.cfg.Timeout
	}
	return 10 * time.Second
}

func (p *NATSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
		p.kv = nil
	}
	return nil
}
