package publish

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	pberrors "git.home.luguber.info/inful/docpostbuild/internal/errors"
	"git.home.luguber.info/inful/docpostbuild/internal/searchindex"
)

// SQLitePublisher maintains an FTS5 full-text index that a search endpoint can
// query directly. Each publication replaces the table contents in one
// transaction, so readers see either the old or the new index.
type SQLitePublisher struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLitePublisher opens (or creates) the database at path.
// Use ":memory:" for an in-memory database.
func NewSQLitePublisher(path string) (*SQLitePublisher, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// a single connection keeps ":memory:" databases alive between calls
	db.SetMaxOpenConns(1)
	return &SQLitePublisher{db: db, path: path}, nil
}

func (p *SQLitePublisher) Name() string { return "sqlite" }

func (p *SQLitePublisher) initialize(ctx context.Context) error {
	schema := `
	CREATE VIRTUAL TABLE IF NOT EXISTS pages USING fts5(
		id UNINDEXED,
		slug UNINDEXED,
		url UNINDEXED,
		method UNINDEXED,
		title,
		description,
		section,
		tags,
		body,
		tokenize = 'unicode61 remove_diacritics 2'
	);
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

// storeError classifies a failed write. A busy or locked database clears up
// once the other writer finishes; everything else fails the publication.
func storeError(err error, format string, args ...any) *pberrors.PostBuildError {
	msg := fmt.Sprintf(format, args...)
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return pberrors.WrapRetryable(err, pberrors.CategoryFileSystem, pberrors.SeverityError, msg)
		}
	}
	return pberrors.Wrap(err, pberrors.CategoryFileSystem, pberrors.SeverityError, msg)
}

func (p *SQLitePublisher) Publish(ctx context.Context, art *searchindex.Artifact, md Metadata) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.initialize(ctx); err != nil {
		return storeError(err, "initialize schema")
	}

	doc := NewDocument(art, "", md)

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError(err, "begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM pages"); err != nil {
		return storeError(err, "clear pages")
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO pages (id, slug, url, method, title, description, section, tags, body) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return storeError(err, "prepare insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range doc.Records {
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.Slug, e.URL, e.Method, e.Title, e.Description, e.Section,
			strings.Join(e.Tags, " "), e.Text,
		); err != nil {
			return storeError(err, "insert page %s", e.ID)
		}
	}

	meta := map[string]string{
		"version":      strconv.Itoa(doc.Version),
		"run_id":       doc.RunID,
		"commit":       doc.Commit,
		"published_at": doc.GeneratedAt.Format(time.RFC3339),
		"pages":        strconv.Itoa(len(doc.Records)),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			k, v,
		); err != nil {
			return storeError(err, "update meta %s", k)
		}
	}

	if err := tx.Commit(); err != nil {
		return storeError(err, "commit")
	}
	return nil
}

// Hit is one full-text search result.
type Hit struct {
	ID    string
	Slug  string
	URL   string
	Title string
}

// Search runs an FTS5 MATCH query against the published index, best match first.
func (p *SQLitePublisher) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}
	rows, err := p.db.QueryContext(ctx,
		"SELECT id, slug, url, title FROM pages WHERE pages MATCH ? ORDER BY rank LIMIT ?",
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer func() { _ = rows.Close() }()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.ID, &h.Slug, &h.URL, &h.Title); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Meta returns the metadata of the last publication.
func (p *SQLitePublisher) Meta(ctx context.Context) (map[string]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows, err := p.db.QueryContext(ctx, "SELECT key, value FROM meta")
	if err != nil {
		return nil, fmt.Errorf("query meta: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (p *SQLitePublisher) Close() error {
	return p.db.Close()
}
