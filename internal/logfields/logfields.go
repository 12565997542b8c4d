package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyTask       = "task"
	KeyStage      = "stage"
	KeyPages      = "pages"
	KeyPageID     = "page_id"
	KeyPath       = "path"
	KeyPublisher  = "publisher"
	KeyAttempt    = "attempt"
	KeyCommit     = "commit"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Task(name string) slog.Attr      { return slog.String(KeyTask, name) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func PageID(id string) slog.Attr      { return slog.String(KeyPageID, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Publisher(name string) slog.Attr { return slog.String(KeyPublisher, name) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func Commit(sha string) slog.Attr     { return slog.String(KeyCommit, sha) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
