package config

import "strings"

// PublisherKind selects the search-index publication back end.
type PublisherKind string

const (
	PublisherFile   PublisherKind = "file"
	PublisherSQLite PublisherKind = "sqlite"
	PublisherNATS   PublisherKind = "nats"
)

// NormalizePublisherKind returns the typed kind, or empty string for unknown input.
func NormalizePublisherKind(raw string) PublisherKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(PublisherFile):
		return PublisherFile
	case string(PublisherSQLite):
		return PublisherSQLite
	case string(PublisherNATS):
		return PublisherNATS
	default:
		return ""
	}
}
