// Package searchindex models the search-index artifact produced by the
// documentation build and provides the text helpers shared by the
// downstream tasks: plain-text extraction, excerpts, slugs and fingerprints.
//
// The artifact is a JSON array of page records. After Load returns, the
// Artifact is treated as read-only and is shared between concurrently running
// tasks without locking.
package searchindex
