package publish

import (
	"time"

	"git.home.luguber.info/inful/docpostbuild/internal/searchindex"
)

// DocumentVersion is bumped on incompatible changes of the Document layout.
const DocumentVersion = 1

// Document is the normalized, backend-independent form of a search index.
type Document struct {
	Version     int       `json:"version"`
	Site        string    `json:"site,omitempty"`
	RunID       string    `json:"run_id,omitempty"`
	Commit      string    `json:"commit,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Records     []Entry   `json:"records"`
}

// Entry is one page of a Document.
type Entry struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url"`
	Section     string   `json:"section,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Method      string   `json:"method,omitempty"`
	Text        string   `json:"text"`
}

// NewDocument normalizes art. Entry text is the page body with markup removed.
func NewDocument(art *searchindex.Artifact, site string, md Metadata) Document {
	doc := Document{
		Version:     DocumentVersion,
		Site:        site,
		RunID:       md.RunID,
		Commit:      md.Commit,
		GeneratedAt: md.PublishedAt.UTC(),
		Records:     []Entry{},
	}
	if art.Len() == 0 {
		return doc
	}
	slugs := art.Slugs()
	doc.Records = make([]Entry, 0, len(art.Records))
	for i, r := range art.Records {
		doc.Records = append(doc.Records, Entry{
			ID:          r.ID,
			Slug:        slugs[i],
			Title:       r.Title,
			Description: r.Description,
			URL:         r.URL,
			Section:     r.Section,
			Tags:        r.Tags,
			Method:      r.HTTPMethod(),
			Text:        searchindex.PlainText(r.Body()),
		})
	}
	return doc
}
