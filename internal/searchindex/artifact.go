package searchindex

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	pberrors "git.home.luguber.info/inful/docpostbuild/internal/errors"
)

// Record is one documentation page's searchable content.
type Record struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Content        string          `json:"content,omitempty"`
	URL            string          `json:"url"`
	Section        string          `json:"section,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	Method         string          `json:"method,omitempty"`
	StructuredData *StructuredData `json:"structuredData,omitempty"`
}

// StructuredData is the heading/paragraph breakdown some search generators emit.
type StructuredData struct {
	Headings []Heading `json:"headings,omitempty"`
	Contents []Block   `json:"contents,omitempty"`
}

type Heading struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type Block struct {
	Heading string `json:"heading,omitempty"`
	Content string `json:"content"`
}

// Body returns the record's text body, falling back to the structured blocks.
func (r Record) Body() string {
	if strings.TrimSpace(r.Content) != "" {
		return r.Content
	}
	if r.StructuredData == nil {
		return ""
	}
	parts := make([]string, 0, len(r.StructuredData.Contents))
	for _, b := range r.StructuredData.Contents {
		if c := strings.TrimSpace(b.Content); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Artifact is the deserialized search index.
type Artifact struct {
	// Path the artifact was read from; empty for artifacts built in memory.
	Path    string
	Records []Record
}

// Len returns the number of pages described by the artifact.
func (a *Artifact) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Records)
}

// Load reads and parses the artifact at path. A missing or unreadable file
// yields an artifact_read error, malformed content an artifact_parse error.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, pberrors.ArtifactReadError(path, err)
	}
	records, offset, err := Parse(data)
	if err != nil {
		return nil, pberrors.ArtifactParseError(path, offset, err)
	}
	return &Artifact{Path: path, Records: records}, nil
}

// Parse decodes artifact content. On failure it also returns the byte offset
// of the problem, or -1 when the decoder does not report one.
func Parse(data []byte) ([]Record, int64, error) {
	body := bytes.TrimLeftFunc(data, unicode.IsSpace)
	lead := int64(len(data) - len(body))
	trimmed := bytes.TrimRightFunc(body, unicode.IsSpace)
	if len(trimmed) == 0 {
		return nil, 0, errors.New("artifact is empty")
	}
	if trimmed[0] != '[' {
		return nil, lead, fmt.Errorf("artifact must be a JSON array of records, found %q", trimmed[0])
	}

	var records []Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			return nil, lead + syntaxErr.Offset, err
		case errors.As(err, &typeErr):
			return nil, lead + typeErr.Offset, err
		default:
			return nil, -1, err
		}
	}

	for i := range records {
		normalizeRecord(&records[i])
	}
	return records, -1, nil
}

func normalizeRecord(r *Record) {
	r.ID = strings.TrimSpace(r.ID)
	r.URL = strings.TrimSpace(r.URL)
	r.Title = strings.TrimSpace(r.Title)
	if r.ID == "" {
		r.ID = r.URL
	}
	r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
}
