package publish

import (
	"context"
	"encoding/json"
	"io"

	pberrors "git.home.luguber.info/inful/docpostbuild/internal/errors"
	"git.home.luguber.info/inful/docpostbuild/internal/searchindex"
	"git.home.luguber.info/inful/docpostbuild/internal/storage"
)

// FilePublisher writes the normalized index as a static JSON document the
// site can fetch at runtime.
type FilePublisher struct {
	path string
	site string
}

func NewFilePublisher(path, site string) *FilePublisher {
	return &FilePublisher{path: path, site: site}
}

func (p *FilePublisher) Name() string { return "file" }

// Path is the location of the published document.
func (p *FilePublisher) Path() string { return p.path }

func (p *FilePublisher) Publish(ctx context.Context, art *searchindex.Artifact, md Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := NewDocument(art, p.site, md)
	err := storage.WriteWith(p.path, 0o644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return enc.Encode(doc)
	})
	if err != nil {
		return pberrors.Wrap(err, pberrors.CategoryFileSystem, pberrors.SeverityError, "search index could not be written").
			WithContext("path", p.path)
	}
	return nil
}

func (p *FilePublisher) Close() error { return nil }
