package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	pberrors "git.home.luguber.info/inful/docpostbuild/internal/errors"
	"git.home.luguber.info/inful/docpostbuild/internal/publish"
)

// SearchCmd implements the 'search' command.
type SearchCmd struct {
	Query string `arg:"" help:"FTS5 query, e.g. 'deploy*' or 'title:users'"`
	Limit int    `short:"n" help:"Maximum number of hits" default:"10"`
	DB    string `help:"SQLite database (default: publish.sqlite.path)"`
}

func (s *SearchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	path := s.DB
	if path == "" {
		path = cfg.Publish.SQLite.Path
	}
	path = cfg.ResolvePath(path)
	if _, err := os.Stat(path); err != nil {
		return pberrors.ValidationFailed("db", fmt.Sprintf("no search database at %s", path))
	}
	return s.search(context.Background(), path, os.Stdout)
}

func (s *SearchCmd) search(ctx context.Context, path string, out io.Writer) error {
	db, err := publish.NewSQLitePublisher(path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	hits, err := db.Search(ctx, s.Query, s.Limit)
	if err != nil {
		return pberrors.ValidationFailed("query", err.Error())
	}
	if len(hits) == 0 {
		if meta, err := db.Meta(ctx); err == nil && meta["pages"] != "" {
			_, _ = fmt.Fprintf(out, "No matches among %s indexed pages.\n", meta["pages"])
			return nil
		}
		_, _ = fmt.Fprintln(out, "No matches.")
		return nil
	}
	for _, h := range hits {
		_, _ = fmt.Fprintf(out, "%s\t%s\n", h.URL, h.Title)
	}
	return nil
}
