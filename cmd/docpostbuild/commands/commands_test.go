package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pberrors "git.home.luguber.info/inful/docpostbuild/internal/errors"
	"git.home.luguber.info/inful/docpostbuild/internal/publish"
	"git.home.luguber.info/inful/docpostbuild/internal/searchindex"
)

const artifact = `[
  {"id": "/docs", "title": "Introduction", "url": "/docs", "content": "Welcome to the docs."},
  {"id": "/docs/deploy", "title": "Deploying", "url": "/docs/deploy", "content": "Deploy with kubectl apply."}
]`

func newSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ".next", "server", "search-index.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(artifact), 0o600))
	return dir
}

func parse(t *testing.T, args ...string) (*kong.Context, *CLI) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return ctx, cli
}

func TestRunCommandProducesImagesAndIndex(t *testing.T) {
	dir := newSite(t)
	t.Setenv("DOCPOSTBUILD_METRICS_TEXTFILE", "metrics/docpostbuild.prom")
	ctx, cli := parse(t, "--workdir", dir, "run")

	require.NoError(t, ctx.Run(&Global{}, cli))

	assert.FileExists(t, filepath.Join(dir, "public", "og", "docs.png"))
	assert.FileExists(t, filepath.Join(dir, "public", "og", "docs-deploy.png"))
	assert.FileExists(t, filepath.Join(dir, "public", "search", "index.json"))
	prom, err := os.ReadFile(filepath.Join(dir, "metrics", "docpostbuild.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `docpostbuild_run_outcomes_total{outcome="success"} 1`)
}

func TestRunIsDefaultCommand(t *testing.T) {
	dir := newSite(t)
	ctx, cli := parse(t, "--workdir", dir)
	assert.Equal(t, "run", ctx.Command())
	require.NoError(t, ctx.Run(&Global{}, cli))
}

func TestRunCommandMissingArtifact(t *testing.T) {
	dir := t.TempDir()
	ctx, cli := parse(t, "--workdir", dir, "run")

	err := ctx.Run(&Global{}, cli)
	require.Error(t, err)
	assert.True(t, pberrors.IsCategory(err, pberrors.CategoryArtifactRead))
	assert.Equal(t, 3, pberrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestImagesCommandSkipsPublication(t *testing.T) {
	dir := newSite(t)
	ctx, cli := parse(t, "--workdir", dir, "images")

	require.NoError(t, ctx.Run(&Global{}, cli))
	assert.FileExists(t, filepath.Join(dir, "public", "og", "docs.png"))
	assert.NoFileExists(t, filepath.Join(dir, "public", "search", "index.json"))
}

func TestPublishCommandWithArtifactOverride(t *testing.T) {
	dir := newSite(t)
	custom := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(custom, []byte(`[]`), 0o600))
	ctx, cli := parse(t, "--workdir", dir, "--artifact", custom, "publish")

	require.NoError(t, ctx.Run(&Global{}, cli))
	data, err := os.ReadFile(filepath.Join(dir, "public", "search", "index.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"records":[]`)
	assert.NoDirExists(t, filepath.Join(dir, "public", "og"))
}

func TestInvalidConfigIsConfigError(t *testing.T) {
	dir := newSite(t)
	t.Setenv("DOCPOSTBUILD_PUBLISH_KIND", "algolia")
	ctx, cli := parse(t, "--workdir", dir, "run")

	err := ctx.Run(&Global{}, cli)
	require.Error(t, err)
	assert.Equal(t, 7, pberrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestSearch(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "search.db")
	db, err := publish.NewSQLitePublisher(dbPath)
	require.NoError(t, err)
	art, _, err := searchindex.Parse([]byte(artifact))
	require.NoError(t, err)
	require.NoError(t, db.Publish(context.Background(), &searchindex.Artifact{Records: art}, publish.Metadata{}))
	require.NoError(t, db.Close())

	var out bytes.Buffer
	cmd := &SearchCmd{Query: "kubectl", Limit: 5}
	require.NoError(t, cmd.search(context.Background(), dbPath, &out))
	assert.Equal(t, "/docs/deploy\tDeploying\n", out.String())

	out.Reset()
	cmd.Query = "nothing"
	require.NoError(t, cmd.search(context.Background(), dbPath, &out))
	assert.Equal(t, "No matches among 2 indexed pages.\n", out.String())
}
