package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpostbuild/cmd/docpostbuild/commands"
	"git.home.luguber.info/inful/docpostbuild/internal/errors"
	"git.home.luguber.info/inful/docpostbuild/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("docpostbuild"),
		kong.Description("Runs the post-build steps of a documentation site: social preview images and search index publication."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)

	err := parser.Run(&commands.Global{Logger: slog.Default()}, cli)
	// commands replace the default logger once the configuration is known
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
