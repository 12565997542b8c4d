package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpostbuild/internal/config"
	pberrors "git.home.luguber.info/inful/docpostbuild/internal/errors"
	"git.home.luguber.info/inful/docpostbuild/internal/logfields"
	"git.home.luguber.info/inful/docpostbuild/internal/metrics"
	"git.home.luguber.info/inful/docpostbuild/internal/observability"
	"git.home.luguber.info/inful/docpostbuild/internal/ogimage"
	"git.home.luguber.info/inful/docpostbuild/internal/postbuild"
	"git.home.luguber.info/inful/docpostbuild/internal/publish"
	"git.home.luguber.info/inful/docpostbuild/internal/retry"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config   string           `short:"c" help:"Configuration file (default: docpostbuild.yaml in the working directory)" type:"path"`
	WorkDir  string           `name:"workdir" short:"C" help:"Site working directory; relative paths are resolved against it" default:"." type:"path"`
	Artifact string           `short:"a" help:"Search index artifact, overriding artifact.path"`
	Verbose  bool             `short:"v" help:"Enable verbose logging"`
	Version  kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run      RunCmd      `cmd:"" default:"1" help:"Generate preview images and publish the search index (default)"`
	Images   ImagesCmd   `cmd:"" help:"Only generate social preview images"`
	Publish  PublishCmd  `cmd:"" help:"Only publish the search index"`
	Watch    WatchCmd    `cmd:"" help:"Re-run whenever the search index artifact changes"`
	Schedule ScheduleCmd `cmd:"" help:"Re-run on a fixed interval"`
	Search   SearchCmd   `cmd:"" help:"Query a search index published with the sqlite publisher"`
}

// AfterApply runs after flag parsing; sets up a bootstrap logger until the
// configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(observability.NewLogger(os.Stderr, config.Defaults().Logging, c.Verbose))
	return nil
}

// loadConfig loads the configuration and switches the default logger to the
// configured level and format.
func (c *CLI) loadConfig() (*config.Config, error) {
	workDir, err := filepath.Abs(c.WorkDir)
	if err != nil {
		return nil, pberrors.ConfigError("invalid working directory", err)
	}
	cfg, err := config.Load(config.LoadOptions{WorkDir: workDir, File: c.Config})
	if err != nil {
		return nil, pberrors.ConfigError("configuration could not be loaded", err)
	}
	if c.Artifact != "" {
		cfg.Artifact.Path = c.Artifact
	}
	slog.SetDefault(observability.NewLogger(os.Stderr, cfg.Logging, c.Verbose))
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// taskSet selects which downstream tasks a command runs.
type taskSet struct {
	images  bool
	publish bool
	force   bool
}

// session holds everything a command builds from the configuration.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
	prom     *metrics.PrometheusRecorder
	runner   postbuild.Runner
	closers  []func() error
}

func (c *CLI) newSession(set taskSet) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: slog.Default(), recorder: metrics.NoopRecorder{}}
	if cfg.Metrics.Textfile != "" {
		s.prom = metrics.NewPrometheusRecorder(nil)
		s.recorder = s.prom
	}

	var tasks []postbuild.Task
	if set.images {
		gen, err := ogimage.NewGenerator(cfg,
			ogimage.WithRecorder(s.recorder),
			ogimage.WithLogger(s.logger),
			ogimage.WithForce(cfg.Images.Force || set.force),
		)
		if err != nil {
			return nil, pberrors.ConfigError("image generator could not be configured", err)
		}
		tasks = append(tasks, gen)
	}
	if set.publish {
		pub, err := publish.New(cfg, s.logger)
		if err != nil {
			return nil, pberrors.ConfigError("publisher could not be configured", err)
		}
		task := publish.NewTask(pub,
			publish.WithPolicy(retry.FromConfig(cfg.Retry)),
			publish.WithRepoDir(cfg.ResolvePath(cfg.Site.RepoDir)),
			publish.WithRecorder(s.recorder),
			publish.WithLogger(s.logger),
		)
		s.closers = append(s.closers, task.Close)
		tasks = append(tasks, task)
	}

	s.runner = &metricsRunner{
		inner: postbuild.New(cfg, tasks,
			postbuild.WithRecorder(s.recorder),
			postbuild.WithLogger(s.logger),
		),
		prom:   s.prom,
		path:   cfg.ResolvePath(cfg.Metrics.Textfile),
		logger: s.logger,
	}
	return s, nil
}

func (s *session) Close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			s.logger.Warn("Failed to release resources", logfields.Error(err))
		}
	}
}

// metricsRunner writes the metrics textfile after every run.
type metricsRunner struct {
	inner  postbuild.Runner
	prom   *metrics.PrometheusRecorder
	path   string
	logger *slog.Logger
}

func (m *metricsRunner) Run(ctx context.Context) error {
	err := m.inner.Run(ctx)
	if m.prom != nil {
		if werr := m.prom.WriteTextfile(m.path); werr != nil {
			m.logger.Warn("Failed to write metrics textfile", logfields.Path(m.path), logfields.Error(werr))
		}
	}
	return err
}
