package commands

import (
	"time"

	"git.home.luguber.info/inful/docpostbuild/internal/postbuild"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce time.Duration `help:"Quiet period after the last artifact change before running" default:"2s"`
	Initial  bool          `help:"Run once immediately on start" default:"true" negatable:""`
	Force    bool          `help:"Re-render every preview image on each run"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	s, err := root.newSession(taskSet{images: true, publish: true, force: w.Force})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()

	watcher := postbuild.NewWatcher(s.runner, s.cfg.ArtifactPath(),
		postbuild.WithDebounce(w.Debounce),
		postbuild.WithInitialRun(w.Initial),
		postbuild.WithWatchLogger(s.logger),
	)
	return watcher.Run(ctx)
}

// ScheduleCmd implements the 'schedule' command.
type ScheduleCmd struct {
	Every time.Duration `help:"Interval between runs" required:""`
	Force bool          `help:"Re-render every preview image on each run"`
}

func (c *ScheduleCmd) Run(_ *Global, root *CLI) error {
	s, err := root.newSession(taskSet{images: true, publish: true, force: c.Force})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()
	return postbuild.NewScheduler(s.runner, c.Every, s.logger).Run(ctx)
}
