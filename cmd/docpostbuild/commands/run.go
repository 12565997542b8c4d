package commands

// RunCmd implements the 'run' command: one complete post-build run.
type RunCmd struct {
	Force bool `help:"Re-render every preview image, ignoring the image manifest"`
}

func (r *RunCmd) Run(_ *Global, root *CLI) error {
	return root.runOnce(taskSet{images: true, publish: true, force: r.Force})
}

// ImagesCmd implements the 'images' command.
type ImagesCmd struct {
	Force bool `help:"Re-render every preview image, ignoring the image manifest"`
}

func (i *ImagesCmd) Run(_ *Global, root *CLI) error {
	return root.runOnce(taskSet{images: true, force: i.Force})
}

// PublishCmd implements the 'publish' command.
type PublishCmd struct{}

func (p *PublishCmd) Run(_ *Global, root *CLI) error {
	return root.runOnce(taskSet{publish: true})
}

func (c *CLI) runOnce(set taskSet) error {
	s, err := c.newSession(set)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()
	return s.runner.Run(ctx)
}
