package config

import (
	"fmt"
	"regexp"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// normalize canonicalizes enum-like fields after all sources are merged.
func (c *Config) normalize() {
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
	if raw := string(c.Retry.Backoff); raw != "" {
		c.Retry.Backoff = NormalizeRetryBackoff(raw)
	}
	if raw := string(c.Publish.Kind); raw != "" {
		c.Publish.Kind = NormalizePublisherKind(raw)
	}
}

// Validate checks the merged configuration. Every error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Artifact.Path == "" {
		return fmt.Errorf("%w: artifact.path is required", ErrInvalidConfig)
	}
	if c.Images.OutputDir == "" {
		return fmt.Errorf("%w: images.output_dir is required", ErrInvalidConfig)
	}
	if c.Images.Concurrency < 1 {
		return fmt.Errorf("%w: images.concurrency must be >= 1 (got %d)", ErrInvalidConfig, c.Images.Concurrency)
	}
	for name, v := range map[string]string{
		"images.background": c.Images.Background,
		"images.foreground": c.Images.Foreground,
		"images.accent":     c.Images.Accent,
	} {
		if !hexColor.MatchString(v) {
			return fmt.Errorf("%w: %s must be a #rrggbb colour (got %q)", ErrInvalidConfig, name, v)
		}
	}
	if c.Retry.Backoff == "" {
		return fmt.Errorf("%w: retry.backoff must be fixed, linear or exponential", ErrInvalidConfig)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("%w: retry.max_retries cannot be negative", ErrInvalidConfig)
	}
	switch c.Publish.Kind {
	case PublisherFile:
		if c.Publish.File.Path == "" {
			return fmt.Errorf("%w: publish.file.path is required", ErrInvalidConfig)
		}
	case PublisherSQLite:
		if c.Publish.SQLite.Path == "" {
			return fmt.Errorf("%w: publish.sqlite.path is required", ErrInvalidConfig)
		}
	case PublisherNATS:
		if c.Publish.NATS.URL == "" || c.Publish.NATS.Bucket == "" {
			return fmt.Errorf("%w: publish.nats.url and publish.nats.bucket are required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: publish.kind must be file, sqlite or nats", ErrInvalidConfig)
	}
	return nil
}
