package config

import "time"

// Default values applied before the YAML file and environment overrides.
const (
	DefaultArtifactPath      = ".next/server/search-index.json"
	DefaultImagesOutputDir   = "public/og"
	DefaultImagesConcurrency = 4
	DefaultFilePublishPath   = "public/search/index.json"
	DefaultSQLitePublishPath = ".cache/docpostbuild/search.db"
	DefaultNATSURL           = "nats://127.0.0.1:4222"
	DefaultNATSBucket        = "docs-search"
	DefaultNATSSubject       = "docs.search.updated"
	DefaultNATSTimeout       = 10 * time.Second
)

// Defaults returns a configuration with every default applied.
func Defaults() *Config {
	return &Config{
		Site: SiteConfig{
			Name:    "Documentation",
			RepoDir: ".",
		},
		Artifact: ArtifactConfig{Path: DefaultArtifactPath},
		Images: ImagesConfig{
			OutputDir:   DefaultImagesOutputDir,
			Concurrency: DefaultImagesConcurrency,
			Background:  "#0b0d12",
			Foreground:  "#f4f4f5",
			Accent:      "#6366f1",
		},
		Publish: PublishConfig{
			Kind:   PublisherFile,
			File:   FilePublish{Path: DefaultFilePublishPath},
			SQLite: SQLitePublish{Path: DefaultSQLitePublishPath},
			NATS: NATSPublish{
				URL:     DefaultNATSURL,
				Bucket:  DefaultNATSBucket,
				Subject: DefaultNATSSubject,
				Timeout: DefaultNATSTimeout,
			},
		},
		Retry: RetryConfig{
			Backoff:    RetryBackoffLinear,
			Initial:    time.Second,
			Max:        30 * time.Second,
			MaxRetries: 2,
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}
