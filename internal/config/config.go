package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides (DOCPOSTBUILD_ARTIFACT_PATH, ...).
const EnvPrefix = "DOCPOSTBUILD"

// DefaultConfigFile is picked up from the working directory when no explicit file is given.
const DefaultConfigFile = "docpostbuild.yaml"

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the process-wide configuration of a post-build run. It is built once
// by Load and passed explicitly to every component that needs it.
type Config struct {
	Site     SiteConfig     `yaml:"site" envconfig:"SITE"`
	Artifact ArtifactConfig `yaml:"artifact" envconfig:"ARTIFACT"`
	Images   ImagesConfig   `yaml:"images" envconfig:"IMAGES"`
	Publish  PublishConfig  `yaml:"publish" envconfig:"PUBLISH"`
	Retry    RetryConfig    `yaml:"retry" envconfig:"RETRY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOG"`
	Metrics  MetricsConfig  `yaml:"metrics" envconfig:"METRICS"`

	// WorkDir anchors every relative path. Set by Load, never read from file or env.
	WorkDir string `yaml:"-" ignored:"true"`
}

// SiteConfig describes the documentation site the artifact belongs to.
type SiteConfig struct {
	Name    string `yaml:"name" split_words:"true"`
	BaseURL string `yaml:"base_url" split_words:"true"`
	// RepoDir is the git checkout used to stamp publications with a commit.
	RepoDir string `yaml:"repo_dir" split_words:"true"`
}

// ArtifactConfig locates the search-index artifact produced by the site build.
type ArtifactConfig struct {
	Path string `yaml:"path" split_words:"true"`
}

// ImagesConfig controls social-preview card generation.
type ImagesConfig struct {
	OutputDir   string `yaml:"output_dir" split_words:"true"`
	Concurrency int    `yaml:"concurrency" split_words:"true"`
	Force       bool   `yaml:"force" split_words:"true"`
	Background  string `yaml:"background" split_words:"true"`
	Foreground  string `yaml:"foreground" split_words:"true"`
	Accent      string `yaml:"accent" split_words:"true"`
}

// PublishConfig selects and configures the search-index publisher.
type PublishConfig struct {
	Kind   PublisherKind `yaml:"kind" split_words:"true"`
	File   FilePublish   `yaml:"file" envconfig:"FILE"`
	SQLite SQLitePublish `yaml:"sqlite" envconfig:"SQLITE"`
	NATS   NATSPublish   `yaml:"nats" envconfig:"NATS"`
}

type FilePublish struct {
	Path string `yaml:"path" split_words:"true"`
}

type SQLitePublish struct {
	Path string `yaml:"path" split_words:"true"`
}

type NATSPublish struct {
	URL     string        `yaml:"url" split_words:"true"`
	Bucket  string        `yaml:"bucket" split_words:"true"`
	Subject string        `yaml:"subject" split_words:"true"`
	Timeout time.Duration `yaml:"timeout" split_words:"true"`
}

// RetryConfig holds backoff settings for publication retries.
type RetryConfig struct {
	Backoff    RetryBackoffMode `yaml:"backoff" split_words:"true"`
	Initial    time.Duration    `yaml:"initial" split_words:"true"`
	Max        time.Duration    `yaml:"max" split_words:"true"`
	MaxRetries int              `yaml:"max_retries" split_words:"true"`
}

type LoggingConfig struct {
	Level  LogLevel  `yaml:"level" split_words:"true"`
	Format LogFormat `yaml:"format" split_words:"true"`
}

// MetricsConfig enables writing a Prometheus textfile after each run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" split_words:"true"`
}

// LoadOptions controls where Load looks for its inputs.
type LoadOptions struct {
	// WorkDir is the build working directory. Defaults to the process working directory.
	WorkDir string
	// File is an explicit YAML configuration file. When empty, DefaultConfigFile
	// in WorkDir is used if it exists.
	File string
}

// Load builds the configuration: .env files, defaults, optional YAML file,
// DOCPOSTBUILD_* environment overrides, normalization and validation.
func Load(opts LoadOptions) (*Config, error) {
	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		workDir = wd
	}

	if _, err := LoadEnvFiles(workDir); err != nil {
		return nil, err
	}

	cfg := Defaults()
	cfg.WorkDir = workDir

	file := opts.File
	explicit := file != ""
	if !explicit {
		file = filepath.Join(workDir, DefaultConfigFile)
	}
	if err := cfg.mergeFile(file, explicit); err != nil {
		return nil, err
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", ErrInvalidConfig, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, path, err)
	}
	return nil
}

// ResolvePath anchors a relative path at WorkDir.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.WorkDir, p)
}

// ArtifactPath is the absolute location of the search-index artifact.
func (c *Config) ArtifactPath() string {
	return c.ResolvePath(c.Artifact.Path)
}
