package errors

import (
	"context"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	exit    func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		exit:    os.Exit,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if pbe, ok := As(err); ok {
		return a.exitCodeFromPostBuild(pbe)
	}

	return 1
}

// exitCodeFromPostBuild maps PostBuildError to exit codes.
func (a *CLIErrorAdapter) exitCodeFromPostBuild(err *PostBuildError) int {
	switch err.Category {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryArtifactRead:
		return 3
	case CategoryArtifactParse:
		return 4
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryNetwork:
		return 8 // External system error
	case CategoryDownstream, CategoryFileSystem:
		return 11
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1 // General error
	}
}

// HandleError logs the error once and exits the program with the mapped code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	a.logError(err)
	a.exit(a.ExitCodeFor(err))
}

// logError logs an error with its category and context. Verbose mode adds the
// severity and the full error chain.
func (a *CLIErrorAdapter) logError(err error) {
	if pbe, ok := As(err); ok {
		attrs := []slog.Attr{
			slog.String("category", string(pbe.Category)),
		}
		for k, v := range pbe.Context {
			attrs = append(attrs, slog.Any(k, v))
		}
		if pbe.Cause != nil {
			attrs = append(attrs, slog.String("error", pbe.Cause.Error()))
		}
		if pbe.Retryable {
			attrs = append(attrs, slog.Bool("retryable", true))
		}
		if a.verbose {
			attrs = append(attrs,
				slog.String("severity", string(pbe.Severity)),
				slog.String("chain", err.Error()))
		}

		a.logger.LogAttrs(context.Background(), slog.LevelError, pbe.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}
