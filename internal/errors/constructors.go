package errors

import "strings"

// Convenience functions for common error patterns

// Config errors

func ConfigError(message string, cause error) *PostBuildError {
	return Wrap(cause, CategoryConfig, SeverityFatal, message)
}

func ValidationFailed(field, reason string) *PostBuildError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Artifact errors

// ArtifactReadError reports a search-index artifact that is absent or unreadable.
func ArtifactReadError(path string, cause error) *PostBuildError {
	return Wrap(cause, CategoryArtifactRead, SeverityFatal, "search index artifact could not be read").
		WithContext("path", path)
}

// ArtifactParseError reports an artifact whose content is not well-formed.
// offset is the byte offset of the failure, or -1 when unknown.
func ArtifactParseError(path string, offset int64, cause error) *PostBuildError {
	err := Wrap(cause, CategoryArtifactParse, SeverityFatal, "search index artifact is malformed").
		WithContext("path", path)
	if offset >= 0 {
		err.WithContext("offset", offset)
	}
	return err
}

// Downstream errors

// DownstreamTaskError reports the failure of one or more post-build tasks.
// cause usually joins the individual task errors.
func DownstreamTaskError(failed []string, cause error) *PostBuildError {
	return Wrap(cause, CategoryDownstream, SeverityFatal, "post-build task failed").
		WithContext("failed_tasks", strings.Join(failed, ","))
}

// Internal errors

func InternalError(message string, cause error) *PostBuildError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
