package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestPostBuildError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *PostBuildError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryArtifactRead, SeverityFatal, "failed to read artifact"),
			expected: "artifact_read (fatal): failed to read artifact: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestPostBuildError_WithContext(t *testing.T) {
	err := New(CategoryDownstream, SeverityError, "task failed").
		WithContext("task", "images").
		WithContext("pages", 3)

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}
	if err.Context["task"] != "images" {
		t.Errorf("Context[task] = %v, want images", err.Context["task"])
	}
	if err.Context["pages"] != 3 {
		t.Errorf("Context[pages] = %v, want 3", err.Context["pages"])
	}
}

func TestIsCategory(t *testing.T) {
	readErr := ArtifactReadError("index.json", fmt.Errorf("missing"))
	parseErr := ArtifactParseError("index.json", 12, fmt.Errorf("bad token"))
	wrapped := fmt.Errorf("run: %w", parseErr)
	standardErr := fmt.Errorf("standard error")

	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		expected bool
	}{
		{"read error matches read category", readErr, CategoryArtifactRead, true},
		{"read error doesn't match parse category", readErr, CategoryArtifactParse, false},
		{"wrapped parse error matches parse category", wrapped, CategoryArtifactParse, true},
		{"standard error doesn't match any category", standardErr, CategoryConfig, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsCategory(test.err, test.category); got != test.expected {
				t.Errorf("IsCategory() = %v, want %v", got, test.expected)
			}
		})
	}
}

func TestGetCategoryDefaultsToInternal(t *testing.T) {
	if got := GetCategory(fmt.Errorf("plain")); got != CategoryInternal {
		t.Errorf("GetCategory() = %v, want %v", got, CategoryInternal)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(WrapRetryable(fmt.Errorf("timeout"), CategoryNetwork, SeverityError, "publish")) {
		t.Error("expected retryable error")
	}
	if !IsRetryable(fmt.Errorf("publish to nats: %w", WrapRetryable(fmt.Errorf("timeout"), CategoryNetwork, SeverityError, "put"))) {
		t.Error("expected wrapped retryable error")
	}
	if IsRetryable(Wrap(fmt.Errorf("x"), CategoryFileSystem, SeverityError, "publish")) {
		t.Error("expected non-retryable error")
	}
	if IsRetryable(fmt.Errorf("plain")) {
		t.Error("unclassified errors are not retryable")
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := stdErrors.New("root cause")
	err := DownstreamTaskError([]string{"images"}, cause)
	if !stdErrors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.Context["failed_tasks"] != "images" {
		t.Errorf("failed_tasks = %v", err.Context["failed_tasks"])
	}
}

func TestArtifactParseErrorOffset(t *testing.T) {
	withOffset := ArtifactParseError("a.json", 7, fmt.Errorf("x"))
	if withOffset.Context["offset"] != int64(7) {
		t.Errorf("offset = %v, want 7", withOffset.Context["offset"])
	}
	without := ArtifactParseError("a.json", -1, fmt.Errorf("x"))
	if _, ok := without.Context["offset"]; ok {
		t.Error("offset should be absent when unknown")
	}
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{fmt.Errorf("plain"), 1},
		{ArtifactReadError("x", nil), 3},
		{ArtifactParseError("x", -1, nil), 4},
		{ConfigError("bad", nil), 7},
		{DownstreamTaskError([]string{"publish"}, fmt.Errorf("x")), 11},
		{InternalError("boom", nil), 10},
		{ValidationFailed("query", "syntax"), 2},
		{Wrap(fmt.Errorf("x"), CategoryNetwork, SeverityError, "put"), 8},
	}
	for _, tt := range tests {
		if got := a.ExitCodeFor(tt.err); got != tt.want {
			t.Errorf("ExitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestCLIErrorAdapter_HandleErrorLogsOnceAndExits(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	a := NewCLIErrorAdapter(false, logger)
	code := -1
	a.exit = func(c int) { code = c }

	a.HandleError(DownstreamTaskError([]string{"images"}, fmt.Errorf("render failed")))

	if code != 11 {
		t.Fatalf("exit code = %d, want 11", code)
	}
	out := buf.String()
	if strings.Count(out, "post-build task failed") != 1 {
		t.Errorf("expected exactly one log line, got %q", out)
	}
	if !strings.Contains(out, "failed_tasks=images") {
		t.Errorf("expected failed_tasks attribute, got %q", out)
	}
}

func TestCLIErrorAdapter_VerboseAddsSeverity(t *testing.T) {
	var buf bytes.Buffer
	a := NewCLIErrorAdapter(true, slog.New(slog.NewTextHandler(&buf, nil)))
	a.exit = func(int) {}

	a.HandleError(ArtifactReadError("index.json", fmt.Errorf("no such file")))

	out := buf.String()
	if !strings.Contains(out, "severity=fatal") {
		t.Errorf("expected severity attribute, got %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected one log line, got %q", out)
	}
}
