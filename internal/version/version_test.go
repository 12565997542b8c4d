package version

import (
	"strings"
	"testing"
)

func TestBuildInfo(t *testing.T) {
	if Version == "" || BuildTime == "" || GitCommit == "" {
		t.Error("build info variables should be initialized")
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "docpostbuild "+Version) {
		t.Errorf("String() = %q", s)
	}
	if !strings.Contains(s, GitCommit) {
		t.Errorf("String() = %q, missing commit", s)
	}
}
