package version

import "testing"

func TestString(t *testing.T) {
	oldVersion, oldSHA, oldTime := Version, GitSHA, BuildTime
	defer func() { Version, GitSHA, BuildTime = oldVersion, oldSHA, oldTime }()

	Version, GitSHA, BuildTime = "1.2.3", "abc123", "2026-01-02T03:04:05Z"
	want := "las-bounds 1.2.3 (commit abc123, built 2026-01-02T03:04:05Z)"
	if got := String("las-bounds"); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
