package config

import (
	"path/filepath"
	"testing"
)

func TestExpandPathHomeAndEnv(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("SYNCPROF_TEST_DIR", "logs")

	got, err := ExpandPath("~/$SYNCPROF_TEST_DIR/clone.log")
	if err != nil {
		t.Fatalf("expand path: %v", err)
	}
	want := filepath.Join(tmp, "logs", "clone.log")
	if got != want {
		t.Fatalf("unexpected expanded path. got=%q want=%q", got, want)
	}
}

func TestExpandPathEmpty(t *testing.T) {
	got, err := ExpandPath("   ")
	if err != nil {
		t.Fatalf("expand path: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty path, got %q", got)
	}
}

func TestUserConfigPathPrefersXDG(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	got, err := UserConfigPath()
	if err != nil {
		t.Fatalf("user config path: %v", err)
	}
	if want := filepath.Join(tmp, "syncprof", "config.yaml"); got != want {
		t.Fatalf("unexpected user config path. got=%q want=%q", got, want)
	}
}
