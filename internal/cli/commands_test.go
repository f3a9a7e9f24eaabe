package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaa/sync-profiler/internal/exitcode"
)

func TestInitWritesTemplateThenValidates(t *testing.T) {
	dir := isolateConfig(t)
	configPath := filepath.Join(dir, "conf", "syncprof.yaml")

	app, stdout, _ := newTestApp()
	root := newRootCommand(app)
	root.SetArgs([]string{"init", "--config", configPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Wrote config: "+configPath) {
		t.Fatalf("unexpected init output: %q", stdout.String())
	}

	app, stdout, _ = newTestApp()
	root = newRootCommand(app)
	root.SetArgs([]string{"validate", "--config", configPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "Config is valid." {
		t.Fatalf("unexpected validate output: %q", stdout.String())
	}
}

func TestInitRefusesToOverwriteWithoutForce(t *testing.T) {
	dir := isolateConfig(t)
	configPath := filepath.Join(dir, "syncprof.yaml")
	if err := os.WriteFile(configPath, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	app, _, _ := newTestApp()
	root := newRootCommand(app)
	root.SetArgs([]string{"init", "--no-input", "--config", configPath})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "rerun with --force") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
}

func TestValidateReportsInvalidConfig(t *testing.T) {
	dir := isolateConfig(t)
	configPath := filepath.Join(dir, "bad.yaml")
	payload := "version: 1\nanalysis:\n  download_bucket_size: 0\n"
	if err := os.WriteFile(configPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	app, _, _ := newTestApp()
	root := newRootCommand(app)
	root.SetArgs([]string{"validate", "--config", configPath})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "download_bucket_size") {
		t.Fatalf("expected bucket size problem, got %v", err)
	}
	if code := mapExitCode(err); code != exitcode.InvalidConfig {
		t.Fatalf("expected exit code %d, got %d", exitcode.InvalidConfig, code)
	}
}

func TestVersionOutput(t *testing.T) {
	app, stdout, _ := newTestApp()
	app.Build = BuildInfo{Version: "1.2.3", Commit: "abc123"}
	root := newRootCommand(app)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	want := "syncprof version 1.2.3\ncommit: abc123\nbuild_date: unknown\n"
	if stdout.String() != want {
		t.Fatalf("unexpected version output: %q", stdout.String())
	}
}

func TestUnknownFlagIsInvalidUsage(t *testing.T) {
	app, _, _ := newTestApp()
	root := newRootCommand(app)
	root.SetArgs([]string{"analyze", "--bogus"})
	err := root.Execute()
	if code := mapExitCode(err); code != exitcode.InvalidUsage {
		t.Fatalf("expected exit code %d, got %d (%v)", exitcode.InvalidUsage, code, err)
	}
}
