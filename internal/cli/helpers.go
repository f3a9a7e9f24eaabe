package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jaa/sync-profiler/internal/config"
	"github.com/jaa/sync-profiler/internal/exitcode"
	"github.com/jaa/sync-profiler/internal/output"
)

func loadConfig(app *AppContext) (config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("resolve working directory: %w", err)
	}

	cfg, err := config.Load(config.LoadOptions{
		ExplicitPath: strings.TrimSpace(app.Opts.ConfigPath),
		WorkingDir:   wd,
	})
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the diagnostic logger on stderr. --verbose and --quiet
// override the configured level.
func newLogger(app *AppContext, cfg config.Config) *slog.Logger {
	level, err := output.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	switch {
	case app.Opts.Verbose:
		level = slog.LevelDebug
	case app.Opts.Quiet:
		level = slog.LevelError
	}
	return output.NewLogger(app.IO.ErrOut, level, cfg.Log.Format)
}

func newEmitter(app *AppContext) output.EventEmitter {
	if app.Opts.JSON {
		return output.NewJSONEmitter(app.IO.Out)
	}
	return output.NewHumanEmitter(app.IO.Out, app.IO.ErrOut, app.Opts.Quiet, app.Opts.Verbose)
}

// printUsage writes the two-line usage text shown on a wrong argument count.
func printUsage(app *AppContext, usage string, note string) error {
	fmt.Fprintln(app.IO.Out, "Usage: "+usage)
	fmt.Fprintln(app.IO.Out, note)
	return withExitCode(exitcode.WrongArguments, errUsageShown)
}

func parseProgressMode(raw string) (string, error) {
	mode := strings.TrimSpace(strings.ToLower(raw))
	switch mode {
	case "", "auto", "always", "never":
		if mode == "" {
			return "auto", nil
		}
		return mode, nil
	default:
		return "", fmt.Errorf("invalid --progress mode %q (expected: auto, always, never)", raw)
	}
}

func isTTY(file *os.File) bool {
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
