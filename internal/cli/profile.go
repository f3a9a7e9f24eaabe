package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jaa/sync-profiler/internal/adapters/plastic"
	"github.com/jaa/sync-profiler/internal/analysis"
	"github.com/jaa/sync-profiler/internal/auth"
	"github.com/jaa/sync-profiler/internal/config"
	"github.com/jaa/sync-profiler/internal/engine"
	"github.com/jaa/sync-profiler/internal/exitcode"
	"github.com/jaa/sync-profiler/internal/output"
)

const (
	profileUsage = "syncprof profile <Github repo URL> <Plastic repo name> <Github username> <Github password>"
	profileNote  = "Github repo must exist. Plastic repo must not exist."
)

// Report file names written by profile --report-dir.
const (
	StageDurationsFile     = "stage_durations.csv"
	DownloadThroughputFile = "download_throughput.csv"
	ImportThroughputFile   = "import_throughput.csv"
)

func newProfileCommand(app *AppContext) *cobra.Command {
	var logFile string
	var timeout time.Duration
	var reportDir string

	cmd := &cobra.Command{
		Use:   "profile <Github repo URL> <Plastic repo name> <Github username> <Github password>",
		Short: "Clone a Git repository into Plastic SCM while recording a timestamped log",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 4 {
				return printUsage(app, profileUsage, profileNote)
			}

			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if cmd.Flags().Changed("log-file") {
				cfg.Profile.LogFile = logFile
			}
			if err := config.Validate(cfg); err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}

			commandTimeout := time.Duration(cfg.Profile.CommandTimeoutSeconds) * time.Second
			if timeout > 0 {
				commandTimeout = timeout
			}

			password := args[3]
			if password == auth.PromptPlaceholder {
				password, err = resolvePassword(args[2])
				if err != nil {
					return withExitCode(exitcode.MissingDependency, err)
				}
			}

			adapter := plastic.New(cfg.Profile)
			specs, err := adapter.Plan(plastic.SyncRequest{
				GitURL:     args[0],
				Repository: args[1],
				Username:   args[2],
				Password:   password,
			}, commandTimeout)
			if err != nil {
				return withExitCode(exitcode.InvalidUsage, err)
			}

			if app.Opts.DryRun {
				return printPlan(app, specs)
			}

			logPath, err := config.ExpandPath(cfg.Profile.LogFile)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if err := runProfile(app, cfg, logPath, specs); err != nil {
				return err
			}

			if reportDir == "" {
				return nil
			}
			if err := os.MkdirAll(reportDir, 0o755); err != nil {
				return withExitCode(exitcode.RuntimeFailure, fmt.Errorf("create report directory: %w", err))
			}
			outputs := analysis.Outputs{
				StageDurations: filepath.Join(reportDir, StageDurationsFile),
				Download:       filepath.Join(reportDir, DownloadThroughputFile),
				Import:         filepath.Join(reportDir, ImportThroughputFile),
			}
			if err := runAnalysis(app, cfg, logPath, outputs, "never"); err != nil {
				return withExitCode(exitcode.RuntimeFailure, err)
			}
			return nil
		},
	}

	cmd.Long = "Pass - as the password to read it from " + auth.PasswordEnv + " or the macOS keychain (service syncprof.git)."
	cmd.Flags().StringVar(&logFile, "log-file", "", "Profile log path (overrides profile.log_file)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Override per-command timeout (e.g. 30m, 6h)")
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "Analyze the fresh log and write the three reports into this directory")
	return cmd
}

// resolvePassword is swapped in tests.
var resolvePassword = func(username string) (string, error) {
	return auth.NewGitPasswordResolver().Resolve(username)
}

func runProfile(app *AppContext, cfg config.Config, logPath string, specs []engine.ExecSpec) error {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return withExitCode(exitcode.RuntimeFailure, fmt.Errorf("create log directory: %w", err))
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return withExitCode(exitcode.RuntimeFailure, fmt.Errorf("open profile log: %w", err))
	}
	defer file.Close()

	logger := slog.New(output.NewPipeHandler(file, &slog.HandlerOptions{Level: slog.LevelInfo}))
	stdout := output.NewLineWriter(childLineSink(app, logger.Info))
	stderr := output.NewLineWriter(childLineSink(app, logger.Error))
	runner := engine.NewSubprocessRunner(nil, stdout, stderr)
	profiler := engine.NewProfiler(runner, logger, newEmitter(app))

	ctx, stop := signal.NotifyContext(context.Background(), interruptSignals()...)
	defer stop()

	_, runErr := profiler.Profile(ctx, specs)
	if runErr == nil {
		return nil
	}
	if errors.Is(runErr, engine.ErrInterrupted) {
		return withExitCode(exitcode.Interrupted, runErr)
	}
	return withExitCode(exitcode.RuntimeFailure, runErr)
}

// childLineSink logs one line of child output and echoes it to stderr when
// running verbosely.
func childLineSink(app *AppContext, log func(msg string, args ...any)) func(string) error {
	return func(line string) error {
		if line == "" {
			return nil
		}
		log(line)
		if app.Opts.Verbose && !app.Opts.JSON {
			fmt.Fprintln(app.IO.ErrOut, line)
		}
		return nil
	}
}

func printPlan(app *AppContext, specs []engine.ExecSpec) error {
	if app.Opts.JSON {
		commands := make([]string, 0, len(specs))
		for _, spec := range specs {
			commands = append(commands, spec.DisplayCommand)
		}
		encoded, err := json.Marshal(map[string]any{"dry_run": true, "commands": commands})
		if err != nil {
			return withExitCode(exitcode.RuntimeFailure, err)
		}
		fmt.Fprintln(app.IO.Out, string(encoded))
		return nil
	}
	for _, spec := range specs {
		fmt.Fprintln(app.IO.Out, "would run:", spec.DisplayCommand)
	}
	return nil
}
