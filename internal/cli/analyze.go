package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jaa/sync-profiler/internal/analysis"
	"github.com/jaa/sync-profiler/internal/config"
	"github.com/jaa/sync-profiler/internal/exitcode"
	"github.com/jaa/sync-profiler/internal/output"
)

const (
	analyzeUsage = "syncprof analyze <input log file> <overall statistics csv> <download speed csv> <import speed csv>"
	analyzeNote  = "The input log must come from syncprof profile. Existing output files are overwritten."
	analyzeLong  = `Turn a profile log into stage durations and throughput curves.

Progress counts must strictly increase within a stage. Spinner redraws of cm sync
repeat the same count; set analysis.dedupe_repeated_progress: true (or
SYNCPROF_DEDUPE_REPEATED_PROGRESS=true) to collapse them before resampling.`
)

func newAnalyzeCommand(app *AppContext) *cobra.Command {
	var progressMode string
	var downloadBucketSize int
	var importBucketSize int

	cmd := &cobra.Command{
		Use:   "analyze <input log file> <overall statistics csv> <download speed csv> <import speed csv>",
		Short: "Turn a profile log into stage durations and throughput curves",
		Long:  analyzeLong,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 4 {
				return printUsage(app, analyzeUsage, analyzeNote)
			}
			parsedProgressMode, err := parseProgressMode(progressMode)
			if err != nil {
				return withExitCode(exitcode.InvalidUsage, err)
			}

			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.RuntimeFailure, err)
			}
			if cmd.Flags().Changed("download-bucket-size") {
				cfg.Analysis.DownloadBucketSize = downloadBucketSize
			}
			if cmd.Flags().Changed("import-bucket-size") {
				cfg.Analysis.ImportBucketSize = importBucketSize
			}
			if err := config.Validate(cfg); err != nil {
				return withExitCode(exitcode.RuntimeFailure, err)
			}

			outputs := analysis.Outputs{
				StageDurations: args[1],
				Download:       args[2],
				Import:         args[3],
			}
			if err := runAnalysis(app, cfg, args[0], outputs, parsedProgressMode); err != nil {
				return withExitCode(exitcode.RuntimeFailure, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&progressMode, "progress", "auto", "Read progress rendering on stderr: auto, always, or never")
	cmd.Flags().IntVar(&downloadBucketSize, "download-bucket-size", analysis.DefaultDownloadBucketSize, "Items per download throughput bucket")
	cmd.Flags().IntVar(&importBucketSize, "import-bucket-size", analysis.DefaultImportBucketSize, "Items per import throughput bucket")
	return cmd
}

func runAnalysis(app *AppContext, cfg config.Config, logPath string, outputs analysis.Outputs, progressMode string) error {
	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("open input log: %w", err)
	}
	defer file.Close()

	var src io.Reader = file
	if showReadProgress(app, progressMode) {
		size := int64(-1)
		if info, statErr := file.Stat(); statErr == nil {
			size = info.Size()
		}
		bar := newReadProgressBar(app.IO.ErrOut, size)
		defer func() {
			_ = bar.Finish()
			fmt.Fprintln(app.IO.ErrOut)
		}()
		reader := progressbar.NewReader(file, bar)
		src = &reader
	}

	analyzer := analysis.New(analysis.Options{
		DownloadBucketSize:     cfg.Analysis.DownloadBucketSize,
		ImportBucketSize:       cfg.Analysis.ImportBucketSize,
		DedupeRepeatedProgress: cfg.Analysis.DedupeRepeatedProgress,
		Logger:                 newLogger(app, cfg),
		Emitter:                newEmitter(app),
	})
	return analyzer.Run(src, outputs)
}

func showReadProgress(app *AppContext, mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if app.Opts.JSON || app.Opts.Quiet {
		return false
	}
	return output.SupportsInPlaceUpdates(app.IO.ErrOut)
}

func newReadProgressBar(w io.Writer, size int64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Reading log"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}
