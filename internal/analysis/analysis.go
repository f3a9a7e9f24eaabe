// Package analysis wires line classification, stage tracking and throughput
// resampling into a single pass over a profile log.
package analysis

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jaa/sync-profiler/internal/elapsed"
	"github.com/jaa/sync-profiler/internal/fileops"
	"github.com/jaa/sync-profiler/internal/logscan"
	"github.com/jaa/sync-profiler/internal/output"
	"github.com/jaa/sync-profiler/internal/report"
	"github.com/jaa/sync-profiler/internal/stage"
	"github.com/jaa/sync-profiler/internal/throughput"
)

const (
	DefaultDownloadBucketSize = 100000
	DefaultImportBucketSize   = 1000
)

type Options struct {
	DownloadBucketSize     int
	ImportBucketSize       int
	DedupeRepeatedProgress bool
	Rules                  []logscan.Rule
	Logger                 *slog.Logger
	Emitter                output.EventEmitter
	Now                    func() time.Time
}

// Outputs names the three report files. They are written in this order.
type Outputs struct {
	StageDurations string
	Download       string
	Import         string
}

type Analyzer struct {
	opts       Options
	classifier *logscan.Classifier
	tracker    *stage.Tracker
	collectors map[stage.Stage]*throughput.Collector
	lines      int
	markers    int
}

func New(opts Options) *Analyzer {
	if opts.DownloadBucketSize <= 0 {
		opts.DownloadBucketSize = DefaultDownloadBucketSize
	}
	if opts.ImportBucketSize <= 0 {
		opts.ImportBucketSize = DefaultImportBucketSize
	}
	if opts.Logger == nil {
		opts.Logger = output.NopLogger()
	}
	if opts.Emitter == nil {
		opts.Emitter = output.NopEmitter{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	collectorOpts := throughput.CollectorOptions{DedupeRepeated: opts.DedupeRepeatedProgress}
	return &Analyzer{
		opts:       opts,
		classifier: logscan.NewClassifier(opts.Rules),
		tracker:    stage.NewTracker(opts.Logger),
		collectors: map[stage.Stage]*throughput.Collector{
			stage.Downloading: throughput.NewCollector(collectorOpts),
			stage.Importing:   throughput.NewCollector(collectorOpts),
		},
	}
}

// ProcessLine classifies one line and feeds the stage tracker and, for
// streaming stages, the progress collector. Lines without a marker are ignored.
func (a *Analyzer) ProcessLine(line string) error {
	a.lines++
	c, ok, err := a.classifier.Classify(line)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	a.markers++
	a.tracker.Observe(c.Stage, c.Timestamp)
	if collector, streaming := a.collectors[c.Stage]; streaming {
		collector.Add(line, c.Timestamp)
	}
	return nil
}

func (a *Analyzer) Consume(r io.Reader) error {
	return logscan.Lines(r, func(lineNo int, line string) error {
		if err := a.ProcessLine(line); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		return nil
	})
}

func (a *Analyzer) StageDurations() []stage.Duration {
	return a.tracker.Report()
}

func (a *Analyzer) Pair(s stage.Stage) (stage.TimestampPair, bool) {
	return a.tracker.Pair(s)
}

func (a *Analyzer) Samples(s stage.Stage) []throughput.Sample {
	collector, ok := a.collectors[s]
	if !ok {
		return nil
	}
	return collector.Samples()
}

func (a *Analyzer) BucketSize(s stage.Stage) int {
	if s == stage.Importing {
		return a.opts.ImportBucketSize
	}
	return a.opts.DownloadBucketSize
}

func (a *Analyzer) Throughput(s stage.Stage) (throughput.Curve, error) {
	collector, ok := a.collectors[s]
	if !ok {
		return nil, fmt.Errorf("stage %s does not report progress", s)
	}
	curve, err := throughput.Resample(collector.Samples(), a.BucketSize(s))
	if err != nil {
		return nil, fmt.Errorf("%s throughput: %w", s, err)
	}
	return curve, nil
}

// Run consumes the whole log and writes the three reports. The first failure
// stops the run; reports written before it stay on disk.
func (a *Analyzer) Run(r io.Reader, outputs Outputs) error {
	a.emit(output.LevelInfo, output.EventAnalysisStarted, "", "analysis started", nil)

	err := a.run(r, outputs)
	if err != nil {
		a.emit(output.LevelError, output.EventAnalysisFailed, "", err.Error(), nil)
		return err
	}

	a.emit(output.LevelInfo, output.EventAnalysisFinished, "", fmt.Sprintf("analysis finished (%d line(s), %d stage marker(s))", a.lines, a.markers), map[string]any{
		"lines":   a.lines,
		"markers": a.markers,
	})
	return nil
}

func (a *Analyzer) run(r io.Reader, outputs Outputs) error {
	if err := a.Consume(r); err != nil {
		return err
	}
	a.logSummary()
	return a.WriteReports(outputs)
}

func (a *Analyzer) WriteReports(outputs Outputs) error {
	var buf bytes.Buffer
	if err := report.StageDurations(&buf, a.StageDurations()); err != nil {
		return fmt.Errorf("render stage durations: %w", err)
	}
	if err := a.writeReport(outputs.StageDurations, "stage durations", buf.Bytes()); err != nil {
		return err
	}

	for _, target := range []struct {
		stage stage.Stage
		path  string
		name  string
	}{
		{stage: stage.Downloading, path: outputs.Download, name: "download throughput"},
		{stage: stage.Importing, path: outputs.Import, name: "import throughput"},
	} {
		curve, err := a.Throughput(target.stage)
		if err != nil {
			return err
		}
		buf.Reset()
		if err := report.Throughput(&buf, curve); err != nil {
			return fmt.Errorf("render %s: %w", target.name, err)
		}
		if err := a.writeReport(target.path, target.name, buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) writeReport(path string, name string, payload []byte) error {
	if err := fileops.WriteFileAtomically(path, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	a.emit(output.LevelInfo, output.EventReportWritten, path, fmt.Sprintf("wrote %s to %s", name, path), nil)
	return nil
}

func (a *Analyzer) logSummary() {
	for _, s := range stage.Reported {
		pair, ok := a.tracker.Pair(s)
		if !ok {
			a.opts.Logger.Debug("stage not observed", "stage", s.String())
			continue
		}
		a.opts.Logger.Debug("stage bracket", "stage", s.String(), "first", pair.First, "last", pair.Last, "seconds", elapsed.Seconds(pair.Duration()))
	}
	for _, s := range []stage.Stage{stage.Downloading, stage.Importing} {
		a.opts.Logger.Debug("progress samples", "stage", s.String(), "count", a.collectors[s].Len(), "bucket_size", a.BucketSize(s))
	}
}

func (a *Analyzer) emit(level output.Level, name output.EventName, path string, message string, details map[string]any) {
	_ = a.opts.Emitter.Emit(output.Event{
		Timestamp: a.opts.Now(),
		Level:     level,
		Event:     name,
		Path:      path,
		Message:   message,
		Details:   details,
	})
}
