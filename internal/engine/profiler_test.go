package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jaa/sync-profiler/internal/output"
)

type sequenceRunner struct {
	results []ExecResult
	specs   []ExecSpec
}

func (r *sequenceRunner) Run(ctx context.Context, spec ExecSpec) ExecResult {
	r.specs = append(r.specs, spec)
	if len(r.results) == 0 {
		return ExecResult{ExitCode: 0}
	}
	result := r.results[0]
	r.results = r.results[1:]
	return result
}

func fixedProfiler(runner ExecRunner, logs *bytes.Buffer, events *bytes.Buffer) *Profiler {
	logger := output.NewLogger(logs, 0, output.LogFormatText)
	p := NewProfiler(runner, logger, output.NewJSONEmitter(events))
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	p.Now = func() time.Time { return now }
	p.NewRunID = func() string { return "run-1" }
	return p
}

func testSpecs() []ExecSpec {
	return []ExecSpec{
		{Bin: "cm", Args: []string{"mkrep", "widgets"}, DisplayCommand: "cm mkrep widgets"},
		{Bin: "cm", Args: []string{"sync", "widgets", "git", "https://example.com/w.git", "--pwd=secret"}, DisplayCommand: "cm sync widgets git https://example.com/w.git --pwd=***"},
	}
}

func decodeEvents(t *testing.T, raw string) []output.Event {
	t.Helper()
	var events []output.Event
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		var event output.Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Fatalf("decode event %q: %v", line, err)
		}
		events = append(events, event)
	}
	return events
}

func TestProfileRunsCommandsInOrder(t *testing.T) {
	runner := &sequenceRunner{}
	var logs, events bytes.Buffer
	result, err := fixedProfiler(runner, &logs, &events).Profile(context.Background(), testSpecs())
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if result.RunID != "run-1" || result.Succeeded != 2 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(runner.specs) != 2 || runner.specs[0].Args[0] != "mkrep" || runner.specs[1].Args[0] != "sync" {
		t.Fatalf("unexpected command order: %+v", runner.specs)
	}

	if !strings.Contains(logs.String(), "Running command: cm mkrep widgets") {
		t.Fatalf("expected running command log line, got %s", logs.String())
	}
	if strings.Contains(logs.String(), "secret") {
		t.Fatalf("expected password to stay out of logs, got %s", logs.String())
	}

	decoded := decodeEvents(t, events.String())
	want := []output.EventName{
		output.EventCommandStarted,
		output.EventCommandFinished,
		output.EventCommandStarted,
		output.EventCommandFinished,
		output.EventProfileFinished,
	}
	if len(decoded) != len(want) {
		t.Fatalf("expected %d events, got %d: %s", len(want), len(decoded), events.String())
	}
	for i, name := range want {
		if decoded[i].Event != name {
			t.Fatalf("event %d: expected %s, got %s", i, name, decoded[i].Event)
		}
	}
}

func TestProfileStopsAtFirstFailure(t *testing.T) {
	runner := &sequenceRunner{results: []ExecResult{{ExitCode: 1, StderrTail: "warn\nRepository widgets already exists\n"}}}
	var logs, events bytes.Buffer
	result, err := fixedProfiler(runner, &logs, &events).Profile(context.Background(), testSpecs())

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if cmdErr.ExitCode != 1 || cmdErr.Command != "cm mkrep widgets" {
		t.Fatalf("unexpected command error: %+v", cmdErr)
	}
	if !strings.HasSuffix(cmdErr.Error(), "Repository widgets already exists") {
		t.Fatalf("expected stderr tail in message, got %q", cmdErr.Error())
	}
	if len(runner.specs) != 1 {
		t.Fatalf("expected sync to be skipped after mkrep failure, ran %d", len(runner.specs))
	}
	if result.Failed != 1 || result.Succeeded != 0 {
		t.Fatalf("unexpected result counts: %+v", result)
	}
}

func TestProfileInterrupted(t *testing.T) {
	runner := &sequenceRunner{results: []ExecResult{{ExitCode: 130, Interrupted: true}}}
	var logs, events bytes.Buffer
	_, err := fixedProfiler(runner, &logs, &events).Profile(context.Background(), testSpecs())
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	if len(runner.specs) != 1 {
		t.Fatalf("expected profiling to stop after interruption")
	}
}

func TestProfileCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &sequenceRunner{}
	var logs, events bytes.Buffer
	_, err := fixedProfiler(runner, &logs, &events).Profile(ctx, testSpecs())
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	if len(runner.specs) != 0 {
		t.Fatalf("expected no commands to run")
	}
}

func TestCommandErrorTimeoutMessage(t *testing.T) {
	err := &CommandError{Command: "cm sync", ExitCode: 124, TimedOut: true}
	if err.Error() != "command timed out: cm sync" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestCommandErrorFallsBackToStdoutTail(t *testing.T) {
	err := &CommandError{
		Command:    "cm mkrep widgets",
		ExitCode:   1,
		StdoutTail: "Connecting...\nThe repository 'widgets' already exists.\n",
	}
	want := "command failed with exit code 1: cm mkrep widgets: The repository 'widgets' already exists."
	if err.Error() != want {
		t.Fatalf("unexpected message.\n got: %q\nwant: %q", err.Error(), want)
	}

	err.StderrTail = "fatal: authentication failed\n"
	if !strings.HasSuffix(err.Error(), "fatal: authentication failed") {
		t.Fatalf("expected stderr tail to take precedence, got %q", err.Error())
	}
}

func TestProfileCarriesStdoutTailIntoCommandError(t *testing.T) {
	runner := &sequenceRunner{results: []ExecResult{{ExitCode: 1, StdoutTail: "The repository 'widgets' already exists.\n"}}}
	var logs, events bytes.Buffer
	_, err := fixedProfiler(runner, &logs, &events).Profile(context.Background(), testSpecs())

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if !strings.Contains(cmdErr.Error(), "already exists") {
		t.Fatalf("expected stdout tail in message, got %q", cmdErr.Error())
	}
}
