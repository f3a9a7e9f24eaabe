package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestJSONEmitterSerializesEvent(t *testing.T) {
	buf := &bytes.Buffer{}
	emitter := NewJSONEmitter(buf)

	event := Event{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:     LevelInfo,
		Event:     EventAnalysisStarted,
		Message:   "analysis started",
		Details: map[string]any{
			"input": "clone.log",
		},
	}

	if err := emitter.Emit(event); err != nil {
		t.Fatalf("emit: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}

	if decoded["event"] != string(EventAnalysisStarted) {
		t.Fatalf("unexpected event name: %v", decoded["event"])
	}
	if decoded["message"] != "analysis started" {
		t.Fatalf("unexpected message: %v", decoded["message"])
	}
}

func TestHumanEmitterQuietKeepsOnlySummaryAndErrors(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	emitter := NewHumanEmitter(stdout, stderr, true, false)

	events := []Event{
		{Level: LevelInfo, Event: EventAnalysisStarted, Message: "analysis started"},
		{Level: LevelInfo, Event: EventReportWritten, Message: "wrote stage durations"},
		{Level: LevelWarn, Event: EventReportWritten, Message: "slow disk"},
		{Level: LevelError, Event: EventAnalysisFailed, Message: "no samples"},
		{Level: LevelInfo, Event: EventAnalysisFinished, Message: "analysis finished"},
	}
	for _, event := range events {
		if err := emitter.Emit(event); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}

	if stdout.String() != "analysis finished\n" {
		t.Fatalf("expected only summary on stdout, got %q", stdout.String())
	}
	if stderr.String() != "ERROR: no samples\n" {
		t.Fatalf("expected only error on stderr, got %q", stderr.String())
	}
}
