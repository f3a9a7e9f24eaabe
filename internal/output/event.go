package output

import "time"

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type EventName string

const (
	EventAnalysisStarted  EventName = "analysis_started"
	EventReportWritten    EventName = "report_written"
	EventAnalysisFinished EventName = "analysis_finished"
	EventAnalysisFailed   EventName = "analysis_failed"
	EventCommandStarted   EventName = "command_started"
	EventCommandFinished  EventName = "command_finished"
	EventCommandFailed    EventName = "command_failed"
	EventProfileFinished  EventName = "profile_finished"
)

type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Event     EventName      `json:"event"`
	Path      string         `json:"path,omitempty"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}
