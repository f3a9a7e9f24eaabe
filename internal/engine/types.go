package engine

import (
	"context"
	"time"
)

type ExecSpec struct {
	Bin            string
	Args           []string
	Timeout        time.Duration
	DisplayCommand string
}

type ExecResult struct {
	ExitCode    int
	Duration    time.Duration
	Interrupted bool
	TimedOut    bool
	StdoutTail  string
	StderrTail  string
	Err         error
}

type ExecRunner interface {
	Run(ctx context.Context, spec ExecSpec) ExecResult
}

type CommandResult struct {
	Command  string        `json:"command"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

type ProfileResult struct {
	RunID     string          `json:"run_id"`
	Commands  []CommandResult `json:"commands"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Duration  time.Duration   `json:"duration"`
}
