package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jaa/sync-profiler/internal/output"
)

var ErrInterrupted = errors.New("profile interrupted")

// CommandError reports a command that exited unsuccessfully. The tails hold
// the last output of each stream; cm prints some failures on stdout only.
type CommandError struct {
	Command    string
	ExitCode   int
	TimedOut   bool
	StdoutTail string
	StderrTail string
	Err        error
}

func (e *CommandError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("command timed out: %s", e.Command)
	}
	msg := fmt.Sprintf("command failed with exit code %d: %s", e.ExitCode, e.Command)
	tail := lastLine(e.StderrTail)
	if tail == "" {
		tail = lastLine(e.StdoutTail)
	}
	if tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Profiler runs the commands of a clone sequentially and stops at the first
// failure. Command output reaches the log through the runner's writers.
type Profiler struct {
	Runner   ExecRunner
	Logger   *slog.Logger
	Emitter  output.EventEmitter
	Now      func() time.Time
	NewRunID func() string
}

func NewProfiler(runner ExecRunner, logger *slog.Logger, emitter output.EventEmitter) *Profiler {
	if logger == nil {
		logger = output.NopLogger()
	}
	if emitter == nil {
		emitter = output.NopEmitter{}
	}
	return &Profiler{
		Runner:   runner,
		Logger:   logger,
		Emitter:  emitter,
		Now:      time.Now,
		NewRunID: func() string { return uuid.NewString() },
	}
}

func (p *Profiler) Profile(ctx context.Context, specs []ExecSpec) (ProfileResult, error) {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.NewRunID == nil {
		p.NewRunID = func() string { return uuid.NewString() }
	}

	result := ProfileResult{RunID: p.NewRunID()}
	started := p.Now()
	logger := p.Logger.With("run_id", result.RunID)
	logger.Info("Profiling started", "commands", len(specs))

	var runErr error
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			runErr = ErrInterrupted
			break
		}

		display := spec.DisplayCommand
		if display == "" {
			display = strings.TrimSpace(spec.Bin + " " + strings.Join(spec.Args, " "))
		}

		logger.Info("Running command: " + display)
		_ = p.Emitter.Emit(output.Event{
			Timestamp: p.Now(),
			Level:     output.LevelInfo,
			Event:     output.EventCommandStarted,
			Message:   "running " + display,
			Details: map[string]any{
				"command": display,
				"run_id":  result.RunID,
			},
		})

		execResult := p.Runner.Run(ctx, spec)
		result.Commands = append(result.Commands, CommandResult{
			Command:  display,
			ExitCode: execResult.ExitCode,
			Duration: execResult.Duration,
		})

		if execResult.Interrupted {
			result.Failed++
			logger.Warn("Command interrupted: " + display)
			_ = p.Emitter.Emit(output.Event{
				Timestamp: p.Now(),
				Level:     output.LevelWarn,
				Event:     output.EventCommandFailed,
				Message:   "interrupted " + display,
				Details: map[string]any{
					"command": display,
					"run_id":  result.RunID,
				},
			})
			runErr = ErrInterrupted
			break
		}

		if execResult.ExitCode != 0 {
			result.Failed++
			cmdErr := &CommandError{
				Command:    display,
				ExitCode:   execResult.ExitCode,
				TimedOut:   execResult.TimedOut,
				StdoutTail: execResult.StdoutTail,
				StderrTail: execResult.StderrTail,
				Err:        execResult.Err,
			}
			logger.Error(cmdErr.Error(), "duration", execResult.Duration)
			_ = p.Emitter.Emit(output.Event{
				Timestamp: p.Now(),
				Level:     output.LevelError,
				Event:     output.EventCommandFailed,
				Message:   cmdErr.Error(),
				Details: map[string]any{
					"command":   display,
					"exit_code": execResult.ExitCode,
					"timed_out": execResult.TimedOut,
					"run_id":    result.RunID,
				},
			})
			runErr = cmdErr
			break
		}

		result.Succeeded++
		logger.Info("Command finished: "+display, "duration", execResult.Duration)
		_ = p.Emitter.Emit(output.Event{
			Timestamp: p.Now(),
			Level:     output.LevelInfo,
			Event:     output.EventCommandFinished,
			Message:   fmt.Sprintf("finished %s in %s", display, execResult.Duration.Round(time.Millisecond)),
			Details: map[string]any{
				"command":     display,
				"duration_ms": execResult.Duration.Milliseconds(),
				"run_id":      result.RunID,
			},
		})
	}

	result.Duration = p.Now().Sub(started)
	level := output.LevelInfo
	if runErr != nil {
		level = output.LevelError
	}
	_ = p.Emitter.Emit(output.Event{
		Timestamp: p.Now(),
		Level:     level,
		Event:     output.EventProfileFinished,
		Message:   fmt.Sprintf("profile finished: succeeded=%d failed=%d", result.Succeeded, result.Failed),
		Details: map[string]any{
			"run_id":    result.RunID,
			"succeeded": result.Succeeded,
			"failed":    result.Failed,
		},
	})
	logger.Info("Profiling finished", "succeeded", result.Succeeded, "failed", result.Failed)
	return result, runErr
}

func lastLine(s string) string {
	lines := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
