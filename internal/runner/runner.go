// Package runner executes a setup's run file with the projected variables.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// Request describes one execution.
type Request struct {
	// File is the run file; it must be executable.
	File string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Args are passed to the run file.
	Args []string
	// Env holds NAME=value pairs. The child sees only these and PATH.
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// Result is the outcome of a finished run.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Runner starts run files.
type Runner struct {
	logger *slog.Logger
}

// New returns a runner. A nil logger discards logs.
func New(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{logger: logger}
}

// WaitDelay bounds how long Run waits for output after the run file exited or
// was cancelled. Processes that outlive it have their output cut.
const WaitDelay = 2 * time.Second

// Run executes req and streams the child's output while it runs.
// A non-zero exit status is reported in Result, not as an error.
// Cancelling ctx kills the run file and every process it started.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	cmd := exec.CommandContext(ctx, req.File, req.Args...)
	cmd.Dir = req.Dir
	cmd.Env = append([]string{"PATH=" + os.Getenv("PATH")}, req.Env...)
	cmd.Stdout = req.Stdout
	cmd.Stderr = req.Stderr
	cmd.WaitDelay = WaitDelay
	ownProcessGroup(cmd)

	start := time.Now()
	r.logger.Debug("starting run file", "file", req.File, "args", req.Args)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", req.File, err)
	}

	waitErr := cmd.Wait()
	result := &Result{Duration: time.Since(start)}

	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		r.logger.Debug("run file cancelled", "file", req.File, "duration", result.Duration)
		return result, ctx.Err()
	case waitErr == nil:
	case errors.As(waitErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case errors.Is(waitErr, exec.ErrWaitDelay):
		r.logger.Warn("output still open after run file exited", "file", req.File, "wait_delay", WaitDelay)
	default:
		return nil, fmt.Errorf("failed to run %s: %w", req.File, waitErr)
	}

	r.logger.Debug("run file finished", "file", req.File, "exit_code", result.ExitCode, "duration", result.Duration)
	return result, nil
}
