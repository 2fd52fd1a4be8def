package curl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// Result reports what happened to a single transport invocation.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Runner executes the transport binary. Stdout and Stderr default to
// the parent's streams so curl's output reaches the caller verbatim.
type Runner struct {
	Binary string
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner returns a Runner for the given binary, or the default curl
// when binary is empty.
func NewRunner(binary string) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Runner{
		Binary: binary,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run invokes the binary exactly once and blocks until it exits. The
// child's exit code is returned in Result even when err is non-nil; a
// missing binary or a start failure yields exit code -1. Cancelling
// the context kills the child.
func (r *Runner) Run(ctx context.Context, args []string) (Result, error) {
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Stdin = os.Stdin

	start := time.Now()
	err := cmd.Run()
	res := Result{Duration: time.Since(start)}

	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, err
	}

	res.ExitCode = -1
	return res, fmt.Errorf("failed to invoke %s: %w", r.Binary, err)
}
