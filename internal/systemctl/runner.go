package systemctl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result carries the raw outcome of one external command invocation.
// Interpretation of the output belongs to the caller.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Success reports whether the command exited zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// ErrExecutableNotFound marks a spawn failure caused by a missing binary.
var ErrExecutableNotFound = errors.New("executable not found")

// SpawnError reports that the external process could not be started at all,
// as opposed to a started process exiting non-zero.
type SpawnError struct {
	Name string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Name, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Runner executes one external command and reaps its process. Implementations
// must be safe for concurrent use; the UI dispatches runs from independent
// goroutines.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// execRunner runs commands through os/exec. Context cancellation kills the
// child, and exec.Cmd.Run always waits, so no process handle is leaked even
// when the caller abandons the invocation.
type execRunner struct{}

// NewRunner returns the default os/exec backed Runner.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return Result{}, &SpawnError{Name: name, Err: fmt.Errorf("%w: %v", ErrExecutableNotFound, err)}
	}
	return Result{}, &SpawnError{Name: name, Err: err}
}
