package dispatch

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Result is the outcome of a finished bridge process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner starts the OS automation bridges (osascript, powershell).
// Run returns an error only when the process could not be started or the
// context ended first; a non-zero exit is reported through Result.ExitCode.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
	LookPath(file string) (string, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			res.ExitCode = ee.ExitCode()
			return res, nil
		}
		return res, err
	}
	return res, nil
}

func (ExecRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}
