// Package runner starts external tools (pacman, flatpak) and collects their
// output, exit code and diagnostics.
package runner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Command describes one argv-style invocation.
//
// Stdout and Stderr are optional live destinations. The streams are always
// buffered into the Result as well, so a caller can stream stdout to the
// terminal and still inspect it afterwards.
type Command struct {
	Name   string
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String returns the command line as the user would type it.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds everything a finished child process produced.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// StdoutString decodes stdout as UTF-8, replacing malformed sequences.
func (r *Result) StdoutString() string {
	return strings.ToValidUTF8(string(r.Stdout), "�")
}

// StderrString decodes stderr as UTF-8, replacing malformed sequences.
func (r *Result) StderrString() string {
	return strings.ToValidUTF8(string(r.Stderr), "�")
}

// Success reports whether the process exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Runner runs a command to completion. A non-zero exit status is not an
// error; it is reported through Result.ExitCode.
type Runner interface {
	Run(cmd Command) (*Result, error)
}

// LaunchError means the executable could not be started at all.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to execute %s: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ExitError is returned by callers that treat a non-zero exit as a failure.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("command '%s' failed with exit code %d", e.Command, e.Code)
	}
	return fmt.Sprintf("command '%s' failed with exit code %d (stderr: %s)", e.Command, e.Code, stderr)
}

// NewExitError builds an ExitError from a finished invocation.
func NewExitError(cmd Command, res *Result) *ExitError {
	return &ExitError{
		Command: cmd.String(),
		Code:    res.ExitCode,
		Stderr:  res.StderrString(),
	}
}

// Exec runs commands with os/exec.
type Exec struct{}

// Run starts the command and blocks until it exits. exec.Cmd copies both
// pipes into the buffers on its own goroutines and Wait returns only after
// the copies finish, so a chatty child can never fill a pipe and stall.
func (Exec) Run(c Command) (*Result, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.Command(c.Name, c.Args...)
	cmd.Stdin = c.Stdin
	cmd.Stdout = tee(&stdout, c.Stdout)
	cmd.Stderr = tee(&stderr, c.Stderr)

	err := cmd.Run()
	res := &Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, &LaunchError{Command: c.String(), Err: err}
	}
	return res, nil
}

func tee(buf *bytes.Buffer, live io.Writer) io.Writer {
	if live == nil {
		return buf
	}
	return io.MultiWriter(buf, live)
}
