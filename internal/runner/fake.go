package runner

import (
	"fmt"
	"strings"
)

// Fake is a scripted Runner for tests. Responses are keyed by the full
// command line (Command.String()). Every call is recorded in Calls.
type Fake struct {
	Responses map[string]*Result
	// Launch lists command lines that fail as if the binary were missing.
	Launch map[string]bool
	Calls  []string
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{
		Responses: make(map[string]*Result),
		Launch:    make(map[string]bool),
	}
}

// Set scripts the response for a command line.
func (f *Fake) Set(cmdline, stdout, stderr string, code int) {
	f.Responses[cmdline] = &Result{
		Stdout:   []byte(stdout),
		Stderr:   []byte(stderr),
		ExitCode: code,
	}
}

// Count returns how many times the given command line was run.
func (f *Fake) Count(cmdline string) int {
	n := 0
	for _, c := range f.Calls {
		if c == cmdline {
			n++
		}
	}
	return n
}

// CountPrefix returns how many recorded calls start with prefix.
func (f *Fake) CountPrefix(prefix string) int {
	n := 0
	for _, c := range f.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Run implements Runner. Unscripted commands exit 1 with a diagnostic.
func (f *Fake) Run(c Command) (*Result, error) {
	line := c.String()
	f.Calls = append(f.Calls, line)

	if f.Launch[line] {
		return nil, &LaunchError{Command: line, Err: fmt.Errorf("executable file not found in $PATH")}
	}

	res, ok := f.Responses[line]
	if !ok {
		res = &Result{Stderr: []byte("unscripted command: " + line + "\n"), ExitCode: 1}
	}
	if c.Stdout != nil && len(res.Stdout) > 0 {
		c.Stdout.Write(res.Stdout)
	}
	if c.Stderr != nil && len(res.Stderr) > 0 {
		c.Stderr.Write(res.Stderr)
	}
	// Hand out a copy so callers can't mutate the script.
	return &Result{
		Stdout:   append([]byte(nil), res.Stdout...),
		Stderr:   append([]byte(nil), res.Stderr...),
		ExitCode: res.ExitCode,
	}, nil
}
