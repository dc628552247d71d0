// Package router decides, per pacman operation, whether pacman's answer or
// the flatpak catalog's answer is shown, and merges their exit codes and
// diagnostics into one result.
package router

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/pacpak/internal/catalog"
	"github.com/blackwell-systems/pacpak/internal/output"
	"github.com/blackwell-systems/pacpak/internal/runner"
)

// ExitError is the exit code for failures that are not pacman's verdict:
// a tool that cannot be launched, a catalog failure, or a signal.
const ExitError = 255

// Op is a pacman operation as far as routing is concerned.
type Op int

const (
	// OpPassthrough hands the command line to pacman untouched.
	OpPassthrough Op = iota
	OpList
	OpInfo
	OpOwns
	OpFiles
	OpSearchLocal
	OpSearchRemote
	OpVersion
)

var opNames = map[Op]string{
	OpPassthrough:  "passthrough",
	OpList:         "query",
	OpInfo:         "query-info",
	OpOwns:         "query-owns",
	OpFiles:        "query-list",
	OpSearchLocal:  "query-search",
	OpSearchRemote: "sync-search",
	OpVersion:      "version",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// State is a step of one dispatch.
type State int

const (
	Idle State = iota
	PrimaryInvoked
	ResolvedByPrimary
	ResolvedBySecondary
	NotFound
	Error
	Done
)

var stateNames = [...]string{"idle", "primary-invoked", "resolved-by-primary", "resolved-by-secondary", "not-found", "error", "done"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Request is one user invocation.
type Request struct {
	Op Op
	// Args is the user's argv as pacman should see it, without --color.
	Args []string
	// Targets are the positional arguments: package names, search terms
	// or file paths depending on Op.
	Targets []string
}

// Outcome is the verdict of a dispatch. State is the terminal state reached
// before Done. Err is set only for State Error.
type Outcome struct {
	State    State
	ExitCode int
	Err      error
}

// Config is fixed for a Router's lifetime.
type Config struct {
	// WrapPrimary runs pacman before consulting flatpak.
	WrapPrimary bool
	// Color selects ANSI output and the --color value handed to pacman.
	Color bool
	// PrimaryPath is the pacman executable.
	PrimaryPath string
	// Version is pacpak's version for -V.
	Version string
}

// Streams are the standard streams of the process.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Router dispatches requests. It is not safe for concurrent use.
type Router struct {
	cfg     Config
	runner  runner.Runner
	cat     *catalog.Catalog
	streams Streams
	out     *output.Printer
	errOut  *output.Printer
	state   State
}

// New creates a Router. cat answers the flatpak side of every query.
func New(cfg Config, r runner.Runner, cat *catalog.Catalog, streams Streams) *Router {
	if cfg.PrimaryPath == "" {
		cfg.PrimaryPath = "pacman"
	}
	if streams.Out == nil {
		streams.Out = io.Discard
	}
	if streams.Err == nil {
		streams.Err = io.Discard
	}
	return &Router{
		cfg:     cfg,
		runner:  r,
		cat:     cat,
		streams: streams,
		out:     output.NewPrinter(streams.Out, cfg.Color),
		errOut:  output.NewPrinter(streams.Err, cfg.Color),
	}
}

// State returns the state the last dispatch is in.
func (r *Router) State() State {
	return r.state
}

func (r *Router) transition(to State, fields logrus.Fields) {
	entry := logrus.WithFields(logrus.Fields{"from": r.state, "to": to})
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Debug("router state change")
	r.state = to
}

// finish records the terminal state, moves to Done and builds the Outcome.
// Errors are reported on stderr in pacman's style.
func (r *Router) finish(state State, code int, err error) Outcome {
	fields := logrus.Fields{"exit": code}
	if err != nil {
		fields["error"] = err.Error()
		r.errOut.Errorf("%v", err)
	}
	r.transition(state, fields)
	r.transition(Done, nil)
	return Outcome{State: state, ExitCode: code, Err: err}
}

// Dispatch runs req to completion.
func (r *Router) Dispatch(req Request) Outcome {
	r.state = Idle
	logrus.WithFields(logrus.Fields{"op": req.Op, "targets": req.Targets}).Debug("dispatching")

	switch req.Op {
	case OpPassthrough:
		return r.passthrough(req)
	case OpVersion:
		return r.version(req)
	default:
		return r.query(req)
	}
}

func (r *Router) query(req Request) Outcome {
	primary, err := r.invokePrimary(req)
	if err != nil {
		return r.finish(Error, ExitError, err)
	}
	r.transition(PrimaryInvoked, logrus.Fields{"exit": primary.ExitCode, "synthetic": !r.cfg.WrapPrimary})

	if req.Op == OpOwns && primary.Success() {
		return r.finish(ResolvedByPrimary, 0, nil)
	}

	if _, err := r.cat.Refresh(); err != nil {
		return r.finish(Error, ExitError, err)
	}
	found, err := r.answer(req)
	if err != nil {
		return r.finish(Error, ExitError, err)
	}
	if found > 0 {
		return r.finish(ResolvedBySecondary, 0, nil)
	}

	r.streams.Err.Write(primary.Stderr)
	code := exitCode(primary.ExitCode)
	if code == 0 {
		return r.finish(ResolvedByPrimary, 0, nil)
	}
	return r.finish(NotFound, code, nil)
}

// exitCode maps a child's status to ours. Signal deaths report -1.
func exitCode(code int) int {
	if code < 0 {
		return ExitError
	}
	return code
}
