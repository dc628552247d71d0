package router

import (
	"bytes"
	"errors"

	"github.com/blackwell-systems/pacpak/internal/output"
	"github.com/blackwell-systems/pacpak/internal/runner"
)

// errNoPacman is reported for operations only pacman can perform.
var errNoPacman = errors.New("this operation needs pacman; enable wrap_pacman to use it")

func (r *Router) primaryCommand(args []string) runner.Command {
	argv := append([]string{"--color", output.PacmanFlag(r.cfg.Color)}, args...)
	return runner.Command{
		Name:  r.cfg.PrimaryPath,
		Args:  argv,
		Stdin: r.streams.In,
	}
}

// invokePrimary runs pacman for a query with stdout streamed to the user
// and stderr held back. Without wrapping it returns the result pacman would
// give for a database that knows none of the targets.
func (r *Router) invokePrimary(req Request) (*runner.Result, error) {
	if !r.cfg.WrapPrimary {
		return r.syntheticPrimary(req), nil
	}
	cmd := r.primaryCommand(req.Args)
	cmd.Stdout = r.streams.Out
	return r.runner.Run(cmd)
}

func (r *Router) syntheticPrimary(req Request) *runner.Result {
	if len(req.Targets) == 0 {
		return &runner.Result{}
	}
	var stderr bytes.Buffer
	p := output.NewPrinter(&stderr, r.cfg.Color)
	for _, target := range req.Targets {
		switch req.Op {
		case OpOwns:
			p.Errorf("No package owns %s", target)
		case OpSearchLocal, OpSearchRemote:
			// pacman's searches fail silently.
		default:
			p.Errorf("package '%s' was not found", target)
		}
	}
	return &runner.Result{Stderr: stderr.Bytes(), ExitCode: 1}
}

// passthrough runs pacman with the terminal attached and returns its exit
// code. flatpak is not consulted.
func (r *Router) passthrough(req Request) Outcome {
	if !r.cfg.WrapPrimary {
		return r.finish(Error, 1, errNoPacman)
	}
	cmd := r.primaryCommand(req.Args)
	cmd.Stdout = r.streams.Out
	cmd.Stderr = r.streams.Err
	r.transition(PrimaryInvoked, nil)

	res, err := r.runner.Run(cmd)
	if err != nil {
		return r.finish(Error, ExitError, err)
	}
	code := exitCode(res.ExitCode)
	if code == 0 {
		return r.finish(ResolvedByPrimary, 0, nil)
	}
	return r.finish(NotFound, code, nil)
}

// version prints pacman's banner, if wrapping, followed by pacpak's.
func (r *Router) version(req Request) Outcome {
	if r.cfg.WrapPrimary {
		cmd := r.primaryCommand(req.Args)
		cmd.Stdout = r.streams.Out
		cmd.Stderr = r.streams.Err
		r.transition(PrimaryInvoked, nil)
		if _, err := r.runner.Run(cmd); err != nil {
			return r.finish(Error, ExitError, err)
		}
	}
	r.out.Version(r.cfg.Version, r.cfg.WrapPrimary)
	return r.finish(ResolvedBySecondary, 0, nil)
}
