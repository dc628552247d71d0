// Package app is pacpak's command line: pacman's flags in, pacman's output
// format out, with flatpak apps answered alongside pacman's packages.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pacpak/internal/catalog"
	"github.com/blackwell-systems/pacpak/internal/config"
	"github.com/blackwell-systems/pacpak/internal/flatpak"
	"github.com/blackwell-systems/pacpak/internal/output"
	"github.com/blackwell-systems/pacpak/internal/router"
	"github.com/blackwell-systems/pacpak/internal/runner"
	"github.com/blackwell-systems/pacpak/internal/store"
)

// Version is pacpak's release, overridden at build time with -ldflags.
var Version = "0.1.0"

// ExitCodeError carries a process exit status out of cobra.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// App holds the process environment a run needs. The zero value is not
// usable; see New.
type App struct {
	Runner runner.Runner
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// args is the raw argv of the current run.
	args []string
}

// New returns an App bound to the real process.
func New() *App {
	return &App{
		Runner: runner.Exec{},
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Execute runs pacpak with args and returns the process exit code.
func Execute(args []string) int {
	return New().Run(args)
}

// Run parses args and dispatches them. It returns the exit code.
func (a *App) Run(args []string) int {
	a.args = args
	logrus.SetOutput(a.Stderr)
	logrus.SetLevel(logrus.WarnLevel)

	cmd := a.newRootCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	output.NewPrinter(a.Stderr, false).Errorf("%v", err)
	return 1
}

func (a *App) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pacpak <operation> [...]",
		Short: "pacman with flatpak apps in the package database",
		Long: `pacpak runs pacman and answers the same queries for installed flatpak
apps, so both show up as one package list.

Query operations (-Q, -Qi, -Qo, -Ql, -Qs) and remote search (-Ss) are
answered by pacman first and by flatpak when pacman does not know the
target. Every other operation is handed to pacman unchanged.

Examples:
  # List pacman packages and flatpak apps
  pacpak -Q

  # Show details of a flatpak app
  pacpak -Qi org.mozilla.firefox

  # Find the package that owns a file
  pacpak -Qo /var/lib/flatpak/app/org.gnome.Maps

  # Search pacman repositories and flatpak remotes
  pacpak -Ss maps`,
		Args:               cobra.ArbitraryArgs,
		SilenceUsage:       true,
		SilenceErrors:      true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE:               a.run,
	}
	cmd.SetIn(a.Stdin)
	cmd.SetOut(a.Stdout)
	cmd.SetErr(a.Stderr)
	registerFlags(cmd.Flags())
	return cmd
}

// processGlobalFlags applies --debug and --log-level. --log-level wins.
func processGlobalFlags(cmd *cobra.Command) error {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		lvl, err := logrus.ParseLevel(l)
		if err != nil {
			return err
		}
		logrus.SetLevel(lvl)
	}
	return nil
}

func (a *App) run(cmd *cobra.Command, targets []string) error {
	if err := processGlobalFlags(cmd); err != nil {
		return err
	}

	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file, cmd.Flags())
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"wrap_pacman":  cfg.WrapPacman,
		"color":        cfg.Color,
		"lookup_match": cfg.LookupMatch,
	}).Debug("configuration loaded")

	st, err := store.New()
	if err != nil {
		return err
	}
	defer st.Close()

	client := flatpak.NewClient(a.Runner, cfg.FlatpakPath)
	cat := catalog.New(client, st, catalog.WithLineMatcher(cfg.Matcher()))
	r := router.New(router.Config{
		WrapPrimary: cfg.WrapPacman,
		Color:       output.ColorEnabled(cfg.ColorMode(), terminal(a.Stdout)),
		PrimaryPath: cfg.PacmanPath,
		Version:     Version,
	}, a.Runner, cat, router.Streams{In: a.Stdin, Out: a.Stdout, Err: a.Stderr})

	outcome := r.Dispatch(router.Request{
		Op:      classify(cmd.Flags()),
		Args:    forwardArgs(a.args),
		Targets: targets,
	})
	if outcome.ExitCode != 0 {
		return &ExitCodeError{Code: outcome.ExitCode}
	}
	return nil
}

// terminal returns w as a file when it is one, for TTY detection.
func terminal(w io.Writer) *os.File {
	f, _ := w.(*os.File)
	return f
}
