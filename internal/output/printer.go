package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/blackwell-systems/pacpak/internal/flatpak"
)

// Field values pacman prints that flatpak has no equivalent for.
const (
	none                  = "None"
	installReasonExplicit = "Explicitly installed"
	installReasonDep      = "Installed as a dependency for another package"
)

// infoLabelWidth is the column the -Qi values start at, minus ": ".
const infoLabelWidth = 16

// versionIndent lines pacpak's banner up with pacman's ASCII art.
var versionIndent = strings.Repeat(" ", 23)

// Printer writes pacman-formatted lines to w.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter creates a Printer. color enables ANSI escapes.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

func (p *Printer) colorize(code, text string) string {
	if p.color {
		return code + text + colorReset
	}
	return text
}

// Package prints the -Q line: "<id> (<name>) <version> (<branch>)".
func (p *Printer) Package(app *flatpak.App) {
	fmt.Fprintf(p.w, "%s%s %s (%s)\n",
		p.colorize(colorBold, app.ID),
		displayName(app),
		p.colorize(colorGreen, app.Version),
		app.Branch)
}

func displayName(app *flatpak.App) string {
	if app.Name == "" {
		return ""
	}
	return " (" + app.Name + ")"
}

// Info prints the -Qi block for app followed by a blank line.
func (p *Printer) Info(app *flatpak.App) {
	name := app.ID
	if app.Name != "" {
		name += " (" + app.Name + ")"
	}
	reason := installReasonExplicit
	if app.Runtime == "" {
		// Runtimes themselves have no runtime.
		reason = installReasonDep
	}

	fields := []struct{ label, value string }{
		{"Name", name},
		{"Version", fmt.Sprintf("%s (%s)", app.Version, app.Branch)},
		{"Description", app.Description},
		{"Architecture", app.Arch},
		{"URL", app.URL},
		{"Licenses", app.License},
		{"Groups", orNone(app.Collection)},
		{"Provides", app.Provides},
		{"Depends On", orNone(app.Depends)},
		{"Optional Deps", none},
		{"Required By", flatpak.NotImplemented},
		{"Optional For", none},
		{"Conflicts With", flatpak.NotImplemented},
		{"Replaces", flatpak.NotImplemented},
		{"Installed Size", app.InstallSize},
		{"Packager", app.Packager},
		{"Build Date", app.BuildDate},
		{"Install Date", app.InstallDate},
		{"Install Reason", reason},
		{"Install Script", flatpak.NotImplemented},
		{"Validated By", flatpak.NotImplemented},
	}

	var sb strings.Builder
	for _, f := range fields {
		label := fmt.Sprintf("%-*s:", infoLabelWidth, f.label)
		sb.WriteString(p.colorize(colorBold, label))
		sb.WriteString(" ")
		sb.WriteString(f.value)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	io.WriteString(p.w, sb.String())
}

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}

// Files prints one -Ql line per path. Directories get a trailing slash
// like pacman's file lists.
func (p *Printer) Files(app *flatpak.App, paths []string, isDir func(string) bool) {
	id := p.colorize(colorBold, app.ID)
	for _, path := range paths {
		if isDir != nil && isDir(path) && !strings.HasSuffix(path, "/") {
			path += "/"
		}
		fmt.Fprintf(p.w, "%s %s\n", id, path)
	}
}

// Owner prints the -Qo line for a file that belongs to app.
func (p *Printer) Owner(path string, app *flatpak.App) {
	fmt.Fprintf(p.w, "%s is owned by %s %s\n",
		path,
		p.colorize(colorBold, app.ExtendedID()),
		p.colorize(colorGreen, app.Version))
}

// SearchEntry prints the two-line -Qs/-Ss entry. installed appends
// pacman's "[installed]" marker.
func (p *Printer) SearchEntry(app *flatpak.App, installed bool) {
	repo := app.Origin
	if repo == "" {
		repo = "flatpak"
	}
	line := fmt.Sprintf("%s%s %s (%s)",
		p.colorize(colorMagenta, repo+"/"),
		p.colorize(colorBold, app.ID),
		p.colorize(colorGreen, app.Version),
		app.Branch)
	if installed {
		line += " " + p.colorize(colorCyan, "[installed]")
	}

	desc := app.Description
	if desc == "" {
		desc = app.Name
	}
	fmt.Fprintf(p.w, "%s\n    %s\n", line, desc)
}

// Version prints pacpak's banner. With indent it is aligned under pacman's
// own -V output.
func (p *Printer) Version(version string, indent bool) {
	pad := ""
	if indent {
		pad = versionIndent
		fmt.Fprintf(p.w, "%s---\n%s\n", pad, pad)
	}
	fmt.Fprintf(p.w, "%sPacpak v%s\n", pad, version)
	fmt.Fprintf(p.w, "%sflatpak apps for pacman queries\n", pad)
}

// Errorf prints a pacman-style "error: ..." line.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.colorize(colorRed, "error:"), fmt.Sprintf(format, args...))
}

// Warnf prints a pacman-style "warning: ..." line.
func (p *Printer) Warnf(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.colorize(colorYellow, "warning:"), fmt.Sprintf(format, args...))
}
