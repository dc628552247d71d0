// Package output renders flatpak records the way pacman prints its own
// packages, so both backends read as one listing.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ANSI codes used by pacman's colored output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorRed     = "\033[1;31m"
	colorGreen   = "\033[1;32m"
	colorYellow  = "\033[1;33m"
	colorMagenta = "\033[1;35m"
	colorCyan    = "\033[1;36m"
)

// ColorMode is the user's --color choice.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color value. The empty string means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
	}
}

// ColorEnabled resolves mode for the terminal on f. In auto mode color is
// used only when f is a TTY and NO_COLOR is unset.
func ColorEnabled(mode ColorMode, f *os.File) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PacmanFlag is the --color argument handed to pacman.
func PacmanFlag(color bool) string {
	if color {
		return string(ColorAlways)
	}
	return string(ColorNever)
}
