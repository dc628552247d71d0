package app

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/blackwell-systems/pacpak/internal/router"
)

// operation is one of pacman's mutually exclusive operation flags.
type operation struct {
	long, short string
}

var operations = []operation{
	{"query", "Q"},
	{"sync", "S"},
	{"remove", "R"},
	{"upgrade", "U"},
	{"database", "D"},
	{"deptest", "T"},
	{"files", "F"},
	{"version", "V"},
}

// modifiers are the query/sync options pacpak routes on.
var modifiers = []operation{
	{"info", "i"},
	{"owns", "o"},
	{"list", "l"},
	{"search", "s"},
}

// pacmanBoolFlags are pacman options pacpak does not interpret but must
// know about, so that the argument after them is not taken as their value.
var pacmanBoolFlags = []operation{
	{"quiet", "q"},
	{"refresh", "y"},
	{"sysupgrade", "u"},
	{"deps", "d"},
	{"explicit", "e"},
	{"foreign", "m"},
	{"native", "n"},
	{"unrequired", "t"},
	{"check", "k"},
	{"clean", "c"},
	{"groups", "g"},
	{"needed", ""},
	{"noconfirm", ""},
	{"confirm", ""},
	{"asdeps", ""},
	{"asexplicit", ""},
	{"noprogressbar", ""},
	{"verbose", "v"},
}

// ownFlags are consumed by pacpak and never forwarded to pacman. The value
// reports whether the flag takes an argument.
var ownFlags = map[string]bool{
	"color":     true,
	"config":    true,
	"log-level": true,
	"debug":     false,
	"no-wrap":   false,
}

func registerFlags(fs *pflag.FlagSet) {
	for _, op := range operations {
		fs.BoolP(op.long, op.short, false, "pacman operation -"+op.short)
	}
	for _, m := range modifiers {
		fs.BoolP(m.long, m.short, false, "")
	}
	for _, f := range pacmanBoolFlags {
		fs.BoolP(f.long, f.short, false, "")
		fs.MarkHidden(f.long)
	}
	for _, m := range modifiers {
		fs.MarkHidden(m.long)
	}

	fs.String("color", "auto", "colorize the output (auto, always, never)")
	fs.String("config", "", "config file (default $XDG_CONFIG_HOME/pacpak/config.yaml)")
	fs.String("log-level", "", "set the logging level [trace, debug, info, warn, error]")
	fs.Bool("debug", false, "debug mode")
	fs.Bool("no-wrap", false, "answer from flatpak only, without running pacman")
}

// forwardArgs strips pacpak's own flags from the user's argv. Everything
// else reaches pacman unchanged.
func forwardArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if !strings.HasPrefix(arg, "--") {
			out = append(out, arg)
			continue
		}
		name, _, hasValue := strings.Cut(arg[2:], "=")
		takesValue, own := ownFlags[name]
		if !own {
			out = append(out, arg)
			continue
		}
		if takesValue && !hasValue {
			i++
		}
	}
	return out
}

// classify maps the parsed operation flags onto a routing decision. More
// than one operation, or none, is left for pacman to reject.
func classify(fs *pflag.FlagSet) router.Op {
	set := func(name string) bool {
		v, _ := fs.GetBool(name)
		return v
	}

	var ops []string
	for _, op := range operations {
		if set(op.long) {
			ops = append(ops, op.long)
		}
	}
	if len(ops) != 1 {
		return router.OpPassthrough
	}

	switch ops[0] {
	case "version":
		return router.OpVersion
	case "query":
		switch {
		case set("info"):
			return router.OpInfo
		case set("owns"):
			return router.OpOwns
		case set("list"):
			return router.OpFiles
		case set("search"):
			return router.OpSearchLocal
		default:
			return router.OpList
		}
	case "sync":
		if set("search") {
			return router.OpSearchRemote
		}
	}
	return router.OpPassthrough
}
