package flatpak

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Column layouts of the list and search commands. They must stay in sync
// with the --columns arguments in client.go.
const (
	shortListColumns = 4 // application,arch,branch,origin
	fullListVersion  = 4 // index of version in name,application,arch,branch,version,application
	searchColumns    = 7 // name,application,branch,version,remotes,description,application
)

// ParseShortList parses the output of
// `flatpak list --columns=application,arch,branch,origin`.
// Lines that do not have exactly four columns (headers, blank trailers) are
// skipped without complaint.
func ParseShortList(output string) []*App {
	var apps []*App
	for _, line := range splitLines(output) {
		columns := strings.Split(line, "\t")
		if len(columns) != shortListColumns {
			continue
		}
		apps = append(apps, &App{
			ID:     columns[0],
			Arch:   columns[1],
			Branch: columns[2],
			Origin: columns[3],
		})
	}
	return apps
}

// LineMatcher decides whether a full-list line describes app.
type LineMatcher func(line string, app *App) bool

// SubstringMatch accepts the first line that contains the app's id, arch and
// branch anywhere in it. This is loose: "org.app" also matches a line for
// "org.app.Plugin". It is the default because it tolerates column drift
// between flatpak versions.
func SubstringMatch(line string, app *App) bool {
	for _, key := range []string{app.ID, app.Arch, app.Branch} {
		if !strings.Contains(line, key) {
			return false
		}
	}
	return true
}

// ExactMatch requires the application, arch and branch columns to equal the
// app's values.
func ExactMatch(line string, app *App) bool {
	columns := strings.Split(line, "\t")
	if len(columns) < 4 {
		return false
	}
	return columns[1] == app.ID && columns[2] == app.Arch && columns[3] == app.Branch
}

// LookupFullList finds app in the output of
// `flatpak list --columns=name,application,arch,branch,version,application`
// and fills in Name and Version. It reports whether a usable line was found.
// A missing or short line is logged and leaves the app untouched.
func LookupFullList(listFull string, app *App, match LineMatcher) bool {
	if match == nil {
		match = SubstringMatch
	}

	for _, line := range splitLines(listFull) {
		if !match(line, app) {
			continue
		}
		columns := strings.Split(line, "\t")
		if len(columns) <= fullListVersion {
			logrus.WithFields(logrus.Fields{
				"app":     app.ExtendedID(),
				"columns": len(columns),
			}).Warn("flatpak list: matching line has too few columns")
			return false
		}
		app.Name = columns[0]
		app.Version = columns[fullListVersion]
		if app.Version == "" {
			app.Version = Unknown
		}
		return true
	}

	logrus.WithField("app", app.ExtendedID()).Warn("flatpak list: app not found in full listing")
	return false
}

// splitLines splits command output into lines, dropping the empty string
// after a trailing newline and any carriage returns.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
