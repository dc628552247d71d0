package flatpak

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// ParseSearch parses the output of
// `flatpak search --columns=name,application,branch,version,remotes,description,application`.
//
// The returned apps are detached from any store. The "No matches found"
// sentinel yields an empty result. Lines with the wrong column count are
// logged and skipped; the rest of the output is still parsed.
func ParseSearch(output string) []*App {
	if strings.TrimSpace(output) == NoMatchesSentinel {
		return nil
	}

	var apps []*App
	for n, line := range splitLines(output) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		columns := strings.Split(line, "\t")
		if len(columns) != searchColumns {
			logrus.WithFields(logrus.Fields{
				"line":    n + 1,
				"columns": len(columns),
			}).Warn("flatpak search: unexpected column count, skipping line")
			continue
		}
		version := columns[3]
		if version == "" {
			version = Unknown
		}
		apps = append(apps, &App{
			Name:        columns[0],
			ID:          columns[1],
			Branch:      columns[2],
			Version:     version,
			Origin:      columns[4],
			Description: columns[5],
		})
	}
	return apps
}
