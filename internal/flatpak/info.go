package flatpak

import (
	"strings"
	"time"
)

// infoState is the position of the `flatpak info` parser.
type infoState int

const (
	readingFields infoState = iota
	readingDescription
)

// fieldSetter stores one `Key: value` line of `flatpak info` into an App.
type fieldSetter func(app *App, value string)

// infoFields maps every key pacpak understands to its setter. Keys not in the
// table are ignored: flatpak adds fields between releases and none of them
// should break parsing.
var infoFields = map[string]fieldSetter{
	"ID":           func(a *App, v string) { a.ID = v },
	"Arch":         func(a *App, v string) { a.Arch = v },
	"Branch":       func(a *App, v string) { a.Branch = v },
	"Version":      func(a *App, v string) { a.Version = v },
	"License":      func(a *App, v string) { a.License = v },
	"Origin":       func(a *App, v string) { a.Origin = v },
	"Collection":   func(a *App, v string) { a.Collection = v },
	"Installation": func(a *App, v string) { a.Installation = v },
	"Installed":    func(a *App, v string) { a.InstallSize = v },
	"Runtime":      setRuntime,
	"Sdk":          func(a *App, v string) { a.Sdk = v },
	"Commit":       func(a *App, v string) { a.Commit = v },
	"Parent":       func(a *App, v string) { a.Parent = v },
	"Subject":      func(a *App, v string) { a.Subject = v },
	"Date":         func(a *App, v string) { a.BuildDate = FormatBuildDate(v) },
}

func setRuntime(a *App, v string) {
	a.Runtime = v
	if v == "" {
		return
	}
	dep := DependsPrefix + v
	if a.Depends == "" {
		a.Depends = dep
	} else {
		a.Depends += "  " + dep
	}
}

// ParseInfo fills app from the output of `flatpak info <ref>`.
//
// The block opens with a "Name - summary" header whose summary may continue
// over several lines until a blank line, followed by "Key: value" fields:
//
//	Maps - Find places around the world
//
//	          ID: org.gnome.Maps
//	         Ref: app/org.gnome.Maps/x86_64/stable
//	        Arch: x86_64
//	        Date: 2024-03-08 10:12:41 +0000
//
// Depends and Description are rebuilt from the block on every call.
func ParseInfo(output string, app *App) {
	app.Depends = ""
	app.Description = ""

	state := readingFields
	headerSeen := false

	for _, line := range splitLines(output) {
		if key, value, ok := splitField(line); ok {
			set, known := infoFields[key]
			// Inside the description only a known key ends it.
			if known || state == readingFields {
				if known {
					set(app, value)
				}
				state = readingFields
				continue
			}
		}

		switch state {
		case readingDescription:
			text := strings.TrimSpace(line)
			if text == "" {
				state = readingFields
				continue
			}
			app.Description += "\n" + DescriptionIndent + text

		case readingFields:
			if headerSeen || !strings.Contains(line, "-") {
				continue
			}
			name, summary := splitHeader(line)
			app.Name = name
			app.Description = summary
			headerSeen = true
			state = readingDescription
		}
	}

	if app.Version == "" {
		app.Version = Unknown
	}
	if app.License == "" {
		app.License = Unknown
	}
	app.URL = NotImplemented
	app.Provides = NotImplemented
	app.Packager = NotImplemented
}

// splitField splits a "Key: value" line on its first colon. The key must be
// made of letters and spaces so that a summary such as "Maps - Note: beta"
// is not mistaken for a field.
func splitField(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	if key == "" {
		return "", "", false
	}
	for _, r := range key {
		if r != ' ' && (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return "", "", false
		}
	}
	return key, strings.TrimSpace(line[idx+1:]), true
}

// splitHeader splits "Name - summary". App names may contain hyphens, so the
// spaced separator wins over the first bare hyphen.
func splitHeader(line string) (name, summary string) {
	if idx := strings.Index(line, " - "); idx >= 0 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+3:])
	}
	idx := strings.IndexByte(line, '-')
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
}

// FormatBuildDate converts a `flatpak info` Date value to the pacman display
// layout. Values that do not parse are returned unchanged.
func FormatBuildDate(raw string) string {
	t, err := time.Parse(SourceDateLayout, raw)
	if err != nil {
		return raw
	}
	return t.Local().Format(DisplayDateLayout)
}

// FormatInstallDate renders a modification time in the pacman display layout.
func FormatInstallDate(t time.Time) string {
	return t.Local().Format(DisplayDateLayout)
}
