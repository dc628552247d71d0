package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/pacpak/internal/flatpak"
	"github.com/blackwell-systems/pacpak/internal/fstree"
	"github.com/blackwell-systems/pacpak/internal/runner"
	"github.com/blackwell-systems/pacpak/internal/store"
)

// Owner finds the app whose install location contains target. found is
// false when no app owns it.
func (c *Catalog) Owner(target string) (ref store.Ref, app *flatpak.App, found bool, err error) {
	want := canonical(target)

	refs, err := c.store.Refs()
	if err != nil {
		return store.Ref{}, nil, false, err
	}
	for _, r := range refs {
		a, err := c.Hydrate(r, GroupLocation, false)
		if err != nil {
			var launchErr *runner.LaunchError
			if errors.As(err, &launchErr) {
				return store.Ref{}, nil, false, err
			}
			logrus.WithError(err).WithField("ref", r.Pos).Warn("owner lookup: could not load install location")
			continue
		}
		if a.Location == "" {
			continue
		}
		if within(want, canonical(a.Location)) {
			return r, a, true, nil
		}
	}
	return store.Ref{}, nil, false, nil
}

// Files returns the install location of ref and everything below it.
func (c *Catalog) Files(ref store.Ref) ([]string, *flatpak.App, error) {
	app, err := c.Hydrate(ref, GroupLocation, false)
	if err != nil {
		return nil, nil, err
	}
	if app.Location == "" {
		return nil, app, fmt.Errorf("install location of %s is unknown", app.ExtendedID())
	}
	paths, err := fstree.Walk(app.Location)
	if err != nil {
		return nil, app, err
	}
	return paths, app, nil
}

// canonical makes p absolute and resolves symlinks. Paths that do not exist
// are only cleaned.
func canonical(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs
	}
	return resolved
}

// within reports whether path is root or lies below it, compared by whole
// path components.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
