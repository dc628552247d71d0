package catalog

import (
	"errors"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"

	"github.com/blackwell-systems/pacpak/internal/flatpak"
	"github.com/blackwell-systems/pacpak/internal/runner"
	"github.com/blackwell-systems/pacpak/internal/store"
)

// Scope selects the fields a search term is matched against.
type Scope int

const (
	// ScopeBasic matches id and name.
	ScopeBasic Scope = iota
	// ScopeExtended matches id, name, description and origin.
	ScopeExtended
)

func (s Scope) fields(app *flatpak.App) []string {
	if s == ScopeExtended {
		return []string{app.ID, app.Name, app.Description, app.Origin}
	}
	return []string{app.ID, app.Name}
}

// group is the hydration a scope needs before its fields can be trusted.
func (s Scope) group() Group {
	if s == ScopeExtended {
		return GroupDetails
	}
	return GroupList
}

// matchesAll reports whether terms means "no filter".
func matchesAll(terms []string) bool {
	return len(terms) == 0 || terms[0] == ""
}

// Match returns the indices of apps matching any of terms, ascending and
// without duplicates. Matching is a case-insensitive substring test. An
// empty term list, or one whose first term is empty, matches every app.
func Match(apps []*flatpak.App, terms []string, scope Scope) []int {
	if matchesAll(terms) {
		all := make([]int, len(apps))
		for i := range apps {
			all[i] = i
		}
		return all
	}

	fold := cases.Fold()
	folded := make([]string, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		folded = append(folded, fold.String(term))
	}

	hits := make(map[int]struct{})
	for i, app := range apps {
		for _, field := range scope.fields(app) {
			if containsAny(fold.String(field), folded) {
				hits[i] = struct{}{}
				break
			}
		}
	}

	idx := make([]int, 0, len(hits))
	for i := range hits {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// Search returns refs of the apps matching terms within scope. Records that
// lack the scope's fields are hydrated first. A record that fails to hydrate
// is matched on what is already known; a tool that cannot be launched at
// all aborts the search.
func (c *Catalog) Search(terms []string, scope Scope) ([]store.Ref, error) {
	if matchesAll(terms) {
		return c.store.Refs()
	}

	refs, err := c.store.Refs()
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if _, err := c.Hydrate(ref, scope.group(), false); err != nil {
			var launchErr *runner.LaunchError
			if errors.As(err, &launchErr) {
				return nil, err
			}
			logrus.WithError(err).WithField("ref", ref.Pos).Warn("search: could not load app details")
		}
	}

	refs, apps, err := c.store.List()
	if err != nil {
		return nil, err
	}
	var matched []store.Ref
	for _, i := range Match(apps, terms, scope) {
		matched = append(matched, refs[i])
	}
	return matched, nil
}

// SearchRemote runs `flatpak search` over the configured remotes. The
// results are not added to the store. flatpak needs search text, so an
// empty term list yields no results without running it.
func (c *Catalog) SearchRemote(terms []string) ([]*flatpak.App, error) {
	if matchesAll(terms) {
		return nil, nil
	}
	out, err := c.source.Search(terms)
	if err != nil {
		return nil, err
	}
	return flatpak.ParseSearch(out), nil
}
