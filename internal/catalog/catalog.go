// Package catalog answers pacman-style queries about installed flatpak apps.
//
// A Catalog keeps the app snapshot in a store and fills in record fields on
// demand, running each flatpak command no more often than needed:
//
//   - the full `flatpak list` table is fetched at most once per Catalog
//   - `flatpak info` and `flatpak info --show-location` run at most once per
//     record unless the caller forces a refresh
//
// Example usage:
//
//	st, err := store.New()
//	if err != nil {
//		return err
//	}
//	defer st.Close()
//
//	cat := catalog.New(flatpak.NewClient(runner.Exec{}, ""), st)
//	if _, err := cat.Refresh(); err != nil {
//		return err
//	}
//	refs, err := cat.Search([]string{"maps"}, catalog.ScopeBasic)
package catalog

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/pacpak/internal/flatpak"
	"github.com/blackwell-systems/pacpak/internal/store"
)

// Source produces raw flatpak CLI output. *flatpak.Client implements it.
type Source interface {
	ListShort() (string, error)
	ListFull() (string, error)
	Info(extid string) (string, error)
	Location(extid string) (string, error)
	Search(terms []string) (string, error)
}

var _ Source = (*flatpak.Client)(nil)

// Group names a set of record fields that are fetched together.
type Group int

const (
	// GroupList is Name and Version from the full app list.
	GroupList Group = iota
	// GroupDetails is everything `flatpak info` reports, plus location and
	// install date.
	GroupDetails
	// GroupLocation is the install path only.
	GroupLocation
)

func (g Group) String() string {
	switch g {
	case GroupList:
		return "list"
	case GroupDetails:
		return "details"
	case GroupLocation:
		return "location"
	default:
		return fmt.Sprintf("group(%d)", int(g))
	}
}

// Catalog is the hydration controller over a store.
type Catalog struct {
	source  Source
	store   *store.Store
	matcher flatpak.LineMatcher

	listFull      string
	listFullState flatpak.Hydration
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLineMatcher sets how apps are located in the full list.
func WithLineMatcher(m flatpak.LineMatcher) Option {
	return func(c *Catalog) {
		if m != nil {
			c.matcher = m
		}
	}
}

// New creates a Catalog over st.
func New(src Source, st *store.Store, opts ...Option) *Catalog {
	c := &Catalog{
		source:  src,
		store:   st,
		matcher: flatpak.SubstringMatch,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the underlying record store.
func (c *Catalog) Store() *store.Store {
	return c.store
}

// Refresh rebuilds the snapshot from `flatpak list`. Every Ref obtained
// before the call is invalidated. It returns the number of apps found.
func (c *Catalog) Refresh() (int, error) {
	out, err := c.source.ListShort()
	if err != nil {
		return 0, err
	}
	apps := flatpak.ParseShortList(out)
	if err := c.store.Replace(apps); err != nil {
		return 0, fmt.Errorf("failed to store app list: %w", err)
	}
	logrus.WithField("apps", len(apps)).Debug("flatpak app list refreshed")
	return len(apps), nil
}

// Get returns the record behind ref without hydrating anything.
func (c *Catalog) Get(ref store.Ref) (*flatpak.App, error) {
	return c.store.Get(ref)
}

// Hydrate makes sure the fields of group are loaded for ref and returns the
// record. With force the group is fetched again even if already loaded;
// the full list itself is still reused.
func (c *Catalog) Hydrate(ref store.Ref, group Group, force bool) (*flatpak.App, error) {
	app, err := c.store.Get(ref)
	if err != nil {
		return nil, err
	}

	switch group {
	case GroupList:
		if app.ListState.Done() && !force {
			return app, nil
		}
		if err := c.hydrateList(app); err != nil {
			return nil, err
		}
	case GroupDetails:
		if app.InfoState.Done() && !force {
			return app, nil
		}
		if err := c.hydrateDetails(app, force); err != nil {
			return nil, err
		}
	case GroupLocation:
		if app.LocationState.Done() && !force {
			return app, nil
		}
		if err := c.hydrateLocation(app); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown field group %v", group)
	}

	if err := c.store.Update(ref, app); err != nil {
		return nil, err
	}
	return app, nil
}

// fullList returns the cached full listing, fetching it on first use.
func (c *Catalog) fullList() (string, error) {
	if c.listFullState.Done() {
		return c.listFull, nil
	}
	out, err := c.source.ListFull()
	if err != nil {
		return "", err
	}
	c.listFull = out
	c.listFullState = flatpak.Fetched
	if out == "" {
		c.listFullState = flatpak.FetchedEmpty
	}
	return out, nil
}

func (c *Catalog) hydrateList(app *flatpak.App) error {
	listFull, err := c.fullList()
	if err != nil {
		return err
	}
	if flatpak.LookupFullList(listFull, app, c.matcher) {
		app.ListState = flatpak.Fetched
	} else {
		app.ListState = flatpak.FetchedEmpty
	}
	return nil
}

func (c *Catalog) hydrateDetails(app *flatpak.App, force bool) error {
	extid := app.ExtendedID()
	out, err := c.source.Info(extid)
	if err != nil {
		return err
	}
	flatpak.ParseInfo(out, app)

	// Look the location up by the ref we were asked about, not by whatever
	// id/arch/branch the info block reported.
	if !app.LocationState.Done() || force {
		if err := c.hydrateLocationFor(app, extid); err != nil {
			return err
		}
	}
	if app.Location != "" {
		fi, err := os.Stat(app.Location)
		if err != nil {
			return fmt.Errorf("failed to read install location of %s: %w", extid, err)
		}
		app.InstallDate = flatpak.FormatInstallDate(fi.ModTime())
	}
	app.InfoState = flatpak.Fetched
	return nil
}

func (c *Catalog) hydrateLocation(app *flatpak.App) error {
	return c.hydrateLocationFor(app, app.ExtendedID())
}

func (c *Catalog) hydrateLocationFor(app *flatpak.App, extid string) error {
	location, err := c.source.Location(extid)
	if err != nil {
		return err
	}
	app.Location = location
	app.LocationState = flatpak.Fetched
	if location == "" {
		app.LocationState = flatpak.FetchedEmpty
	}
	return nil
}
