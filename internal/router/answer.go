package router

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/pacpak/internal/catalog"
	"github.com/blackwell-systems/pacpak/internal/flatpak"
	"github.com/blackwell-systems/pacpak/internal/runner"
	"github.com/blackwell-systems/pacpak/internal/store"
)

// answer prints the flatpak side of a query and returns how many results it
// printed.
func (r *Router) answer(req Request) (int, error) {
	switch req.Op {
	case OpList:
		return r.answerList(req.Targets)
	case OpInfo:
		return r.answerInfo(req.Targets)
	case OpOwns:
		return r.answerOwns(req.Targets)
	case OpFiles:
		return r.answerFiles(req.Targets)
	case OpSearchLocal:
		return r.answerSearchLocal(req.Targets)
	case OpSearchRemote:
		return r.answerSearchRemote(req.Targets)
	default:
		return 0, fmt.Errorf("no flatpak handler for %v", req.Op)
	}
}

// each hydrates group for every ref and hands the record to fn.
func (r *Router) each(refs []store.Ref, group catalog.Group, fn func(store.Ref, *flatpak.App) error) error {
	for _, ref := range refs {
		app, err := r.cat.Hydrate(ref, group, false)
		if err != nil {
			return err
		}
		if err := fn(ref, app); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) answerList(targets []string) (int, error) {
	refs, err := r.cat.Search(targets, catalog.ScopeBasic)
	if err != nil {
		return 0, err
	}
	err = r.each(refs, catalog.GroupList, func(_ store.Ref, app *flatpak.App) error {
		r.out.Package(app)
		return nil
	})
	return len(refs), err
}

func (r *Router) answerInfo(targets []string) (int, error) {
	refs, err := r.cat.Search(targets, catalog.ScopeBasic)
	if err != nil {
		return 0, err
	}
	err = r.each(refs, catalog.GroupDetails, func(_ store.Ref, app *flatpak.App) error {
		r.out.Info(app)
		return nil
	})
	return len(refs), err
}

func (r *Router) answerOwns(targets []string) (int, error) {
	found := 0
	for _, target := range targets {
		ref, _, ok, err := r.cat.Owner(target)
		if err != nil {
			return found, err
		}
		if !ok {
			continue
		}
		app, err := r.cat.Hydrate(ref, catalog.GroupList, false)
		if err != nil {
			return found, err
		}
		r.out.Owner(target, app)
		found++
	}
	return found, nil
}

func (r *Router) answerFiles(targets []string) (int, error) {
	refs, err := r.cat.Search(targets, catalog.ScopeBasic)
	if err != nil {
		return 0, err
	}
	found := 0
	for _, ref := range refs {
		paths, app, err := r.cat.Files(ref)
		if err != nil {
			var launchErr *runner.LaunchError
			if errors.As(err, &launchErr) {
				return found, err
			}
			logrus.WithError(err).WithField("ref", ref.Pos).Warn("file list: could not read install location")
			continue
		}
		r.out.Files(app, paths, isDir)
		found++
	}
	return found, nil
}

func isDir(path string) bool {
	fi, err := os.Lstat(path)
	return err == nil && fi.IsDir()
}

func (r *Router) answerSearchLocal(targets []string) (int, error) {
	refs, err := r.cat.Search(targets, catalog.ScopeExtended)
	if err != nil {
		return 0, err
	}
	err = r.each(refs, catalog.GroupList, func(_ store.Ref, app *flatpak.App) error {
		r.out.SearchEntry(app, false)
		return nil
	})
	return len(refs), err
}

func (r *Router) answerSearchRemote(targets []string) (int, error) {
	apps, err := r.cat.SearchRemote(targets)
	if err != nil {
		return 0, err
	}
	_, local, err := r.cat.Store().List()
	if err != nil {
		return 0, err
	}
	installed := make(map[string]bool, len(local))
	for _, app := range local {
		installed[app.ID+"/"+app.Branch] = true
	}
	for _, app := range apps {
		r.out.SearchEntry(app, installed[app.ID+"/"+app.Branch])
	}
	return len(apps), nil
}
