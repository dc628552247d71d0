package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/pacpak/internal/flatpak"
	"github.com/blackwell-systems/pacpak/internal/runner"
	"github.com/blackwell-systems/pacpak/internal/store"
)

const (
	cmdListShort = "flatpak list --columns=application,arch,branch,origin"
	cmdListFull  = "flatpak list --columns=name,application,arch,branch,version,application"
	cmdInfo      = "flatpak info "
	cmdLocation  = "flatpak info --show-location "
)

// fixture wires a Catalog to a scripted flatpak with two installed apps
// whose install locations are real temporary directories.
type fixture struct {
	fake    *runner.Fake
	cat     *Catalog
	mapsDir string
	foxDir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	mapsDir := filepath.Join(root, "app", "org.gnome.Maps", "x86_64", "stable", "active")
	foxDir := filepath.Join(root, "app", "org.mozilla.firefox", "x86_64", "stable", "active")
	for _, dir := range []string{filepath.Join(mapsDir, "files", "bin"), filepath.Join(foxDir, "files")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(mapsDir, "files", "bin", "gnome-maps"), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	f := runner.NewFake()
	f.Set(cmdListShort,
		"org.gnome.Maps\tx86_64\tstable\tflathub\n"+
			"org.mozilla.firefox\tx86_64\tstable\tfedora\n", "", 0)
	f.Set(cmdListFull,
		"Maps\torg.gnome.Maps\tx86_64\tstable\t45.1\torg.gnome.Maps\n"+
			"Firefox\torg.mozilla.firefox\tx86_64\tstable\t121.0\torg.mozilla.firefox\n", "", 0)
	f.Set(cmdInfo+"org.gnome.Maps/x86_64/stable",
		"Maps - Find places around the world\n\nID: org.gnome.Maps\nVersion: 45.1\nOrigin: flathub\nRuntime: org.gnome.Platform/x86_64/45\n", "", 0)
	f.Set(cmdInfo+"org.mozilla.firefox/x86_64/stable",
		"Firefox - Fast, Private & Safe Web Browser\n\nID: org.mozilla.firefox\nLicense: MPL-2.0\n", "", 0)
	f.Set(cmdLocation+"org.gnome.Maps/x86_64/stable", mapsDir+"\n", "", 0)
	f.Set(cmdLocation+"org.mozilla.firefox/x86_64/stable", foxDir+"\n", "", 0)

	st, err := store.New()
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cat := New(flatpak.NewClient(f, ""), st)
	if n, err := cat.Refresh(); err != nil || n != 2 {
		t.Fatalf("Refresh() = %d, %v", n, err)
	}
	return &fixture{fake: f, cat: cat, mapsDir: mapsDir, foxDir: foxDir}
}

func (fx *fixture) ref(t *testing.T, pos int) store.Ref {
	t.Helper()
	return store.Ref{Pos: pos, Gen: fx.cat.Store().Generation()}
}

func TestRefresh_BuildsRecords(t *testing.T) {
	fx := newFixture(t)

	app, err := fx.cat.Get(fx.ref(t, 0))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if app.ExtendedID() != "org.gnome.Maps/x86_64/stable" || app.Origin != "flathub" {
		t.Errorf("record 0 = %+v", app)
	}
	if app.ListState != flatpak.Unfetched || app.InfoState != flatpak.Unfetched {
		t.Errorf("fresh record should be unfetched: %+v", app)
	}
}

func TestRefresh_EndToEndSingleApp(t *testing.T) {
	f := runner.NewFake()
	f.Set(cmdListShort, "org.app\tx86_64\tstable\tflathub\n", "", 0)
	st, err := store.New()
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	cat := New(flatpak.NewClient(f, ""), st)
	n, err := cat.Refresh()
	if err != nil || n != 1 {
		t.Fatalf("Refresh() = %d, %v", n, err)
	}
	app, err := cat.Get(store.Ref{Pos: 0, Gen: st.Generation()})
	if err != nil {
		t.Fatal(err)
	}
	if app.ExtendedID() != "org.app/x86_64/stable" {
		t.Errorf("ExtendedID() = %q", app.ExtendedID())
	}
	if app.Origin != "flathub" {
		t.Errorf("Origin = %q", app.Origin)
	}
}

func TestRefresh_FailurePropagates(t *testing.T) {
	f := runner.NewFake()
	f.Set(cmdListShort, "", "error: cannot open installation\n", 1)
	st, err := store.New()
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	_, err = New(flatpak.NewClient(f, ""), st).Refresh()
	if err == nil || !strings.Contains(err.Error(), "cannot open installation") {
		t.Errorf("Refresh() error = %v, want flatpak stderr in message", err)
	}
}

func TestHydrate_FullListFetchedOnce(t *testing.T) {
	fx := newFixture(t)

	for i := 0; i < 2; i++ {
		app, err := fx.cat.Hydrate(fx.ref(t, 0), GroupList, false)
		if err != nil {
			t.Fatalf("Hydrate() error = %v", err)
		}
		if app.Name != "Maps" || app.Version != "45.1" {
			t.Errorf("list fields = %q %q", app.Name, app.Version)
		}
	}
	if _, err := fx.cat.Hydrate(fx.ref(t, 1), GroupList, false); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	// Forcing re-runs the lookup but reuses the cached listing.
	if _, err := fx.cat.Hydrate(fx.ref(t, 0), GroupList, true); err != nil {
		t.Fatalf("Hydrate(force) error = %v", err)
	}

	if got := fx.fake.Count(cmdListFull); got != 1 {
		t.Errorf("full list invoked %d times, want 1", got)
	}
}

func TestHydrate_ListMissIsRemembered(t *testing.T) {
	fx := newFixture(t)
	fx.fake.Set(cmdListFull, "Other\torg.other\tx86_64\tstable\t1\torg.other\n", "", 0)

	app, err := fx.cat.Hydrate(fx.ref(t, 0), GroupList, false)
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if app.ListState != flatpak.FetchedEmpty {
		t.Errorf("ListState = %v, want fetched-empty", app.ListState)
	}
	if app.Name != "" {
		t.Errorf("Name = %q, want untouched", app.Name)
	}
}

func TestHydrate_DetailsOncePerRecord(t *testing.T) {
	fx := newFixture(t)
	ref := fx.ref(t, 0)

	app, err := fx.cat.Hydrate(ref, GroupDetails, false)
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if _, err := fx.cat.Hydrate(ref, GroupDetails, false); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}

	if got := fx.fake.Count(cmdInfo + "org.gnome.Maps/x86_64/stable"); got != 1 {
		t.Errorf("info invoked %d times, want 1", got)
	}
	if got := fx.fake.Count(cmdLocation + "org.gnome.Maps/x86_64/stable"); got != 1 {
		t.Errorf("location invoked %d times, want 1", got)
	}

	if app.Name != "Maps" || app.Description != "Find places around the world" {
		t.Errorf("header = %q / %q", app.Name, app.Description)
	}
	if app.License != flatpak.Unknown {
		t.Errorf("License = %q, want %q", app.License, flatpak.Unknown)
	}
	if app.Depends != "flatpak org.gnome.Platform/x86_64/45" {
		t.Errorf("Depends = %q", app.Depends)
	}
	if app.Location != fx.mapsDir {
		t.Errorf("Location = %q, want %q", app.Location, fx.mapsDir)
	}
	fi, _ := os.Stat(fx.mapsDir)
	if want := flatpak.FormatInstallDate(fi.ModTime()); app.InstallDate != want {
		t.Errorf("InstallDate = %q, want %q", app.InstallDate, want)
	}

	stored, _ := fx.cat.Get(ref)
	if stored.InfoState != flatpak.Fetched || stored.LocationState != flatpak.Fetched {
		t.Errorf("stored states = %v / %v", stored.InfoState, stored.LocationState)
	}
}

func TestHydrate_ForceRefetches(t *testing.T) {
	fx := newFixture(t)
	ref := fx.ref(t, 1)

	for _, force := range []bool{false, true} {
		if _, err := fx.cat.Hydrate(ref, GroupDetails, force); err != nil {
			t.Fatalf("Hydrate(force=%v) error = %v", force, err)
		}
	}
	if got := fx.fake.Count(cmdInfo + "org.mozilla.firefox/x86_64/stable"); got != 2 {
		t.Errorf("info invoked %d times, want 2", got)
	}
}

func TestHydrate_LocationReusedByDetails(t *testing.T) {
	fx := newFixture(t)
	ref := fx.ref(t, 0)

	if _, err := fx.cat.Hydrate(ref, GroupLocation, false); err != nil {
		t.Fatalf("Hydrate(location) error = %v", err)
	}
	if _, err := fx.cat.Hydrate(ref, GroupDetails, false); err != nil {
		t.Fatalf("Hydrate(details) error = %v", err)
	}
	if got := fx.fake.Count(cmdLocation + "org.gnome.Maps/x86_64/stable"); got != 1 {
		t.Errorf("location invoked %d times, want 1", got)
	}
}

func TestHydrate_UnreadableLocationIsHardError(t *testing.T) {
	fx := newFixture(t)
	fx.fake.Set(cmdLocation+"org.gnome.Maps/x86_64/stable", "/nonexistent/pacpak/maps\n", "", 0)

	_, err := fx.cat.Hydrate(fx.ref(t, 0), GroupDetails, false)
	if err == nil {
		t.Fatal("Hydrate() should fail when the install location cannot be read")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want wrapped os.ErrNotExist", err)
	}

	stored, _ := fx.cat.Get(fx.ref(t, 0))
	if stored.InfoState != flatpak.Unfetched {
		t.Errorf("failed hydration should not be stored, InfoState = %v", stored.InfoState)
	}
}

func TestHydrate_StaleRefAfterRefresh(t *testing.T) {
	fx := newFixture(t)
	old := fx.ref(t, 0)
	if _, err := fx.cat.Refresh(); err != nil {
		t.Fatal(err)
	}
	if _, err := fx.cat.Hydrate(old, GroupList, false); !errors.Is(err, store.ErrStaleRef) {
		t.Errorf("Hydrate(stale) error = %v, want ErrStaleRef", err)
	}
}

func TestFiles(t *testing.T) {
	fx := newFixture(t)

	paths, app, err := fx.cat.Files(fx.ref(t, 0))
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}
	if app.ID != "org.gnome.Maps" {
		t.Errorf("app = %q", app.ID)
	}
	if len(paths) == 0 || paths[0] != fx.mapsDir {
		t.Fatalf("paths = %v, want install location first", paths)
	}
	want := filepath.Join(fx.mapsDir, "files", "bin", "gnome-maps")
	found := false
	for _, p := range paths {
		if p == want {
			found = true
		}
	}
	if !found {
		t.Errorf("paths %v missing %s", paths, want)
	}
}

func TestFiles_UnknownLocation(t *testing.T) {
	fx := newFixture(t)
	fx.fake.Set(cmdLocation+"org.gnome.Maps/x86_64/stable", "\n", "", 0)

	_, _, err := fx.cat.Files(fx.ref(t, 0))
	if err == nil || !strings.Contains(err.Error(), "unknown") {
		t.Errorf("Files() error = %v", err)
	}
}
