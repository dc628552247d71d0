package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/blackwell-systems/pacpak/internal/flatpak"
	"github.com/blackwell-systems/pacpak/internal/output"
)

// isolate points the config directory at an empty temp dir and clears any
// PACPAK_* overrides from the caller's environment.
func isolate(t *testing.T) string {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	for _, key := range []string{"WRAP_PACMAN", "COLOR", "PACMAN_PATH", "FLATPAK_PATH", "LOOKUP_MATCH"} {
		t.Setenv(EnvPrefix+"_"+key, "")
		os.Unsetenv(EnvPrefix + "_" + key)
	}
	return filepath.Join(xdg, AppName)
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	assert.NilError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, FileName)
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("pacpak", pflag.ContinueOnError)
	fs.String("color", "auto", "")
	fs.Bool("no-wrap", false, "")
	return fs
}

func TestDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := Dir()
	assert.NilError(t, err)
	assert.Check(t, is.Equal(dir, "/tmp/xdg/pacpak"))

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	assert.NilError(t, err)
	dir, err = Dir()
	assert.NilError(t, err)
	assert.Check(t, is.Equal(dir, filepath.Join(home, ".config", "pacpak")))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	assert.NilError(t, err)
	assert.DeepEqual(t, cfg, Default())
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "wrap_pacman: false\ncolor: never\nlookup_match: exact\nflatpak_path: /usr/local/bin/flatpak\n")

	cfg, err := Load("", nil)
	assert.NilError(t, err)
	assert.Check(t, !cfg.WrapPacman)
	assert.Check(t, is.Equal(cfg.ColorMode(), output.ColorNever))
	assert.Check(t, is.Equal(cfg.LookupMatch, MatchExact))
	assert.Check(t, is.Equal(cfg.FlatpakPath, "/usr/local/bin/flatpak"))
	assert.Check(t, is.Equal(cfg.PacmanPath, "pacman"))
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "missing.yaml")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "color: never\nwrap_pacman: true\n")
	t.Setenv("PACPAK_COLOR", "always")
	t.Setenv("PACPAK_WRAP_PACMAN", "false")

	cfg, err := Load("", nil)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(cfg.Color, "always"))
	assert.Check(t, !cfg.WrapPacman)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "color: never\n")
	t.Setenv("PACPAK_COLOR", "auto")

	fs := testFlags()
	assert.NilError(t, fs.Parse([]string{"--color", "always", "--no-wrap"}))

	cfg, err := Load("", fs)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(cfg.Color, "always"))
	assert.Check(t, !cfg.WrapPacman)
}

func TestLoad_UnsetFlagsDoNotMaskFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "color: never\n")

	fs := testFlags()
	assert.NilError(t, fs.Parse(nil))

	cfg, err := Load("", fs)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(cfg.Color, "never"))
	assert.Check(t, cfg.WrapPacman)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "color", content: "color: rainbow\n", wantErr: "color"},
		{name: "lookup match", content: "lookup_match: fuzzy\n", wantErr: "lookup_match"},
		{name: "empty pacman path", content: "pacman_path: \"\"\n", wantErr: "pacman_path"},
		{name: "malformed yaml", content: "color: [never\n", wantErr: "failed to read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			writeConfig(t, dir, tt.content)

			_, err := Load("", nil)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMatcher(t *testing.T) {
	app := &flatpak.App{ID: "org.gnome.Maps", Arch: "x86_64", Branch: "stable"}
	devel := "Maps\torg.gnome.Maps.Devel\tx86_64\tstable\t46.alpha\torg.gnome.Maps.Devel"

	cfg := Default()
	assert.Check(t, cfg.Matcher()(devel, app), "substring matching accepts a longer id")

	cfg.LookupMatch = MatchExact
	assert.Check(t, !cfg.Matcher()(devel, app), "exact matching compares whole columns")
}
