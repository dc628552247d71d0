// Package config loads pacpak's settings.
//
// Values are layered, later sources winning: built-in defaults, the YAML
// file at Dir()/config.yaml, PACPAK_* environment variables, then command
// line flags the user actually set.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/blackwell-systems/pacpak/internal/flatpak"
	"github.com/blackwell-systems/pacpak/internal/output"
)

const (
	// AppName names the config directory.
	AppName = "pacpak"
	// FileName is the config file looked up inside Dir().
	FileName = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. PACPAK_WRAP_PACMAN.
	EnvPrefix = "PACPAK"
)

// Lookup strategies for matching a record to its full-list line.
const (
	MatchSubstring = "substring"
	MatchExact     = "exact"
)

// Config holds the resolved settings.
type Config struct {
	// WrapPacman runs pacman first and only falls back to flatpak.
	WrapPacman  bool   `mapstructure:"wrap_pacman"`
	Color       string `mapstructure:"color"`
	PacmanPath  string `mapstructure:"pacman_path"`
	FlatpakPath string `mapstructure:"flatpak_path"`
	LookupMatch string `mapstructure:"lookup_match"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		WrapPacman:  true,
		Color:       string(output.ColorAuto),
		PacmanPath:  "pacman",
		FlatpakPath: flatpak.DefaultBinary,
		LookupMatch: MatchSubstring,
	}
}

// Dir returns the pacpak config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/pacpak if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName), nil
}

// Load resolves the configuration. file names an explicit config file,
// which must exist; when empty, Dir()/config.yaml is read if present.
// flags may be nil.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("wrap_pacman", def.WrapPacman)
	v.SetDefault("color", def.Color)
	v.SetDefault("pacman_path", def.PacmanPath)
	v.SetDefault("flatpak_path", def.FlatpakPath)
	v.SetDefault("lookup_match", def.LookupMatch)

	if err := readFile(v, file); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(v *viper.Viper, file string) error {
	explicit := file != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			// No home directory: run on defaults.
			return nil
		}
		file = filepath.Join(dir, FileName)
	}

	if _, err := os.Stat(file); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("config file %s: %w", file, err)
	}

	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", file, err)
	}
	return nil
}

// bindFlags applies flags the user set. --no-wrap is an inverted
// wrap_pacman, so it is applied by hand.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if f := flags.Lookup("color"); f != nil {
		if err := v.BindPFlag("color", f); err != nil {
			return fmt.Errorf("failed to bind --color: %w", err)
		}
	}
	if f := flags.Lookup("no-wrap"); f != nil && f.Changed {
		noWrap, err := flags.GetBool("no-wrap")
		if err != nil {
			return err
		}
		v.Set("wrap_pacman", !noWrap)
	}
	return nil
}

// Validate checks enumerated values and required paths.
func (c *Config) Validate() error {
	if _, err := output.ParseColorMode(c.Color); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	switch c.LookupMatch {
	case MatchSubstring, MatchExact:
	default:
		return fmt.Errorf("lookup_match: invalid value %q (want %s or %s)", c.LookupMatch, MatchSubstring, MatchExact)
	}
	if c.PacmanPath == "" {
		return errors.New("pacman_path must not be empty")
	}
	if c.FlatpakPath == "" {
		return errors.New("flatpak_path must not be empty")
	}
	return nil
}

// ColorMode returns the validated color setting.
func (c *Config) ColorMode() output.ColorMode {
	m, err := output.ParseColorMode(c.Color)
	if err != nil {
		return output.ColorAuto
	}
	return m
}

// Matcher returns the full-list line matcher selected by LookupMatch.
func (c *Config) Matcher() flatpak.LineMatcher {
	if c.LookupMatch == MatchExact {
		return flatpak.ExactMatch
	}
	return flatpak.SubstringMatch
}
