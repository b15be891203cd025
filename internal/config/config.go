// Package config loads pardiff settings from the XDG config file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/metcalfc/pardiff/internal/diff"
	"github.com/metcalfc/pardiff/internal/subst"
)

const (
	configFileName = "config.yaml"
	envPrefix      = "PARDIFF_"
)

// ErrInvalidCiteFallback is returned for a cite_fallback other than raw or drop.
var ErrInvalidCiteFallback = errors.New("invalid cite_fallback")

// ErrInvalidColor is returned for a color mode other than auto, always or never.
var ErrInvalidColor = errors.New("invalid color mode")

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds user settings. Zero values mean "use the default".
type Config struct {
	Lines        bool   `yaml:"lines"`
	KeepLatex    bool   `yaml:"keep_latex"`
	CiteFallback string `yaml:"cite_fallback"`
	Color        string `yaml:"color"`
	LogLevel     string `yaml:"log_level"`
	AddMarker    string `yaml:"add_marker"`
	RemMarker    string `yaml:"rem_marker"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		CiteFallback: subst.CiteFallbackRaw.String(),
		Color:        ColorAuto,
		LogLevel:     "warn",
		AddMarker:    diff.DefaultMarkers.AddOpen + "%s" + diff.DefaultMarkers.AddClose,
		RemMarker:    diff.DefaultMarkers.RemOpen + "%s" + diff.DefaultMarkers.RemClose,
	}
}

// Load returns defaults overlaid with the config file (if any) and then the
// environment. A .env file in the working directory is read first. The result
// is not validated; callers apply their own overrides and then call Validate.
func Load() (Config, error) {
	cfg := Default()
	if err := cfg.loadFile(Path()); err != nil {
		return cfg, err
	}

	_ = godotenv.Load() // optional
	cfg.applyEnv(os.Getenv)

	return cfg, nil
}

// Path returns XDG_CONFIG_HOME/pardiff/config.yaml or
// ~/.config/pardiff/config.yaml.
func Path() string {
	return filepath.Join(getConfigDir(), configFileName)
}

func getConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pardiff")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pardiff")
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	boolVar := func(name string, dst *bool) {
		if v := getenv(envPrefix + name); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	stringVar := func(name string, dst *string) {
		if v := getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}

	boolVar("LINES", &c.Lines)
	boolVar("KEEP_LATEX", &c.KeepLatex)
	stringVar("CITE_FALLBACK", &c.CiteFallback)
	stringVar("COLOR", &c.Color)
	stringVar("LOG_LEVEL", &c.LogLevel)
	stringVar("ADD_MARKER", &c.AddMarker)
	stringVar("REM_MARKER", &c.RemMarker)
}

// Validate checks enumerated settings and marker templates.
func (c Config) Validate() error {
	if _, err := subst.ParseCiteFallback(c.CiteFallback); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCiteFallback, c.CiteFallback)
	}
	switch strings.ToLower(c.Color) {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidColor, c.Color)
	}
	if _, err := c.Markers(); err != nil {
		return err
	}
	return nil
}

// CiteFallbackMode returns the parsed cite fallback.
func (c Config) CiteFallbackMode() subst.CiteFallback {
	f, _ := subst.ParseCiteFallback(c.CiteFallback)
	return f
}

// Markers splits the add and remove templates on their %s placeholder.
func (c Config) Markers() (diff.Markers, error) {
	addOpen, addClose, ok := strings.Cut(c.AddMarker, "%s")
	if !ok {
		return diff.Markers{}, fmt.Errorf("add_marker %q has no %%s placeholder", c.AddMarker)
	}
	remOpen, remClose, ok := strings.Cut(c.RemMarker, "%s")
	if !ok {
		return diff.Markers{}, fmt.Errorf("rem_marker %q has no %%s placeholder", c.RemMarker)
	}
	return diff.Markers{
		AddOpen:  addOpen,
		AddClose: addClose,
		RemOpen:  remOpen,
		RemClose: remClose,
	}, nil
}
