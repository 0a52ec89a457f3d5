package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	termsnap "github.com/danielgatis/go-termsnap"
)

// Config is the termsnap config file.
type Config struct {
	LogLevel    string       `toml:"log_level"`
	OutputDir   string       `toml:"output_dir"`
	SettingsDir string       `toml:"settings_dir"`
	Render      RenderConfig `toml:"render"`
}

// RenderConfig holds defaults for the render flags. Unset fields leave the
// stored or built-in settings alone.
type RenderConfig struct {
	Theme       string  `toml:"theme"`
	Background  string  `toml:"background"`
	Font        string  `toml:"font"`
	FontFile    string  `toml:"font_file"`
	Chrome      string  `toml:"chrome"`
	Title       string  `toml:"title"`
	Orientation string  `toml:"orientation"`
	Shell       string  `toml:"shell"`
	Highlight   *bool   `toml:"highlight"`
	DropShadow  *bool   `toml:"drop_shadow"`
	Transparent *bool   `toml:"transparent"`
	Scale       float64 `toml:"scale"`

	// Padding is keyed by orientation.
	Padding map[string]termsnap.PaddingConfig `toml:"padding"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/termsnap/config.toml or the
// platform equivalent.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "termsnap", "config.toml"), nil
}

// LoadConfig reads the config at path. An empty path means the default
// location, which may be missing.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return Config{}, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates TOML config data. Unknown keys are errors.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Render.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (r RenderConfig) validate() error {
	if err := validChrome(r.Chrome); err != nil {
		return err
	}
	if err := validOrientation(r.Orientation); err != nil {
		return err
	}
	if err := validShell(r.Shell); err != nil {
		return err
	}
	for o := range r.Padding {
		if err := validOrientation(o); err != nil {
			return fmt.Errorf("padding: %w", err)
		}
	}
	if r.Scale < 0 {
		return fmt.Errorf("scale must be positive, got %v", r.Scale)
	}
	return nil
}

// apply overwrites the settings fields this config sets.
func (r RenderConfig) apply(s *termsnap.Settings) {
	if r.Theme != "" {
		s.ThemeName = r.Theme
	}
	if r.Background != "" {
		s.BackgroundID = r.Background
	}
	if r.Font != "" {
		s.FontID = r.Font
	}
	if r.Chrome != "" {
		s.OSChrome = termsnap.OSChrome(r.Chrome)
	}
	if r.Title != "" {
		s.WindowTitle = r.Title
	}
	if r.Orientation != "" {
		s.Orientation = termsnap.Orientation(r.Orientation)
	}
	if r.Shell != "" {
		s.ShellType = termsnap.ShellType(r.Shell)
	}
	if r.Highlight != nil {
		s.Highlight = *r.Highlight
	}
	if r.DropShadow != nil {
		s.DropShadow = *r.DropShadow
	}
	if r.Transparent != nil {
		s.Transparent = *r.Transparent
	}
	for o, pc := range r.Padding {
		s.Padding = s.Padding.With(termsnap.Orientation(o), pc)
	}
}

func validChrome(v string) error {
	switch termsnap.OSChrome(v) {
	case "", termsnap.ChromeMacOS, termsnap.ChromeWindows, termsnap.ChromeLinux, termsnap.ChromeNone:
		return nil
	}
	return fmt.Errorf("unknown chrome %q (want macos, windows, linux or none)", v)
}

func validOrientation(v string) error {
	switch termsnap.Orientation(v) {
	case "", termsnap.OrientationLandscape, termsnap.OrientationPortrait:
		return nil
	}
	return fmt.Errorf("unknown orientation %q (want landscape or portrait)", v)
}

func validShell(v string) error {
	if v == "" || termsnap.ShellType(v).Valid() {
		return nil
	}
	return fmt.Errorf("unknown shell %q (want bash, zsh, powershell or auto)", v)
}
