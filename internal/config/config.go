package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultEditor is used when the config has no editor set.
const DefaultEditor = "nvim"

// ErrNoHome is returned when the user's home directory cannot be determined.
var ErrNoHome = errors.New("could not determine home directory")

// Config is the flat key/value table stored in config.toml.
type Config struct {
	Editor      string `toml:"editor"`
	Multiplexer string `toml:"multiplexer"`
	Layout      string `toml:"layout,omitempty"`

	// Extra holds keys this version does not know about.
	Extra map[string]string `toml:"-"`

	// Path is where the config was loaded from or written to.
	Path string `toml:"-"`
}

// Defaults returns the config written on first run.
func Defaults(multiplexer string) Config {
	return Config{
		Editor:      DefaultEditor,
		Multiplexer: multiplexer,
	}
}

// Get returns the value for key, including unknown keys.
func (c Config) Get(key string) (string, bool) {
	switch key {
	case "editor":
		return c.Editor, c.Editor != ""
	case "multiplexer":
		return c.Multiplexer, c.Multiplexer != ""
	case "layout":
		return c.Layout, c.Layout != ""
	}
	v, ok := c.Extra[key]
	return v, ok
}

// Path returns ~/.config/<tool>/config.toml.
func Path(tool string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", ErrNoHome
	}
	return filepath.Join(home, ".config", tool, "config.toml"), nil
}

// LoadOrCreate reads the config at path. When the file does not exist the
// defaults are written there and returned. A file that exists but does not
// parse is reported as an error and left untouched.
func LoadOrCreate(path string, defaults Config) (Config, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		cfg, err := Parse(data)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Path = path
		return cfg.withDefaults(defaults), nil
	case errors.Is(err, fs.ErrNotExist):
		if err := Write(path, defaults); err != nil {
			return Config{}, err
		}
		defaults.Path = path
		return defaults, nil
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
}

// Parse decodes a config table. Known keys holding a non-string value are
// left unset so the defaults apply. Other keys are kept in Extra in their
// printed form.
func Parse(data []byte) (Config, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return Config{}, err
	}
	var cfg Config
	for k, v := range raw {
		s, isString := v.(string)
		switch k {
		case "editor":
			cfg.Editor = s
		case "multiplexer":
			cfg.Multiplexer = s
		case "layout":
			cfg.Layout = s
		default:
			if cfg.Extra == nil {
				cfg.Extra = make(map[string]string)
			}
			if !isString {
				s = fmt.Sprint(v)
			}
			cfg.Extra[k] = s
		}
	}
	return cfg, nil
}

// Write encodes cfg to path, creating the parent directory.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (c Config) withDefaults(d Config) Config {
	if c.Editor == "" {
		c.Editor = d.Editor
	}
	if c.Multiplexer == "" {
		c.Multiplexer = d.Multiplexer
	}
	if c.Layout == "" {
		c.Layout = d.Layout
	}
	return c
}
