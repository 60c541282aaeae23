// Package config reads the defaults file consumed by the CLI shell.
// A single TOML file at the platform-conventional config path supplies
// default model, lead, product, priority, save directory and verbosity;
// it is created with sane defaults on first use. No other persistent
// state exists — the cache filesystem is the only durable store.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config are the CLI defaults. Every field can be overridden by a flag.
type Config struct {
	Model       string   `toml:"model"`
	Product     string   `toml:"product"`
	Lead        int      `toml:"lead"`
	Priority    []string `toml:"priority"`
	SaveDir     string   `toml:"save_dir"`
	Overwrite   bool     `toml:"overwrite"`
	Verbose     bool     `toml:"verbose"`
	TemplateDir string   `toml:"template_dir"`
}

// Default returns the configuration written on first use.
func Default() Config {
	return Config{
		Model:    "hrrr",
		Lead:     0,
		Priority: []string{"aws", "nomads", "google", "azure"},
		SaveDir:  "~/data/gale",
	}
}

// DefaultPath is the platform-conventional config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "gale", "config.toml"), nil
}

// Load reads the config at path, creating it with defaults when it does
// not exist. An empty path means DefaultPath. Path fields are returned
// with $VAR and ~ expansions applied.
func Load(path string) (Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return Config{}, err
		}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if werr := write(path, cfg); werr != nil {
			return Config{}, werr
		}
		cfg.SaveDir = ExpandPath(cfg.SaveDir)
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.SaveDir = ExpandPath(cfg.SaveDir)
	cfg.TemplateDir = ExpandPath(cfg.TemplateDir)
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !os.IsExist(err) {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// ExpandPath resolves a leading ~ and any $VAR environment references.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return os.ExpandEnv(p)
}
