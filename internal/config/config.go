// Package config loads and saves the application's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// VAPIDConfig holds the Web Push signing key pair.
type VAPIDConfig struct {
	PublicKey  string `yaml:"public_key" json:"public_key"`
	PrivateKey string `yaml:"private_key" json:"private_key"`
	// Subscriber is the contact claim sent to the push service,
	// usually a mailto: address.
	Subscriber string `yaml:"subscriber" json:"subscriber"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API and WebSocket.
	Listen string `yaml:"listen" json:"listen"`

	// DataDir holds the document store, backups, and exported calendars.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// Storage selects the persistence backend: "sqlite" or "diskv".
	Storage string `yaml:"storage" json:"storage"`

	// Timezone is the IANA timezone event instants are interpreted in
	// (e.g. "America/Sao_Paulo").
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// SweepCron is the schedule of the reminder recovery sweep
	// (e.g. "@every 30s").
	SweepCron string `yaml:"sweep" json:"sweep"`

	// SweepToleranceSeconds is how far a notification time may lie from
	// a sweep tick and still fire.
	SweepToleranceSeconds int `yaml:"sweep_tolerance_seconds" json:"sweep_tolerance_seconds"`

	// CurrentUser names the device owner; event creation and attendance
	// are recorded under it.
	CurrentUser string `yaml:"current_user" json:"current_user"`

	// BaseURL is the externally reachable URL used in notification deep
	// links.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// VAPID is the Web Push key pair. Empty keys disable push delivery.
	VAPID VAPIDConfig `yaml:"vapid" json:"vapid"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:                "127.0.0.1:8765",
		DataDir:               "data",
		Storage:               "sqlite",
		Timezone:              "America/Sao_Paulo",
		LogLevel:              "info",
		SweepCron:             "@every 30s",
		SweepToleranceSeconds: 60,
		CurrentUser:           "me",
		BaseURL:               "http://127.0.0.1:8765",
	}
}

// Normalize fills in missing/zero values so partially-filled configs
// still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	switch c.Storage {
	case "sqlite", "diskv":
	default:
		c.Storage = def.Storage
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = def.LogLevel
	}
	if c.SweepCron == "" {
		c.SweepCron = def.SweepCron
	}
	if c.SweepToleranceSeconds <= 0 {
		c.SweepToleranceSeconds = def.SweepToleranceSeconds
	}
	if c.CurrentUser == "" {
		c.CurrentUser = def.CurrentUser
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://" + c.Listen
	}
}

// Validate rejects values Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Load reads configuration from the given YAML path. A missing file is a
// first run: a default config is written with 0600 perms and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with
// 0600 permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".agenda-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
