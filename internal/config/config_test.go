package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage != "sqlite" {
		t.Errorf("storage = %q, want sqlite", cfg.Storage)
	}
	if cfg.SweepCron != "@every 30s" {
		t.Errorf("sweep = %q", cfg.SweepCron)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Errorf("perms = %v, want 0600", fi.Mode().Perm())
	}
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := []byte("listen: \"0.0.0.0:9000\"\nstorage: \"bogus\"\n")
	if err := os.WriteFile(path, partial, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9000" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Storage != "sqlite" {
		t.Errorf("unknown storage should normalize to sqlite, got %q", cfg.Storage)
	}
	if cfg.SweepToleranceSeconds != 60 {
		t.Errorf("tolerance = %d, want 60", cfg.SweepToleranceSeconds)
	}
	if cfg.BaseURL != "http://0.0.0.0:9000" {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("timezone: \"Mars/Olympus\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.CurrentUser = "rodrigo"
	cfg.VAPID.PublicKey = "pub"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.CurrentUser != "rodrigo" {
		t.Errorf("current user = %q", got.CurrentUser)
	}
	if got.VAPID.PublicKey != "pub" {
		t.Errorf("vapid public key = %q", got.VAPID.PublicKey)
	}
}
