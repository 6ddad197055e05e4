package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.UI.RefreshIntervalSeconds != 30 {
		t.Errorf("refresh interval = %d", cfg.UI.RefreshIntervalSeconds)
	}
	if cfg.Server.Addr != "127.0.0.1:8497" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Aggregate.RequestTokenScale != 1000 {
		t.Errorf("request token scale = %d", cfg.Aggregate.RequestTokenScale)
	}
}

func TestLoadFrom_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"identity":"a@x.com","server":{"addr":"127.0.0.1:9000"},"aggregate":{"request_token_scale":500}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Identity != "a@x.com" {
		t.Errorf("identity = %q", cfg.Identity)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Aggregate.RequestTokenScale != 500 {
		t.Errorf("request token scale = %d", cfg.Aggregate.RequestTokenScale)
	}
	// Untouched sections keep their defaults.
	if cfg.UI.Theme != "Catppuccin Mocha" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
}

func TestLoadFrom_EnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"identity":"file@x.com"}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PRISM_IDENTITY", "env@x.com")
	t.Setenv("PRISM_REFRESH_INTERVAL_SECONDS", "5")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Identity != "env@x.com" {
		t.Errorf("identity = %q, want env override", cfg.Identity)
	}
	if cfg.UI.RefreshIntervalSeconds != 5 {
		t.Errorf("refresh interval = %d, want env override", cfg.UI.RefreshIntervalSeconds)
	}
}

func TestLoadFrom_CorruptFileFailsWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg.Server.Addr != "127.0.0.1:8497" {
		t.Errorf("fallback addr = %q", cfg.Server.Addr)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	want := DefaultConfig()
	want.Identity = "a@x.com"

	if err := SaveTo(path, want); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Identity != "a@x.com" {
		t.Errorf("identity = %q", got.Identity)
	}
}
