package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Storage.Capacity != 1024 {
		t.Errorf("capacity = %d, want 1024", cfg.Storage.Capacity)
	}
	if got, want := cfg.ListenAddr(), "127.0.0.1:39777"; got != want {
		t.Errorf("ListenAddr = %q, want %q", got, want)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entropymem.yaml")
	body := `
server:
  port: 4242
storage:
  capacity: 64
journal:
  path: /tmp/j.db
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 4242 {
		t.Errorf("port = %d, want 4242", cfg.Server.Port)
	}
	if cfg.Server.Bind != "127.0.0.1" {
		t.Errorf("bind = %q, want default preserved", cfg.Server.Bind)
	}
	if cfg.Storage.Capacity != 64 {
		t.Errorf("capacity = %d, want 64", cfg.Storage.Capacity)
	}
	if cfg.Journal.Path != "/tmp/j.db" {
		t.Errorf("journal path = %q, want /tmp/j.db", cfg.Journal.Path)
	}
}

func TestLoadRejectsTinyCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entropymem.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  capacity: 1\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted capacity 1, want error")
	}
}
