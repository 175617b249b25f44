package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
host = "10.0.0.1"
port = 27020
password = "hunter2"
cluster_ports = [27021, 27022]
timeout = "30s"
max_frame_size = 8192
verbose = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig returned error: %v", err)
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig returned error: %v", err)
	}

	if cfg.Host != "10.0.0.1" || cfg.Port != 27020 || cfg.Password != "hunter2" {
		t.Fatalf("unexpected connection config %+v", cfg)
	}
	if len(cfg.ClusterPorts) != 2 || cfg.ClusterPorts[0] != 27021 {
		t.Fatalf("unexpected cluster ports %v", cfg.ClusterPorts)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxFrameSize != 8192 {
		t.Fatalf("MaxFrameSize = %d, want 8192", cfg.MaxFrameSize)
	}
	if !cfg.Verbose {
		t.Fatal("Verbose not applied")
	}
	// Untouched fields keep their defaults.
	if cfg.SaveCommand != "saveworld" || cfg.ShutdownCommand != "doexit" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestApplyFileConfigRespectsChangedFlags(t *testing.T) {
	fc := FileConfig{Host: "file-host", Port: 1111}
	cfg := DefaultConfig()
	cfg.Host = "flag-host"
	cfg.Port = 2222

	changed := map[string]bool{"host": true, "port": true}
	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig returned error: %v", err)
	}

	if cfg.Host != "flag-host" || cfg.Port != 2222 {
		t.Fatalf("explicit flags overridden by file: %+v", cfg)
	}
}

func TestLoadFileConfigBadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("host = [broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFileConfig(path); err == nil {
		t.Fatal("LoadFileConfig expected error for invalid TOML")
	}
}

func TestLoadFileConfigMissing(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("LoadFileConfig expected error for missing file")
	}
}
