// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "http://localhost:8080"
  mode: "direct"

relay:
  listen_addr: ":4000"
  prefix: "/gw"

storage:
  path: "/tmp/session-test.db"

logging:
  level: "debug"
  format: "json"

metrics:
  enabled: true
  path: "/metrics"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Mode != "direct" {
		t.Errorf("Mode = %q", cfg.Backend.Mode)
	}
	if cfg.Relay.ListenAddr != ":4000" {
		t.Errorf("ListenAddr = %q", cfg.Relay.ListenAddr)
	}
	if cfg.Relay.Prefix != "/gw" {
		t.Errorf("Prefix = %q", cfg.Relay.Prefix)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "http://localhost:8080"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.Mode != "forwarded" {
		t.Errorf("default Mode = %q, want forwarded", cfg.Backend.Mode)
	}
	if cfg.Relay.ListenAddr != ":3000" {
		t.Errorf("default ListenAddr = %q", cfg.Relay.ListenAddr)
	}
	if cfg.Relay.Prefix != "/api" {
		t.Errorf("default Prefix = %q", cfg.Relay.Prefix)
	}
	if cfg.Backend.RelayURL != "http://localhost:3000" {
		t.Errorf("default RelayURL = %q", cfg.Backend.RelayURL)
	}
	if cfg.Storage.Path == "" {
		t.Error("default Storage.Path is empty")
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("default Metrics.Path = %q", cfg.Metrics.Path)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_BACKEND_URL", "http://backend.internal:9090")

	path := writeConfig(t, `
backend:
  base_url: "${TEST_BACKEND_URL}"
  mode: "direct"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.BaseURL != "http://backend.internal:9090" {
		t.Errorf("BaseURL = %q, env var not expanded", cfg.Backend.BaseURL)
	}
}

func TestLoad_MissingBaseURL(t *testing.T) {
	path := writeConfig(t, `
backend:
  mode: "direct"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "base_url") {
		t.Errorf("Load() error = %v, want base_url validation failure", err)
	}
}

func TestLoad_InvalidMode(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "http://localhost:8080"
  mode: "tunnel"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "mode") {
		t.Errorf("Load() error = %v, want mode validation failure", err)
	}
}

func TestLoad_InvalidPrefix(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "http://localhost:8080"
relay:
  prefix: "api"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "prefix") {
		t.Errorf("Load() error = %v, want prefix validation failure", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("Load() should fail for a missing file")
	}
}
