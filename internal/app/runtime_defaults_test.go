package app

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestApplyRuntimeDefaultsFillsKnownHostsWhenStrict(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	cfg := &Config{}
	cfg.Session.Username = "deploy"
	cfg.Session.StrictHostKey = true

	generated, err := ApplyRuntimeDefaults(cfg)
	if err != nil {
		t.Fatalf("ApplyRuntimeDefaults returned error: %v", err)
	}

	want := filepath.Join("/home/tester", ".ssh", "known_hosts")
	if cfg.Session.KnownHostsPath != want {
		t.Fatalf("expected %q, got %q", want, cfg.Session.KnownHostsPath)
	}
	if !generated["session.known_hosts_path"] {
		t.Fatalf("expected generated map to include known_hosts_path: %#v", generated)
	}
	if generated["session.username"] {
		t.Fatalf("username was set and must not be replaced: %#v", generated)
	}
}

func TestApplyRuntimeDefaultsPreservesExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Session.Username = "deploy"
	cfg.Session.KnownHostsPath = "/etc/ssh/known_hosts"
	cfg.Session.StrictHostKey = true

	generated, err := ApplyRuntimeDefaults(cfg)
	if err != nil {
		t.Fatalf("ApplyRuntimeDefaults returned error: %v", err)
	}

	if len(generated) != 0 {
		t.Fatalf("expected no keys generated, got %#v", generated)
	}
	if cfg.Session.KnownHostsPath != "/etc/ssh/known_hosts" {
		t.Fatalf("known_hosts path changed to %q", cfg.Session.KnownHostsPath)
	}
}

func TestApplyRuntimeDefaultsLeavesKnownHostsUnsetWhenLenient(t *testing.T) {
	cfg := &Config{}
	cfg.Session.Username = "deploy"

	if _, err := ApplyRuntimeDefaults(cfg); err != nil {
		t.Fatalf("ApplyRuntimeDefaults returned error: %v", err)
	}
	if cfg.Session.KnownHostsPath != "" {
		t.Fatalf("expected no known_hosts path, got %q", cfg.Session.KnownHostsPath)
	}
}

func TestApplyRuntimeDefaultsNilConfig(t *testing.T) {
	_, err := ApplyRuntimeDefaults(nil)
	if err == nil || !strings.Contains(err.Error(), "config is nil") {
		t.Fatalf("expected nil config error, got %v", err)
	}
}
