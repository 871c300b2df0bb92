package app

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ApplyRuntimeDefaults fills settings that depend on the environment rather
// than on static defaults. It returns the keys that were filled so callers can
// log them.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	generated := make(map[string]bool)

	if strings.TrimSpace(cfg.Session.Username) == "" {
		if name := currentUsername(); name != "" {
			cfg.Session.Username = name
			generated["session.username"] = true
		}
	}

	if cfg.Session.StrictHostKey && strings.TrimSpace(cfg.Session.KnownHostsPath) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve known_hosts path: %w", err)
		}
		cfg.Session.KnownHostsPath = filepath.Join(home, ".ssh", "known_hosts")
		generated["session.known_hosts_path"] = true
	} else if cfg.Session.KnownHostsPath != "" {
		expanded, err := ExpandHome(cfg.Session.KnownHostsPath)
		if err != nil {
			return nil, err
		}
		cfg.Session.KnownHostsPath = expanded
	}

	return generated, nil
}

func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return strings.TrimSpace(os.Getenv("USER"))
}
