package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandPath resolves environment variables and a leading "~/" in configured paths.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}

	expanded := os.ExpandEnv(trimmed)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := homeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		expanded = filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(expanded, "~"), "/"))
	}

	return filepath.Clean(expanded), nil
}

func homeDir() (string, error) {
	candidates := []func() string{
		func() string { h, _ := os.UserHomeDir(); return h },
		func() string {
			if u, err := user.Current(); err == nil {
				return u.HomeDir
			}
			return ""
		},
	}
	for _, candidate := range candidates {
		home := strings.TrimSpace(candidate())
		if home != "" && home != "~" && !strings.HasPrefix(home, "~/") {
			return home, nil
		}
	}
	return "", fmt.Errorf("HOME is not set")
}
