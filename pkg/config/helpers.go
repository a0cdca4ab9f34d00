package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Find searches for testproject.yaml starting at path and walking up the
// directory tree.
func Find(path string) (string, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	for {
		candidate := filepath.Join(dir, DefaultConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found from %s", DefaultConfigFileName, path)
		}
		dir = parent
	}
}
