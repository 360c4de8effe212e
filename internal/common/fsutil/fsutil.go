// Package fsutil resolves the paths hubd reads its configuration from.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigNames are the file names FindConfig looks for, in order.
var ConfigNames = []string{"hubd.yaml", "hubd.yml", "hubd.toml", "hubd.json"}

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists reports whether path exists. Errors other than not-exist count
// as existing so the caller surfaces them when reading.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// FindConfig returns the first ConfigNames entry present in one of dirs.
// Dirs may start with '~'.
func FindConfig(dirs ...string) (string, bool) {
	for _, dir := range dirs {
		dir, err := ExpandHome(dir)
		if err != nil || dir == "" {
			continue
		}
		for _, name := range ConfigNames {
			if p := filepath.Join(dir, name); PathExists(p) {
				return p, true
			}
		}
	}
	return "", false
}
