package main

import (
	"os"
	"path/filepath"
)

// dataFilePath returns a path under the user's per-user Auralis config
// directory (spec.md §6: "Both live under a per-user config directory"),
// creating the directory if needed.
func dataFilePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dir := filepath.Join(home, ".auralis")
	_ = os.MkdirAll(dir, 0o755)
	return filepath.Join(dir, name)
}
