package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExecutableDir returns the directory holding the running binary, falling
// back to the working directory (e.g. under `go run`).
func ExecutableDir() string {
	if exe, err := os.Executable(); err == nil && exe != "" {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil && wd != "" {
		return wd
	}
	return "."
}

// ResolveRuntimePath makes relative runtime directories absolute against the
// executable directory. An empty raw value selects fallbackSubdir.
func ResolveRuntimePath(raw, fallbackSubdir string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = fallbackSubdir
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(ExecutableDir(), target)
}
