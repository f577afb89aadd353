package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appDirName = "daybook"

// DefaultDataDir returns the per-user directory daybook keeps its files in.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(homeDir, "AppData", "Roaming", appDirName)
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", appDirName)
	default:
		return filepath.Join(homeDir, ".local", "share", appDirName)
	}
}

// GetDefaultDBPathOnly returns the default journal database path.
func GetDefaultDBPathOnly() string {
	return filepath.Join(DefaultDataDir(), "daybook.db")
}

// GetDefaultPrefsPath returns the default preferences file path.
func GetDefaultPrefsPath() string {
	return filepath.Join(DefaultDataDir(), "preferences.yaml")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory to expand path '%s': %w", path, err)
	}
	return filepath.Join(homeDir, path[2:]), nil
}

// ResolveAndEnsurePath expands and absolutises providedPath, falling back to
// defaultPath when it is empty, and creates the parent directory.
func ResolveAndEnsurePath(providedPath, defaultPath string) (string, error) {
	targetPath := providedPath
	if targetPath == "" {
		targetPath = defaultPath
	}

	targetPath, err := ExpandHome(targetPath)
	if err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", targetPath, err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}
	return absPath, nil
}

// ResolveAndEnsureDBPath resolves the database path, defaulting to
// GetDefaultDBPathOnly.
func ResolveAndEnsureDBPath(providedPath string) (string, error) {
	return ResolveAndEnsurePath(providedPath, GetDefaultDBPathOnly())
}

// ResolveAndEnsurePrefsPath resolves the preferences path, defaulting to
// GetDefaultPrefsPath.
func ResolveAndEnsurePrefsPath(providedPath string) (string, error) {
	return ResolveAndEnsurePath(providedPath, GetDefaultPrefsPath())
}
