// Package storage persists games and engine settings in BadgerDB.
package storage

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

const appName = "tulip"

// DataDir returns the platform-specific data directory for the application,
// creating it if needed.
// - macOS: ~/Library/Application Support/tulip/
// - Linux: $XDG_DATA_HOME/tulip/ or ~/.local/share/tulip/
// - Windows: %APPDATA%/tulip/
func DataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", errors.WithMessage(err, "locate home directory")
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", errors.WithMessage(err, "locate home directory")
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", errors.WithMessage(err, "locate home directory")
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	return ensureDir(filepath.Join(baseDir, appName))
}

// SubDir returns a named directory under DataDir, creating it if needed.
func SubDir(name string) (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(dataDir, name))
}

// DatabaseDir returns the directory for the game database.
func DatabaseDir() (string, error) {
	return SubDir("db")
}

// BookDir returns the directory for the opening book database.
func BookDir() (string, error) {
	return SubDir("book")
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.WithMessagef(err, "create %s", dir)
	}
	return dir, nil
}
