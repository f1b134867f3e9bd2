package config

import (
	"os"
	"path/filepath"
)

const defaultDataDir = "data"

// DataDir returns the directory the web server keeps its files in.
// It can be overridden with the DATA_DIR environment variable.
func DataDir() string {
	if v := os.Getenv("DATA_DIR"); v != "" {
		return v
	}
	return defaultDataDir
}

// PasswordMode mirrors the server's PASSWORD_MODE so users added offline can log in.
func PasswordMode() string {
	if v := os.Getenv("PASSWORD_MODE"); v != "" {
		return v
	}
	return "plain"
}

// Path joins elem under dataDir.
func Path(dataDir string, elem ...string) string {
	return filepath.Join(append([]string{dataDir}, elem...)...)
}
