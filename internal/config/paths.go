package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envDataDir = "DAYTRACE_DATA_DIR" // override for tests
	dirName    = ".daytrace"         // default under $HOME
	dbFilename = "daytrace.db"
)

// DataDir returns the directory where local state is stored (~/.daytrace).
// It creates the directory with 0700 permissions if it does not exist.
func DataDir() (string, error) {
	if custom := os.Getenv(envDataDir); custom != "" {
		if err := os.MkdirAll(custom, 0o700); err != nil {
			return "", err
		}
		return custom, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user home: %w", err)
	}
	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
