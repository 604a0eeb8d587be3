// Package config manages bulkren configuration and filesystem paths.
//
// Configuration includes the location of the bulkren data directory, which can
// be customized via the BULKREN_ROOT environment variable. The default root is
// ~/.bulkren/ containing the undo journal and config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// RootEnv overrides the data directory.
const RootEnv = "BULKREN_ROOT"

// Paths contains all the filesystem paths used by bulkren.
type Paths struct {
	// Root is the base directory for all bulkren data (default: ~/.bulkren)
	Root string

	// Journal is the badger directory holding the undo history
	Journal string

	// Config is the path to the settings file
	Config string
}

// DefaultPaths returns the default paths for bulkren.
// Paths can be overridden with environment variables:
// - BULKREN_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv(RootEnv)
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".bulkren")
	}
	return PathsAt(root), nil
}

// PathsAt lays out the bulkren paths under root.
func PathsAt(root string) *Paths {
	return &Paths{
		Root:    root,
		Journal: filepath.Join(root, "journal"),
		Config:  filepath.Join(root, "config.yaml"),
	}
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Root, p.Journal} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
