package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestName is the file name of package and workspace manifests.
const ManifestName = "Nargo.toml"

// FindNargoToml walks up from startDir to locate Nargo.toml.
func FindNargoToml(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindWorkspaceToml returns the outermost Nargo.toml above startDir that
// declares a [workspace], or the nearest manifest when none does.
func FindWorkspaceToml(startDir string) (string, error) {
	nearest, ok, err := FindNargoToml(startDir)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w in %s or any parent directory", ErrMissingManifest, startDir)
	}
	best := nearest
	dir := filepath.Dir(filepath.Dir(nearest))
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			if cfg, err := loadConfig(candidate); err == nil && cfg.isWorkspace {
				best = candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return best, nil
}
