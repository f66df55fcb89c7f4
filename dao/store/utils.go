package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSnapshotPath is the snapshot file used when no path is given.
const DefaultSnapshotPath = "mapdao.snapshot"

// ResolveSnapshotPath normalizes user-provided paths and applies fast-fail defaults.
// Empty strings revert to DefaultSnapshotPath.
func ResolveSnapshotPath(path string) (string, error) {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		trimmedPath = DefaultSnapshotPath
	}

	cleanedPath := filepath.Clean(trimmedPath)

	absPath, err := filepath.Abs(cleanedPath)
	if err != nil {
		return "", fmt.Errorf("%w: path %q: %w", ErrSnapshotPathResolveFailed, cleanedPath, err)
	}

	info, err := os.Stat(absPath)
	switch {
	case err == nil:
		if info.IsDir() {
			return absPath, fmt.Errorf("%w: %q", ErrSnapshotPathIsDirectory, absPath)
		}

		return absPath, nil
	case errors.Is(err, os.ErrNotExist):
		return absPath, nil
	default:
		return absPath, fmt.Errorf("%w: %q: %w", ErrSnapshotPathResolveFailed, absPath, err)
	}
}

// clamp constrains a value to lie within [low, high] bounds.
// Used to cap preallocation sizes to prevent OOM while avoiding tiny allocations.
func clamp(value, low, high int64) int64 {
	return max(low, min(value, high))
}

// wrapSnapshotOpenError wraps an error with a snapshot file path.
func wrapSnapshotOpenError(err error, path string) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, path)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %s", ErrSnapshotPermissionDenied, path)
	default:
		return fmt.Errorf("%w: %s: %w", ErrSnapshotOpenFailed, path, err)
	}
}
