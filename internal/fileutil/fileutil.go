// Package fileutil writes export files without clobbering existing ones.
package fileutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileExists reports whether a regular file exists at filePath.
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// WriteFileWithOverwrite writes data to filePath, creating parent
// directories. An existing file is left alone unless overwrite is set.
// It returns true if the file was written.
//
// The data goes to a temporary file in the same directory first, so a
// failed write never leaves a truncated file at filePath.
func WriteFileWithOverwrite(filePath string, data []byte, perm os.FileMode, overwrite bool) (bool, error) {
	if FileExists(filePath) && !overwrite {
		slog.Info("File already exists, skipping", "filename", filePath)
		return false, nil
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*")
	if err != nil {
		return false, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return false, fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return false, err
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		return false, fmt.Errorf("failed to replace %s: %w", filePath, err)
	}

	slog.Info("Wrote file", "filename", filePath, "bytes", len(data))
	return true, nil
}
