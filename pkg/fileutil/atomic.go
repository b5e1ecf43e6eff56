// Package fileutil provides atomic file writes and the encoders relx uses
// for configuration and run summaries.
package fileutil

import (
	"os"
	"path/filepath"

	"github.com/thoreinstein/relx/internal/errors"
)

// AtomicWriteFile writes data to a file atomically using a temp file + rename pattern.
// An interrupted write leaves the original file intact.
//
// The caller is responsible for ensuring the parent directory exists.
// Permissions are applied to the final file via the perm parameter.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Same directory, so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, ".relx-atomic-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	defer func() {
		// Only remove if rename failed (file still exists)
		if _, statErr := os.Stat(tmpName); statErr == nil {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}

	return nil
}

// AtomicWriteEncoded encodes v in format and writes it to path atomically
// with 0644 permissions. An empty format is inferred from the extension.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteEncoded(path string, v any, format Format) error {
	if format == "" {
		var err error
		format, err = FormatFromPath(path)
		if err != nil {
			return err
		}
	}
	data, err := Marshal(v, format)
	if err != nil {
		return err
	}
	return AtomicWriteFile(path, data, 0644)
}
