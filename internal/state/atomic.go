package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWrite writes data to path through a temp file in the same directory
// followed by a rename, so readers never observe a partially written file.
// A reload watcher sees exactly one create or rename event per save.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return fmt.Errorf("failed to ensure parent directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}

	// Same filesystem, so the rename is atomic on POSIX.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to target: %w", err)
	}

	success = true
	return nil
}

// AtomicWriteWithBackup copies the current contents of path to path.bak
// before replacing it atomically. The original stays in place until the
// rename, so an interrupted write leaves both files intact.
func AtomicWriteWithBackup(path string, data []byte, perm os.FileMode) error {
	previous, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := AtomicWrite(path+".bak", previous, perm); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("failed to read existing file: %w", err)
	}

	return AtomicWrite(path, data, perm)
}
