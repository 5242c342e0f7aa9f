package dag

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// SafeWrite writes data to path atomically: tempfile -> fsync -> rename.
// The tempfile is created in the same directory as path to ensure the rename
// is atomic (same filesystem).
func SafeWrite(path string, data []byte, perm os.FileMode) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	closed := false

	defer func() {
		if !closed {
			err = multierr.Append(err, f.Close())
		}
		if err != nil {
			err = multierr.Append(err, removeIfExists(tmp))
		}
	}()

	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err = f.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	closed = true
	if err = f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp to target: %w", err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
