package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// writeAtomic writes a file by filling a temp file in the same directory and
// renaming it over path. Readers see the old file or the new one, never a
// partial write.
func writeAtomic(path string, fill func(w io.Writer) error) error {
	tmp, err := createTemp(path)
	if err != nil {
		return err
	}
	if err := finishTemp(tmp, fill); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename into place: %w", err)
	}
	syncDir(filepath.Dir(path))
	return nil
}

// createExclusive writes a new file at path only if nothing exists there yet.
// It reports false when another writer got there first.
func createExclusive(path string, fill func(w io.Writer) error) (bool, error) {
	tmp, err := createTemp(path)
	if err != nil {
		return false, err
	}
	if err := finishTemp(tmp, fill); err != nil {
		return false, err
	}
	defer os.Remove(tmp.Name())

	if err := os.Link(tmp.Name(), path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("link into place: %w", err)
	}
	syncDir(filepath.Dir(path))
	return true, nil
}

func createTemp(path string) (*os.File, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return tmp, nil
}

// finishTemp fills, syncs and closes tmp. The temp file is removed on failure.
func finishTemp(tmp *os.File, fill func(w io.Writer) error) error {
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}

	if err := fill(tmp); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("sync temp file: %w", err))
	}
	if err := tmp.Chmod(0644); err != nil {
		return fail(fmt.Errorf("chmod temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	return nil
}

// syncDir flushes a directory entry change. Best effort: not every
// filesystem supports fsync on directories.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync()
	d.Close()
}
