package transfer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Resolve maps a path received on the wire onto the local filesystem.
// Relative paths are joined to root; absolute paths and an empty root leave
// the path unchanged.
func Resolve(root, path string) string {
	if root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// CheckReadable verifies that path names an existing, readable regular file.
// It never opens the file.
func CheckReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if missing(err) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	if !canRead(path, info) {
		return fmt.Errorf("%s: %w", path, ErrNotReadable)
	}
	return nil
}

// CheckWritableDest verifies that a file could be created or truncated at
// path. The destination must not be a directory. When it does not exist, its
// nearest existing ancestor must be a writable directory so the missing
// parents can be created later. Nothing is created here.
func CheckWritableDest(path string) error {
	if path == "" {
		return fmt.Errorf("empty path: %w", ErrNotWritable)
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return fmt.Errorf("%s: %w", path, ErrIsDirectory)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("%s: %w", path, ErrNotRegular)
		}
		if !canWrite(path, info) {
			return fmt.Errorf("%s: %w", path, ErrNotWritable)
		}
		return nil
	case !missing(err):
		return fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(filepath.Clean(path))
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() || !canWriteDir(dir, info) {
				return fmt.Errorf("%s: %w", dir, ErrNotWritable)
			}
			return nil
		}
		if !missing(err) {
			return fmt.Errorf("%s: %w", dir, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return fmt.Errorf("%s: %w", path, ErrNotWritable)
		}
		dir = parent
	}
}

// missing reports whether a stat error means the path cannot exist, either
// because it does not or because one of its components is not a directory.
func missing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// ensureParent creates the missing parent directories of path. It reports
// whether any directory was created.
func ensureParent(path string) (bool, error) {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}
	return true, nil
}
