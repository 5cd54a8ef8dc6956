package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CreateSymlink creates a symbolic link at link pointing to target. It fails
// if anything already exists at link.
func CreateSymlink(target, link string) error {
	return os.Symlink(target, link)
}

// IsSymlink reports whether path itself is a symbolic link.
func IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// RemoveSymlink removes path, refusing to touch anything that is not a link.
func RemoveSymlink(path string) error {
	if !IsSymlink(path) {
		return fmt.Errorf("%s is not a symlink", path)
	}
	return os.Remove(path)
}

// ReadSymlinkTarget returns the raw target of a symlink.
func ReadSymlinkTarget(path string) (string, error) {
	return os.Readlink(path)
}

// ResolveSymlink returns the canonical absolute path a link points to. When
// the chain cannot be fully resolved (the target is gone), it falls back to
// the link's own target made absolute against the link's directory.
func ResolveSymlink(path string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved, nil
	}

	target, err := os.Readlink(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return filepath.Clean(target), nil
}

// IsDangling reports whether path is a symlink whose target does not exist.
func IsDangling(path string) bool {
	if !IsSymlink(path) {
		return false
	}
	_, err := os.Stat(path)
	return err != nil
}

// IsWithin reports whether path equals root or lies below it. The check is
// done on whole path components, so /data/ext/foobar is not within
// /data/ext/foo.
func IsWithin(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if path == root {
		return true
	}
	if root == string(filepath.Separator) {
		return strings.HasPrefix(path, root)
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// Canonical returns path made absolute with every existing symlink in it
// resolved. Paths that do not exist are returned absolute and cleaned.
func Canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
