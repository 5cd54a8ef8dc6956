package extension

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirPerm is the mode used for extension directories.
const DirPerm os.FileMode = 0o755

// Store is the filesystem registry of installed extensions: one directory per
// extension under root, optionally containing an activation marker.
type Store struct {
	root       string
	marker     string
	descriptor string
}

// NewStore returns a Store rooted at root. marker and descriptor are file
// names relative to each extension directory.
func NewStore(root, marker, descriptor string) *Store {
	return &Store{root: root, marker: marker, descriptor: descriptor}
}

// Root returns the extensions root directory.
func (s *Store) Root() string { return s.root }

// Dir returns the directory of the named extension.
func (s *Store) Dir(name string) string {
	return filepath.Join(s.root, name)
}

func (s *Store) markerPath(name string) string {
	return filepath.Join(s.Dir(name), s.marker)
}

// Exists reports whether the extension directory exists and is a directory.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Dir(name))
	return err == nil && info.IsDir()
}

// Activate creates the activation marker.
func (s *Store) Activate(name string) error {
	path := s.markerPath(name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("can't create %s: %w", path, err)
	}
	return f.Close()
}

// Deactivate removes the activation marker. An absent marker is not an error.
func (s *Store) Deactivate(name string) error {
	path := s.markerPath(name)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("can't remove %s: %w", path, err)
	}
	return nil
}

// IsActive reports whether the activation marker exists.
func (s *Store) IsActive(name string) bool {
	_, err := os.Lstat(s.markerPath(name))
	return err == nil
}

// Create makes the extension directory and its parents. It succeeds if the
// directory is already there; callers check Exists for install semantics.
func (s *Store) Create(name string) error {
	dir := s.Dir(name)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

// Destroy removes the extension directory recursively. A failure part way
// leaves whatever remains on disk.
func (s *Store) Destroy(name string) error {
	dir := s.Dir(name)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}
	return nil
}

// HasDescriptor reports whether the extension ships its compose descriptor.
func (s *Store) HasDescriptor(name string) bool {
	info, err := os.Stat(filepath.Join(s.Dir(name), s.descriptor))
	return err == nil && !info.IsDir()
}

// Descriptor returns the descriptor file name.
func (s *Store) Descriptor() string { return s.descriptor }

// List returns the names of the extension directories present on disk,
// sorted. A missing root yields an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading extensions directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
