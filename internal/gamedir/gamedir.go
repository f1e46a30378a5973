// Package gamedir resolves paths inside one installation directory.
package gamedir

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Dir is an installation directory plus the name of its temp storage area.
type Dir struct {
	Root    string
	TempDir string
}

// New returns a Dir for root with its absolute path resolved.
func New(root, tempDir string) (Dir, error) {
	if strings.TrimSpace(root) == "" {
		return Dir{}, fmt.Errorf("installation directory is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Dir{}, fmt.Errorf("resolve %s: %w", root, err)
	}
	return Dir{Root: abs, TempDir: tempDir}, nil
}

// Resolve joins rel onto the installation root. Resolve() is the root itself.
func (d Dir) Resolve(rel ...string) string {
	return filepath.Join(append([]string{d.Root}, rel...)...)
}

// TempPath returns the location of name inside the temp storage area.
func (d Dir) TempPath(name string) string {
	return filepath.Join(d.Root, d.TempDir, name)
}

// Library returns the on-disk location of a slash separated library path.
func (d Dir) Library(librariesDir, rel string) string {
	return filepath.Join(d.Root, librariesDir, filepath.FromSlash(rel))
}

// Contains reports whether path lies inside the installation root.
func (d Dir) Contains(path string) bool {
	rel, err := filepath.Rel(d.Root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
