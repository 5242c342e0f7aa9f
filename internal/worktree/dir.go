// Package worktree reads and writes the user's working directory and keeps
// it in step with commits.
package worktree

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FS is the byte-oriented file capability the synchronizer works through.
// Paths are slash-separated and relative to the working directory root.
type FS interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
	Remove(name string) error
	Exists(name string) bool
	IsDir(name string) bool
	List() ([]string, error)
	FilesUnder(dir string) ([]string, error)
}

// Dir is an FS rooted at a directory on disk.
type Dir struct {
	root    string
	skip    string   // name of the repository metadata directory
	ignores []string // doublestar patterns
}

// NewDir returns a Dir rooted at root. Files under the top-level directory
// named skip and files matching any ignore pattern are invisible to List.
func NewDir(root, skip string, ignores []string) (*Dir, error) {
	for _, p := range ignores {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ignore pattern %q", p)
		}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	return &Dir{root: abs, skip: skip, ignores: ignores}, nil
}

// Root returns the directory the FS is rooted at.
func (d *Dir) Root() string { return d.root }

func (d *Dir) abs(name string) (string, error) {
	clean := path.Clean(filepath.ToSlash(name))
	if clean == "." || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("path %q escapes the working directory", name)
	}
	if d.skip != "" && (clean == d.skip || strings.HasPrefix(clean, d.skip+"/")) {
		return "", fmt.Errorf("path %q is inside the repository directory", name)
	}
	return filepath.Join(d.root, filepath.FromSlash(clean)), nil
}

func (d *Dir) ReadFile(name string) ([]byte, error) {
	p, err := d.abs(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// WriteFile overwrites name, creating parent directories as needed.
func (d *Dir) WriteFile(name string, data []byte) error {
	p, err := d.abs(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("create parent of %s: %w", name, err)
	}
	if info, err := os.Lstat(p); err == nil && info.IsDir() {
		if err := removeEmptyTree(p); err != nil {
			return fmt.Errorf("replace directory %s: %w", name, err)
		}
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Remove deletes name if it exists and then prunes parent directories left
// empty, stopping at the root.
func (d *Dir) Remove(name string) error {
	p, err := d.abs(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	for dir := filepath.Dir(p); dir != d.root && strings.HasPrefix(dir, d.root); dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break // not empty
		}
	}
	return nil
}

// removeEmptyTree deletes a directory that holds nothing but directories.
func removeEmptyTree(p string) error {
	entries, err := os.ReadDir(p)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			return fmt.Errorf("%s is not empty", p)
		}
		if err := removeEmptyTree(filepath.Join(p, e.Name())); err != nil {
			return err
		}
	}
	return os.Remove(p)
}

func (d *Dir) IsDir(name string) bool {
	p, err := d.abs(name)
	if err != nil {
		return false
	}
	info, err := os.Lstat(p)
	return err == nil && info.IsDir()
}

// FilesUnder returns every non-directory entry below dir, ignored ones
// included, sorted.
func (d *Dir) FilesUnder(dir string) ([]string, error) {
	p, err := d.abs(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	err = filepath.WalkDir(p, func(q string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, q)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func (d *Dir) Exists(name string) bool {
	p, err := d.abs(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// List returns every regular file in the working directory, sorted.
func (d *Dir) List() ([]string, error) {
	var files []string
	err := filepath.WalkDir(d.root, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if e.IsDir() {
			if rel == d.skip || d.ignored(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !e.Type().IsRegular() || d.ignored(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list working directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func (d *Dir) ignored(rel string) bool {
	for _, p := range d.ignores {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if strings.HasSuffix(rel, "/") {
			if ok, _ := doublestar.Match(p, strings.TrimSuffix(rel, "/")); ok {
				return true
			}
		}
	}
	return false
}
