package dag

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/systemshift/gitlet/internal/errs"
)

// RefStore manages branch name -> commit ID mappings as files.
// Each branch is a file in the refs/ directory whose content is the base32 CID
// of its latest commit.
type RefStore struct {
	dir string
}

// NewRefStore creates a RefStore at the given directory.
func NewRefStore(dir string) (*RefStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create refs dir: %w", err)
	}
	return &RefStore{dir: dir}, nil
}

// ValidBranchName rejects names that cannot be stored as a single ref file.
func ValidBranchName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".tmp-") {
		return errs.Precondition(fmt.Sprintf("Invalid branch name %q.", name))
	}
	return nil
}

func (r *RefStore) path(name string) string {
	return filepath.Join(r.dir, name)
}

// Set points branch name at commit id.
func (r *RefStore) Set(name string, id ID) error {
	if err := ValidBranchName(name); err != nil {
		return err
	}
	text, err := id.MarshalText()
	if err != nil {
		return err
	}
	if err := SafeWrite(r.path(name), append(text, '\n'), 0644); err != nil {
		return fmt.Errorf("write ref %s: %w", name, err)
	}
	return nil
}

// Get resolves a branch name to its latest commit.
func (r *RefStore) Get(name string) (ID, error) {
	if ValidBranchName(name) != nil {
		return ID{}, errs.NotFound("No such branch exists.")
	}
	data, err := os.ReadFile(r.path(name))
	if os.IsNotExist(err) {
		return ID{}, errs.NotFound("No such branch exists.")
	}
	if err != nil {
		return ID{}, fmt.Errorf("read ref %s: %w", name, err)
	}
	var id ID
	if err := id.UnmarshalText([]byte(strings.TrimSpace(string(data)))); err != nil {
		return ID{}, fmt.Errorf("decode ref %s: %w", name, err)
	}
	return id, nil
}

// Delete removes a branch.
func (r *RefStore) Delete(name string) error {
	if !r.Has(name) {
		return errs.NotFound("A branch with that name does not exist.")
	}
	return os.Remove(r.path(name))
}

// Has checks if a branch exists.
func (r *RefStore) Has(name string) bool {
	if ValidBranchName(name) != nil {
		return false
	}
	_, err := os.Stat(r.path(name))
	return err == nil
}

// List returns all branch names, sorted.
func (r *RefStore) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
