// Package stage implements the staging index: the pending additions and
// removals that the next commit applies on top of the head commit's tree.
package stage

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errs"
)

// Index is the staging area. A path is never in both Additions and Removals.
type Index struct {
	path      string
	additions dag.Tree
	removals  map[string]struct{}
}

// record is the on-disk form of an Index.
type record struct {
	Additions dag.Tree `json:"additions"`
	Removals  []string `json:"removals"`
}

// Load reads the index persisted at path. A missing file is an empty index.
func Load(path string) (*Index, error) {
	idx := &Index{
		path:      path,
		additions: dag.Tree{},
		removals:  make(map[string]struct{}),
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stage: %w", err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse stage: %w", err)
	}
	maps.Copy(idx.additions, rec.Additions)
	for _, p := range rec.Removals {
		idx.removals[p] = struct{}{}
	}
	return idx, nil
}

// Save persists the index.
func (s *Index) Save() error {
	rec := record{
		Additions: s.additions,
		Removals:  append([]string{}, s.Removed()...),
	}
	data, err := dag.CanonicalJSON(rec)
	if err != nil {
		return fmt.Errorf("serialize stage: %w", err)
	}
	if err := dag.SafeWrite(s.path, data, 0644); err != nil {
		return fmt.Errorf("write stage: %w", err)
	}
	return nil
}

// Stage records blob as the pending content of path. Staging the content
// head already tracks for path cancels any pending change instead.
func (s *Index) Stage(path string, blob dag.ID, head dag.Tree) {
	delete(s.removals, path)
	if tracked, ok := head[path]; ok && tracked == blob {
		delete(s.additions, path)
		return
	}
	s.additions[path] = blob
}

// Unstage drops any pending addition of path and, if head tracks it, marks
// it for removal. tracked reports the latter; the caller then deletes the
// working file.
func (s *Index) Unstage(path string, head dag.Tree) (tracked bool, err error) {
	_, staged := s.additions[path]
	_, tracked = head[path]
	if !staged && !tracked {
		return false, errs.Precondition("No reason to remove the file.")
	}
	delete(s.additions, path)
	if tracked {
		s.removals[path] = struct{}{}
	}
	return tracked, nil
}

// IsEmpty reports whether nothing is staged.
func (s *Index) IsEmpty() bool {
	return len(s.additions) == 0 && len(s.removals) == 0
}

// Clear empties the index and persists it.
func (s *Index) Clear() error {
	s.additions = dag.Tree{}
	s.removals = make(map[string]struct{})
	return s.Save()
}

// Staged returns the paths with pending additions, sorted.
func (s *Index) Staged() []string {
	return s.additions.Paths()
}

// Removed returns the paths marked for removal, sorted.
func (s *Index) Removed() []string {
	return slices.Sorted(maps.Keys(s.removals))
}

// Addition returns the staged blob for path.
func (s *Index) Addition(path string) (dag.ID, bool) {
	id, ok := s.additions[path]
	return id, ok
}

// IsRemoved reports whether path is marked for removal.
func (s *Index) IsRemoved(path string) bool {
	_, ok := s.removals[path]
	return ok
}

// Apply returns the tree the next commit would record: head without the
// removed paths, plus the staged additions. head is not modified.
func (s *Index) Apply(head dag.Tree) dag.Tree {
	out := head.Clone()
	for p := range s.removals {
		delete(out, p)
	}
	maps.Copy(out, s.additions)
	return out
}
