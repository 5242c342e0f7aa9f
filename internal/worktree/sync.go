package worktree

import (
	"fmt"
	"path"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errs"
)

// Snapshot hashes every file in fsys as a blob, without storing anything.
func Snapshot(fsys FS) (dag.Tree, error) {
	files, err := fsys.List()
	if err != nil {
		return nil, err
	}
	snap := make(dag.Tree, len(files))
	for _, f := range files {
		data, err := fsys.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		id, err := dag.BlobID(data)
		if err != nil {
			return nil, err
		}
		snap[f] = id
	}
	return snap, nil
}

// Sync materializes commit trees into a working directory.
type Sync struct {
	fs    FS
	store *dag.ObjectStore
}

// NewSync returns a Sync writing into fsys with blobs from store.
func NewSync(fsys FS, store *dag.ObjectStore) *Sync {
	return &Sync{fs: fsys, store: store}
}

// CheckOverwrite fails with UntrackedOverwrite if moving from current to
// target would replace a file current does not track with different content.
func (s *Sync) CheckOverwrite(target, current dag.Tree) error {
	files, err := s.fs.List()
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, tracked := current[f]; tracked {
			continue
		}
		want, ok := target[f]
		if !ok {
			continue
		}
		data, err := s.fs.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		have, err := dag.BlobID(data)
		if err != nil {
			return err
		}
		if have != want {
			return errs.UntrackedOverwrite()
		}
	}
	return nil
}

// CheckLayout fails with PreconditionFailed if, once the paths in removes
// are deleted, writing the paths in writes would need a remaining file as a
// directory or would replace a directory that still holds files.
func (s *Sync) CheckLayout(writes, removes []string) error {
	gone := make(map[string]bool, len(removes))
	for _, r := range removes {
		gone[r] = true
	}
	for _, w := range writes {
		for dir := path.Dir(w); dir != "."; dir = path.Dir(dir) {
			if s.fs.Exists(dir) && !gone[dir] {
				return layoutConflict(dir)
			}
		}
		if !s.fs.IsDir(w) {
			continue
		}
		files, err := s.fs.FilesUnder(w)
		if err != nil {
			return err
		}
		for _, f := range files {
			if !gone[f] {
				return layoutConflict(w)
			}
		}
	}
	return nil
}

func layoutConflict(p string) error {
	return errs.Precondition(fmt.Sprintf(
		"%s is in the way: it would have to be both a file and a directory; move it and try again.", p))
}

// Materialize replaces the working files of current with those of target.
// Nothing is written if a check fails or a blob is unreadable. Paths only
// current tracks are deleted before target's are written, so a file and a
// directory may trade places.
func (s *Sync) Materialize(target, current dag.Tree) error {
	if err := s.CheckOverwrite(target, current); err != nil {
		return err
	}
	contents := make(map[string][]byte, len(target))
	for _, p := range target.Paths() {
		data, err := s.store.GetBlob(target[p])
		if err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		contents[p] = data
	}
	var stale []string
	for _, p := range current.Paths() {
		if _, keep := target[p]; !keep {
			stale = append(stale, p)
		}
	}
	if err := s.CheckLayout(target.Paths(), stale); err != nil {
		return err
	}

	for _, p := range stale {
		if err := s.fs.Remove(p); err != nil {
			return err
		}
	}
	for _, p := range target.Paths() {
		if err := s.fs.WriteFile(p, contents[p]); err != nil {
			return err
		}
	}
	return nil
}

// CheckoutPath overwrites a single working file with its version in tree.
func (s *Sync) CheckoutPath(tree dag.Tree, path string) error {
	id, ok := tree[path]
	if !ok {
		return errs.NotFound("File does not exist in that commit.")
	}
	return s.WriteBlob(path, id)
}

// WriteBlob writes the content of blob id to path.
func (s *Sync) WriteBlob(path string, id dag.ID) error {
	data, err := s.store.GetBlob(id)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return s.fs.WriteFile(path, data)
}

// Remove deletes a working file.
func (s *Sync) Remove(path string) error {
	return s.fs.Remove(path)
}
