package stage

import (
	"sort"

	"github.com/systemshift/gitlet/internal/dag"
)

// Status is the four-way classification of the working directory against
// the head commit and the index. Every list is sorted.
type Status struct {
	Staged    []string
	Removed   []string
	Modified  []string // entries carry a " (modified)" or " (deleted)" suffix
	Untracked []string
}

// Status derives the status lists from the head tree and a snapshot of the
// working directory (path -> blob ID of its current content). It does not
// modify the index.
func (s *Index) Status(head dag.Tree, worktree dag.Tree) Status {
	st := Status{
		Staged:  s.Staged(),
		Removed: s.Removed(),
	}

	modified := make(map[string]string)
	for path, onDisk := range worktree {
		staged, isStaged := s.additions[path]
		tracked, isTracked := head[path]
		switch {
		case isStaged:
			if onDisk != staged {
				modified[path] = path + " (modified)"
			}
		case isTracked:
			if onDisk != tracked && !s.IsRemoved(path) {
				modified[path] = path + " (modified)"
			}
		}

		if !isStaged && (!isTracked || s.IsRemoved(path)) {
			st.Untracked = append(st.Untracked, path)
		}
	}
	for path := range s.additions {
		if _, ok := worktree[path]; !ok {
			modified[path] = path + " (deleted)"
		}
	}
	for path := range head {
		if _, ok := worktree[path]; !ok && !s.IsRemoved(path) {
			modified[path] = path + " (deleted)"
		}
	}

	for _, entry := range modified {
		st.Modified = append(st.Modified, entry)
	}
	sort.Strings(st.Modified)
	sort.Strings(st.Untracked)
	return st
}
