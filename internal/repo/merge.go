package repo

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errs"
	"github.com/systemshift/gitlet/internal/merge"
)

// MergeOutcome says how a merge finished.
type MergeOutcome int

const (
	// Merged created a two-parent merge commit.
	Merged MergeOutcome = iota
	// FastForward moved the current branch to the target tip.
	FastForward
	// AlreadyAncestor changed nothing: the target is already in history.
	AlreadyAncestor
)

// MergeResult is the outcome of a successful merge. Conflicts are not
// errors; the merge commit records the conflict markers.
type MergeResult struct {
	Outcome   MergeOutcome
	Commit    dag.ID
	Conflicts []string
}

// Conflicted reports whether any path was written with conflict markers.
func (m MergeResult) Conflicted() bool { return len(m.Conflicts) > 0 }

// Merge merges branch name into the current branch.
func (r *Repository) Merge(name string) (MergeResult, error) {
	if !r.stage.IsEmpty() {
		return MergeResult{}, errs.Precondition("You have uncommitted changes.")
	}
	if !r.Branches.Has(name) {
		return MergeResult{}, errs.NotFound("A branch with that name does not exist.")
	}
	if name == r.state.Branch {
		return MergeResult{}, errs.Precondition("Cannot merge a branch with itself.")
	}
	otherID, err := r.Branches.Get(name)
	if err != nil {
		return MergeResult{}, err
	}
	split, err := r.commonAncestor(r.state.Head, otherID)
	if err != nil {
		return MergeResult{}, err
	}
	log := r.log.With(zap.String("branch", r.state.Branch), zap.String("other", name))

	switch split {
	case otherID:
		log.Debug("merge: already an ancestor")
		return MergeResult{Outcome: AlreadyAncestor, Commit: r.state.Head}, nil
	case r.state.Head:
		if err := r.moveTo(otherID); err != nil {
			return MergeResult{}, err
		}
		if err := r.Branches.Set(r.state.Branch, otherID); err != nil {
			return MergeResult{}, err
		}
		if err := multierr.Append(r.saveState(), r.stage.Clear()); err != nil {
			return MergeResult{}, err
		}
		log.Debug("merge: fast-forward", zap.Stringer("commit", otherID))
		return MergeResult{Outcome: FastForward, Commit: otherID}, nil
	}

	base, err := r.Store.GetCommit(split)
	if err != nil {
		return MergeResult{}, err
	}
	head, err := r.HeadCommit()
	if err != nil {
		return MergeResult{}, err
	}
	other, err := r.Store.GetCommit(otherID)
	if err != nil {
		return MergeResult{}, err
	}

	plan := merge.Plan(base.Tree, head.Tree, other.Tree)
	contents, err := r.mergeContents(plan)
	if err != nil {
		return MergeResult{}, err
	}
	if err := r.sync.CheckOverwrite(other.Tree, head.Tree); err != nil {
		return MergeResult{}, err
	}
	var writes, removes []string
	for _, d := range plan {
		switch d.Action {
		case merge.TakeOther, merge.Conflict:
			writes = append(writes, d.Path)
		case merge.Remove:
			removes = append(removes, d.Path)
		}
	}
	if err := r.sync.CheckLayout(writes, removes); err != nil {
		return MergeResult{}, err
	}

	for _, p := range removes {
		if _, err := r.stage.Unstage(p, head.Tree); err != nil {
			return MergeResult{}, err
		}
		if err := r.work.Remove(p); err != nil {
			return MergeResult{}, err
		}
	}
	for _, p := range writes {
		data := contents[p]
		id, err := r.Store.PutBlob(data)
		if err != nil {
			return MergeResult{}, err
		}
		if err := r.work.WriteFile(p, data); err != nil {
			return MergeResult{}, err
		}
		r.stage.Stage(p, id, head.Tree)
	}

	id, err := r.commit(fmt.Sprintf("Merged %s into %s.", name, r.state.Branch), otherID)
	if err != nil {
		return MergeResult{}, err
	}
	conflicts := merge.Conflicts(plan)
	log.Debug("merge: committed",
		zap.Stringer("commit", id),
		zap.Stringer("split", split),
		zap.Strings("conflicts", conflicts))
	return MergeResult{Outcome: Merged, Commit: id, Conflicts: conflicts}, nil
}

// mergeContents loads or builds the bytes for every path the plan writes,
// so that nothing touches the working directory before all reads succeed.
func (r *Repository) mergeContents(plan []merge.Decision) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for _, d := range plan {
		switch d.Action {
		case merge.TakeOther:
			data, err := r.Store.GetBlob(d.Other)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", d.Path, err)
			}
			out[d.Path] = data
		case merge.Conflict:
			head, err := r.blobOrNil(d.Head)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", d.Path, err)
			}
			other, err := r.blobOrNil(d.Other)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", d.Path, err)
			}
			out[d.Path] = merge.ConflictMarkers(head, other)
		}
	}
	return out, nil
}

func (r *Repository) blobOrNil(id dag.ID) ([]byte, error) {
	if id.IsZero() {
		return nil, nil
	}
	return r.Store.GetBlob(id)
}

func (r *Repository) commonAncestor(a, b dag.ID) (dag.ID, error) {
	if r.cfg.Merge.Ancestor == AncestorNearest {
		return r.Graph.NearestCommonAncestor(a, b)
	}
	return r.Graph.SplitPoint(a, b)
}
