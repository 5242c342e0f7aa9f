package repo

import (
	"fmt"
	"path"
	"path/filepath"
	"unicode/utf8"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errs"
)

func cleanPath(name string) string {
	return path.Clean(filepath.ToSlash(name))
}

// Add stages the current content of a working file. Adding content identical
// to the head version cancels any pending change to the path instead.
func (r *Repository) Add(name string) error {
	name = cleanPath(name)
	if !utf8.ValidString(name) {
		return errs.Precondition("File name is not valid UTF-8.")
	}
	if !r.work.Exists(name) {
		return errs.NotFound("File does not exist.")
	}
	data, err := r.work.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	id, err := r.Store.PutBlob(data)
	if err != nil {
		return err
	}
	r.stage.Stage(name, id, head.Tree)
	r.log.Debug("add", zap.String("path", name), zap.Stringer("blob", id))
	return r.stage.Save()
}

// Remove unstages a path and, if the head commit tracks it, marks it for
// removal and deletes the working file.
func (r *Repository) Remove(name string) error {
	name = cleanPath(name)
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	tracked, err := r.stage.Unstage(name, head.Tree)
	if err != nil {
		return err
	}
	if tracked {
		if err := r.work.Remove(name); err != nil {
			return err
		}
	}
	r.log.Debug("rm", zap.String("path", name), zap.Bool("tracked", tracked))
	return r.stage.Save()
}

// Commit records the staged changes as a new commit on the current branch.
func (r *Repository) Commit(message string) (dag.ID, error) {
	if message == "" {
		return dag.ID{}, errs.Precondition("Please enter a commit message.")
	}
	if !utf8.ValidString(message) {
		return dag.ID{}, errs.Precondition("Commit message is not valid UTF-8.")
	}
	if r.stage.IsEmpty() {
		return dag.ID{}, errs.Precondition("No changes added to the commit.")
	}
	return r.commit(message, dag.ID{})
}

// commit snapshots the stage on top of head. A non-zero second parent makes
// it a merge commit.
func (r *Repository) commit(message string, second dag.ID) (dag.ID, error) {
	head, err := r.HeadCommit()
	if err != nil {
		return dag.ID{}, err
	}
	c := dag.NewCommit(message, r.now(), r.stage.Apply(head.Tree), r.state.Head, second)
	id, err := r.Store.PutCommit(c)
	if err != nil {
		return dag.ID{}, err
	}
	if err := r.advance(id); err != nil {
		return dag.ID{}, err
	}
	r.log.Debug("commit",
		zap.Stringer("id", id),
		zap.String("branch", r.state.Branch),
		zap.Int("files", len(c.Tree)),
		zap.Bool("merge", c.IsMerge()))
	return id, nil
}

// CheckoutFile overwrites one working file with its version in the commit
// named by ref ("head" for the current commit). The stage is not touched.
func (r *Repository) CheckoutFile(ref, name string) error {
	id, err := r.ResolveCommit(ref)
	if err != nil {
		return err
	}
	c, err := r.Store.GetCommit(id)
	if err != nil {
		return err
	}
	return r.sync.CheckoutPath(c.Tree, cleanPath(name))
}

// CheckoutBranch makes name the current branch and replaces the working
// files with those of its tip.
func (r *Repository) CheckoutBranch(name string) error {
	if name == r.state.Branch {
		return errs.Precondition("No need to checkout the current branch.")
	}
	tip, err := r.Branches.Get(name)
	if err != nil {
		return err
	}
	if err := r.moveTo(tip); err != nil {
		return err
	}
	r.state.Branch = name
	r.log.Debug("checkout", zap.String("branch", name), zap.Stringer("commit", tip))
	return multierr.Append(r.saveState(), r.stage.Clear())
}

// moveTo materializes target over the head commit and makes it the head.
// The caller persists state.
func (r *Repository) moveTo(target dag.ID) error {
	cur, err := r.HeadCommit()
	if err != nil {
		return err
	}
	next, err := r.Store.GetCommit(target)
	if err != nil {
		return err
	}
	if err := r.sync.Materialize(next.Tree, cur.Tree); err != nil {
		return err
	}
	r.state.Head = target
	return nil
}

// CreateBranch points a new branch at the head commit without switching to it.
func (r *Repository) CreateBranch(name string) error {
	if err := dag.ValidBranchName(name); err != nil {
		return err
	}
	if r.Branches.Has(name) {
		return errs.Precondition("A branch with that name already exists.")
	}
	r.log.Debug("branch", zap.String("name", name), zap.Stringer("commit", r.state.Head))
	return r.Branches.Set(name, r.state.Head)
}

// RemoveBranch deletes a branch pointer. Its commits are kept.
func (r *Repository) RemoveBranch(name string) error {
	if !r.Branches.Has(name) {
		return errs.NotFound("A branch with that name does not exist.")
	}
	if name == r.state.Branch {
		return errs.Precondition("Cannot remove the current branch.")
	}
	return r.Branches.Delete(name)
}

// Reset checks out every file of the commit named by ref and makes it the
// head commit. The current branch pointer stays where it is until the next
// commit moves it.
func (r *Repository) Reset(ref string) error {
	id, err := r.ResolveCommit(ref)
	if err != nil {
		return err
	}
	if err := r.moveTo(id); err != nil {
		return err
	}
	r.log.Debug("reset", zap.Stringer("commit", id))
	return multierr.Append(r.saveState(), r.stage.Clear())
}
