package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errs"
)

func TestMerge_ConflictScenario(t *testing.T) {
	r := newRepo(t)
	commitFile(t, r, "f", "a", "first")
	require.NoError(t, r.CreateBranch("b1"))
	require.NoError(t, r.CheckoutBranch("b1"))
	second := commitFile(t, r, "f", "b", "second")
	require.NoError(t, r.CheckoutBranch("master"))
	third := commitFile(t, r, "f", "c", "third")

	res, err := r.Merge("b1")
	require.NoError(t, err)
	assert.Equal(t, Merged, res.Outcome)
	assert.True(t, res.Conflicted())
	assert.Equal(t, []string{"f"}, res.Conflicts)
	assert.Equal(t, "<<<<<<< HEAD\nc=======\nb>>>>>>>\n", readFile(t, r, "f"))

	c, err := r.Store.GetCommit(res.Commit)
	require.NoError(t, err)
	assert.Equal(t, []dag.ID{third, second}, c.Parents)
	assert.Equal(t, "Merged b1 into master.", c.Message)
	assert.Equal(t, res.Commit, r.Head())

	conflicted, err := r.Store.GetBlob(c.Tree["f"])
	require.NoError(t, err)
	assert.Equal(t, "<<<<<<< HEAD\nc=======\nb>>>>>>>\n", string(conflicted))

	st, err := r.Status()
	require.NoError(t, err)
	assert.Empty(t, st.Staged)
	assert.Empty(t, st.Modified)
}

func TestMerge_CleanThreeWay(t *testing.T) {
	r := newRepo(t)
	writeFile(t, r, "keep.txt", "k")
	writeFile(t, r, "drop.txt", "d")
	writeFile(t, r, "edit.txt", "e")
	for _, f := range []string{"keep.txt", "drop.txt", "edit.txt"} {
		require.NoError(t, r.Add(f))
	}
	_, err := r.Commit("base")
	require.NoError(t, err)

	require.NoError(t, r.CreateBranch("other"))
	require.NoError(t, r.CheckoutBranch("other"))
	commitFile(t, r, "edit.txt", "e2", "edit on other")
	require.NoError(t, r.Remove("drop.txt"))
	_, err = r.Commit("drop on other")
	require.NoError(t, err)
	commitFile(t, r, "added.txt", "new", "add on other")

	require.NoError(t, r.CheckoutBranch("master"))
	commitFile(t, r, "keep.txt", "k2", "edit on master")

	res, err := r.Merge("other")
	require.NoError(t, err)
	assert.Equal(t, Merged, res.Outcome)
	assert.False(t, res.Conflicted())

	assert.Equal(t, "k2", readFile(t, r, "keep.txt"))
	assert.Equal(t, "e2", readFile(t, r, "edit.txt"))
	assert.Equal(t, "new", readFile(t, r, "added.txt"))
	assert.False(t, exists(r, "drop.txt"))

	tree := headTree(t, r)
	assert.ElementsMatch(t, []string{"added.txt", "edit.txt", "keep.txt"}, tree.Paths())
}

func TestMerge_FastForward(t *testing.T) {
	r := newRepo(t)
	commitFile(t, r, "a.txt", "a", "base")
	require.NoError(t, r.CreateBranch("ahead"))
	require.NoError(t, r.CheckoutBranch("ahead"))
	tip := commitFile(t, r, "a.txt", "a2", "ahead")
	require.NoError(t, r.CheckoutBranch("master"))

	before, err := r.Store.List(dag.KindCommit)
	require.NoError(t, err)

	res, err := r.Merge("ahead")
	require.NoError(t, err)
	assert.Equal(t, FastForward, res.Outcome)
	assert.Equal(t, tip, res.Commit)
	assert.Equal(t, tip, r.Head())
	assert.Equal(t, "master", r.CurrentBranch())
	assert.Equal(t, "a2", readFile(t, r, "a.txt"))

	master, err := r.Branches.Get("master")
	require.NoError(t, err)
	assert.Equal(t, tip, master)

	after, err := r.Store.List(dag.KindCommit)
	require.NoError(t, err)
	assert.Equal(t, before, after, "fast-forward creates no commit")
}

func TestMerge_AlreadyAncestor(t *testing.T) {
	r := newRepo(t)
	require.NoError(t, r.CreateBranch("old"))
	head := commitFile(t, r, "a.txt", "a", "ahead of old")

	res, err := r.Merge("old")
	require.NoError(t, err)
	assert.Equal(t, AlreadyAncestor, res.Outcome)
	assert.Equal(t, head, r.Head())
}

func TestMerge_Preconditions(t *testing.T) {
	r := newRepo(t)
	require.NoError(t, r.CreateBranch("other"))

	_, err := r.Merge("master")
	assert.EqualError(t, err, "Cannot merge a branch with itself.")

	_, err = r.Merge("ghost")
	require.ErrorIs(t, err, errs.ErrNotFound)
	assert.EqualError(t, err, "A branch with that name does not exist.")

	writeFile(t, r, "pending.txt", "p")
	require.NoError(t, r.Add("pending.txt"))
	_, err = r.Merge("other")
	require.ErrorIs(t, err, errs.ErrPreconditionFailed)
	assert.EqualError(t, err, "You have uncommitted changes.")
}

func TestMerge_UntrackedOverwriteLeavesNoTrace(t *testing.T) {
	r := newRepo(t)
	commitFile(t, r, "base.txt", "b", "base")
	require.NoError(t, r.CreateBranch("other"))
	require.NoError(t, r.CheckoutBranch("other"))
	commitFile(t, r, "clash.txt", "theirs", "other adds clash")
	require.NoError(t, r.CheckoutBranch("master"))
	head := commitFile(t, r, "base.txt", "b2", "master moves on")
	writeFile(t, r, "clash.txt", "mine")

	_, err := r.Merge("other")
	require.ErrorIs(t, err, errs.ErrUntrackedOverwrite)
	assert.Equal(t, head, r.Head())
	assert.Equal(t, "mine", readFile(t, r, "clash.txt"))
	assert.Equal(t, "b2", readFile(t, r, "base.txt"))

	st, err := r.Status()
	require.NoError(t, err)
	assert.Empty(t, st.Staged)
}

func TestMerge_FileDirectoryCollisionWritesNothing(t *testing.T) {
	r := newRepo(t)
	commitFile(t, r, "0.txt", "base", "base")
	require.NoError(t, r.CreateBranch("other"))
	require.NoError(t, r.CheckoutBranch("other"))
	commitFile(t, r, "0.txt", "theirs", "other edits 0")
	commitFile(t, r, "a/c", "nested", "other adds a/c")
	require.NoError(t, r.CheckoutBranch("master"))
	head := commitFile(t, r, "a", "file", "master adds a")

	_, err := r.Merge("other")
	require.ErrorIs(t, err, errs.ErrPreconditionFailed)
	assert.Contains(t, err.Error(), "a is in the way")
	assert.Equal(t, head, r.Head())
	assert.Equal(t, "base", readFile(t, r, "0.txt"))
	assert.Equal(t, "file", readFile(t, r, "a"))

	st, err := r.Status()
	require.NoError(t, err)
	assert.Empty(t, st.Staged)
	assert.Empty(t, st.Removed)
}

func TestMerge_NearestAncestorStrategy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge.Ancestor = AncestorNearest
	r := newRepo(t, WithConfig(cfg))
	commitFile(t, r, "f", "a", "first")
	require.NoError(t, r.CreateBranch("b1"))
	require.NoError(t, r.CheckoutBranch("b1"))
	commitFile(t, r, "g", "g", "other file")
	require.NoError(t, r.CheckoutBranch("master"))
	commitFile(t, r, "f", "c", "edit f")

	res, err := r.Merge("b1")
	require.NoError(t, err)
	assert.False(t, res.Conflicted())
	assert.Equal(t, "c", readFile(t, r, "f"))
	assert.Equal(t, "g", readFile(t, r, "g"))
}
