package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"github.com/systemshift/gitlet/internal/repo"
	"github.com/systemshift/gitlet/internal/stage"
)

func TestFormatStatus(t *testing.T) {
	st := repo.StatusReport{
		Branches: []string{"master", "other"},
		Current:  "master",
		Status: stage.Status{
			Staged:    []string{"wug.txt"},
			Modified:  []string{"junk.txt (deleted)"},
			Untracked: []string{"random.stuff"},
		},
	}
	want := "=== Branches ===\n*master\nother\n\n" +
		"=== Staged Files ===\nwug.txt\n\n" +
		"=== Removed Files ===\n\n" +
		"=== Modifications Not Staged For Commit ===\njunk.txt (deleted)\n\n" +
		"=== Untracked Files ===\nrandom.stuff\n\n"
	assert.Equal(t, want, formatStatus(st))
}

func TestMergeMessage(t *testing.T) {
	assert.Equal(t, "Given branch is an ancestor of the current branch.",
		mergeMessage(repo.MergeResult{Outcome: repo.AlreadyAncestor}))
	assert.Equal(t, "Current branch fast-forwarded.",
		mergeMessage(repo.MergeResult{Outcome: repo.FastForward}))
	assert.Equal(t, "Encountered a merge conflict.",
		mergeMessage(repo.MergeResult{Outcome: repo.Merged, Conflicts: []string{"f"}}))
	assert.Empty(t, mergeMessage(repo.MergeResult{Outcome: repo.Merged}))
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger(true)
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel), "verbose enables debug")

	l, err = newLogger(false)
	assert.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel), "info is off by default")
}
