package fuse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemshift/gitlet/internal/dag"
)

func blob(t *testing.T, content string) dag.ID {
	t.Helper()
	id, err := dag.BlobID([]byte(content))
	require.NoError(t, err)
	return id
}

func TestListDir(t *testing.T) {
	tree := dag.Tree{
		"README":         blob(t, "r"),
		"src/main.go":    blob(t, "m"),
		"src/util/a.go":  blob(t, "a"),
		"docs/guide.txt": blob(t, "g"),
	}

	assert.Equal(t, []entry{
		{name: "README"},
		{name: "docs", dir: true},
		{name: "src", dir: true},
	}, listDir(tree, ""))

	assert.Equal(t, []entry{
		{name: "main.go"},
		{name: "util", dir: true},
	}, listDir(tree, "src"))

	assert.Empty(t, listDir(tree, "nope"))
}

func TestLookup(t *testing.T) {
	readme := blob(t, "r")
	tree := dag.Tree{"README": readme, "src/main.go": blob(t, "m")}

	id, isDir, ok := lookup(tree, "", "README")
	require.True(t, ok)
	assert.False(t, isDir)
	assert.Equal(t, readme, id)

	_, isDir, ok = lookup(tree, "", "src")
	assert.True(t, ok)
	assert.True(t, isDir)

	_, _, ok = lookup(tree, "", "sr")
	assert.False(t, ok, "a name prefix is not a directory")

	_, _, ok = lookup(tree, "src", "main.go")
	assert.True(t, ok)
}

func TestReadAt(t *testing.T) {
	data := []byte("hello world")

	res := readAt(data, make([]byte, 5), 6)
	got, _ := res.Bytes(make([]byte, 5))
	assert.Equal(t, "world", string(got))

	res = readAt(data, make([]byte, 64), 0)
	got, _ = res.Bytes(make([]byte, 64))
	assert.Equal(t, "hello world", string(got))

	res = readAt(data, make([]byte, 4), 100)
	got, _ = res.Bytes(make([]byte, 4))
	assert.Empty(t, got)
}

func TestStableIno(t *testing.T) {
	assert.Equal(t, stableIno("commits/abc"), stableIno("commits/abc"))
	assert.NotEqual(t, stableIno("commits/abc"), stableIno("branches/abc"))
}
