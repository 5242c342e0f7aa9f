package dag

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// InitialMessage is the message of every repository's root commit.
const InitialMessage = "initial commit"

// Tree is a flat snapshot mapping a slash-separated relative path to a blob ID.
type Tree map[string]ID

// Clone returns an independent copy of t.
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	maps.Copy(out, t)
	return out
}

// Paths returns the tree's paths in sorted order.
func (t Tree) Paths() []string {
	return slices.Sorted(maps.Keys(t))
}

// Commit is an immutable snapshot node: a message, a timestamp, up to
// two parents and the file tree. Serialized via CanonicalJSON and stored in
// the ObjectStore like any other object.
type Commit struct {
	V         int       `json:"v"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Parents   []ID      `json:"parents,omitempty"`
	Tree      Tree      `json:"tree"`
}

// NewRootCommit returns the parentless, empty commit every repository starts from.
func NewRootCommit() *Commit {
	return &Commit{
		V:         1,
		Message:   InitialMessage,
		Timestamp: time.Unix(0, 0).UTC(),
		Tree:      Tree{},
	}
}

// NewCommit builds a commit over tree with the given parents. Zero parents
// are dropped.
func NewCommit(message string, ts time.Time, tree Tree, parents ...ID) *Commit {
	c := &Commit{
		V:         1,
		Message:   message,
		Timestamp: ts.UTC(),
		Tree:      tree.Clone(),
	}
	for _, p := range parents {
		if !p.IsZero() {
			c.Parents = append(c.Parents, p)
		}
	}
	return c
}

// Parent returns the first parent, or the zero ID for the root commit.
func (c *Commit) Parent() ID {
	if len(c.Parents) == 0 {
		return ID{}
	}
	return c.Parents[0]
}

// IsMerge reports whether the commit has two parents.
func (c *Commit) IsMerge() bool { return len(c.Parents) > 1 }

// Encode returns the canonical serialized form the commit's ID is computed over.
func (c *Commit) Encode() ([]byte, error) {
	if len(c.Parents) > 2 {
		return nil, fmt.Errorf("serialize commit: %d parents", len(c.Parents))
	}
	data, err := CanonicalJSON(c)
	if err != nil {
		return nil, fmt.Errorf("serialize commit: %w", err)
	}
	return data, nil
}
