// Package merge classifies every path of a three-way merge.
//
// The decision for a path depends only on the blob IDs it has in the split
// point (base), the current head and the branch being merged in (other),
// with the zero ID standing for "absent". Classification is pure and does no
// I/O; applying the plan is the repository's job.
package merge

import (
	"bytes"
	"maps"
	"slices"

	"github.com/systemshift/gitlet/internal/dag"
)

// Action is what a merge does with one path.
type Action int

const (
	// Keep leaves the head version (or its absence) in place.
	Keep Action = iota
	// TakeOther checks out and stages the other branch's version.
	TakeOther
	// Remove stages the path for removal and deletes the working file.
	Remove
	// Conflict writes both versions between conflict markers and stages the result.
	Conflict
)

func (a Action) String() string {
	switch a {
	case Keep:
		return "keep"
	case TakeOther:
		return "take-other"
	case Remove:
		return "remove"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Classify applies the merge rules, first match wins:
//
//  1. unchanged in head, deleted in other       -> Remove
//  2. unchanged in head, changed in other       -> TakeOther
//  3. unchanged in other, deleted in head       -> Keep (stays deleted)
//  4. unchanged in other, or head == other      -> Keep
//  5. added only in other                       -> TakeOther (covered by 2)
//  6. same content on both sides                -> Keep (covered by 4)
//  7. anything else                             -> Conflict
func Classify(base, head, other dag.ID) Action {
	headSame := head == base
	otherSame := other == base
	switch {
	case headSame && other.IsZero() && !base.IsZero():
		return Remove
	case headSame && !otherSame:
		return TakeOther
	case otherSame && head.IsZero() && !base.IsZero():
		return Keep
	case otherSame || head == other:
		return Keep
	default:
		return Conflict
	}
}

// Decision is the classification of one path.
type Decision struct {
	Path   string
	Action Action
	Base   dag.ID
	Head   dag.ID
	Other  dag.ID
}

// Plan classifies every path present in any of the three trees, in path order.
func Plan(base, head, other dag.Tree) []Decision {
	paths := make(map[string]struct{})
	for _, t := range []dag.Tree{base, head, other} {
		for p := range t {
			paths[p] = struct{}{}
		}
	}
	decisions := make([]Decision, 0, len(paths))
	for _, p := range slices.Sorted(maps.Keys(paths)) {
		d := Decision{Path: p, Base: base[p], Head: head[p], Other: other[p]}
		d.Action = Classify(d.Base, d.Head, d.Other)
		decisions = append(decisions, d)
	}
	return decisions
}

// Conflicts returns the paths of decisions that conflict.
func Conflicts(plan []Decision) []string {
	var out []string
	for _, d := range plan {
		if d.Action == Conflict {
			out = append(out, d.Path)
		}
	}
	return out
}

const (
	markerStart = "<<<<<<< HEAD\n"
	markerSep   = "=======\n"
	markerEnd   = ">>>>>>>\n"
)

// ConflictMarkers frames the head and other versions of a file. A nil
// version (the side deleted the file) contributes nothing.
func ConflictMarkers(head, other []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(markerStart) + len(head) + len(markerSep) + len(other) + len(markerEnd))
	buf.WriteString(markerStart)
	buf.Write(head)
	buf.WriteString(markerSep)
	buf.Write(other)
	buf.WriteString(markerEnd)
	return buf.Bytes()
}
