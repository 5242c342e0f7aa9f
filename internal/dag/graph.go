package dag

import (
	"fmt"
	"iter"
)

// Graph is a read-only view of the commit DAG held in an ObjectStore.
type Graph struct {
	store *ObjectStore
}

// NewGraph returns a Graph over store.
func NewGraph(store *ObjectStore) *Graph {
	return &Graph{store: store}
}

// Parents returns the 0-2 parents of a commit.
func (g *Graph) Parents(id ID) ([]ID, error) {
	c, err := g.store.GetCommit(id)
	if err != nil {
		return nil, err
	}
	return c.Parents, nil
}

// Ancestors yields id and then every commit reachable from it, depth first,
// following first parents before second parents. Each commit is yielded once.
// A commit that cannot be read ends the sequence with a non-nil error.
func (g *Graph) Ancestors(id ID) iter.Seq2[ID, error] {
	return func(yield func(ID, error) bool) {
		if id.IsZero() {
			return
		}
		seen := make(map[ID]bool)
		stack := []ID{id}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[cur] {
				continue
			}
			seen[cur] = true

			parents, err := g.Parents(cur)
			if err != nil {
				yield(ID{}, fmt.Errorf("walk ancestors of %s: %w", cur.Short(7), err))
				return
			}
			if !yield(cur, nil) {
				return
			}
			for i := len(parents) - 1; i >= 0; i-- {
				if !seen[parents[i]] {
					stack = append(stack, parents[i])
				}
			}
		}
	}
}

// SplitPoint finds a common ancestor of a and b by collecting a's ancestor
// chain and returning the first commit on b's chain that also appears in it.
// It is exact for linear histories and histories merged once; with repeated
// criss-cross merges it may return an older ancestor than
// NearestCommonAncestor would.
func (g *Graph) SplitPoint(a, b ID) (ID, error) {
	inA := make(map[ID]bool)
	for id, err := range g.Ancestors(a) {
		if err != nil {
			return ID{}, err
		}
		inA[id] = true
	}
	for id, err := range g.Ancestors(b) {
		if err != nil {
			return ID{}, err
		}
		if inA[id] {
			return id, nil
		}
	}
	return ID{}, nil
}

// NearestCommonAncestor returns the common ancestor of a and b with the
// smallest combined breadth-first distance from both. Ties go to the one
// closer to a, then to the smaller identity string.
func (g *Graph) NearestCommonAncestor(a, b ID) (ID, error) {
	distA, err := g.distances(a)
	if err != nil {
		return ID{}, err
	}
	distB, err := g.distances(b)
	if err != nil {
		return ID{}, err
	}

	var best ID
	bestTotal, bestA := -1, -1
	for id, da := range distA {
		db, ok := distB[id]
		if !ok {
			continue
		}
		total := da + db
		switch {
		case bestTotal < 0,
			total < bestTotal,
			total == bestTotal && da < bestA,
			total == bestTotal && da == bestA && id.String() < best.String():
			best, bestTotal, bestA = id, total, da
		}
	}
	return best, nil
}

// distances runs a BFS over parent links and records each commit's depth.
func (g *Graph) distances(from ID) (map[ID]int, error) {
	dist := make(map[ID]int)
	if from.IsZero() {
		return dist, nil
	}
	dist[from] = 0
	queue := []ID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		parents, err := g.Parents(cur)
		if err != nil {
			return nil, fmt.Errorf("walk ancestors of %s: %w", cur.Short(7), err)
		}
		for _, p := range parents {
			if _, ok := dist[p]; !ok {
				dist[p] = dist[cur] + 1
				queue = append(queue, p)
			}
		}
	}
	return dist, nil
}
