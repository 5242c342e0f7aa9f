package merge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemshift/gitlet/internal/dag"
)

func id(t *testing.T, content string) dag.ID {
	t.Helper()
	v, err := dag.BlobID([]byte(content))
	require.NoError(t, err)
	return v
}

func TestClassify(t *testing.T) {
	var none dag.ID
	a, b, c := id(t, "a"), id(t, "b"), id(t, "c")

	tests := []struct {
		name              string
		base, head, other dag.ID
		want              Action
	}{
		{"unchanged head, deleted other", a, a, none, Remove},
		{"unchanged head, modified other", a, a, b, TakeOther},
		{"added only in other", none, none, b, TakeOther},
		{"unchanged other, deleted head", a, none, a, Keep},
		{"unchanged other, modified head", a, b, a, Keep},
		{"added only in head", none, b, none, Keep},
		{"same change on both sides", a, b, b, Keep},
		{"added identically on both sides", none, b, b, Keep},
		{"deleted on both sides", a, none, none, Keep},
		{"untouched everywhere", a, a, a, Keep},
		{"modified differently", a, b, c, Conflict},
		{"added differently", none, b, c, Conflict},
		{"modified head, deleted other", a, b, none, Conflict},
		{"deleted head, modified other", a, none, c, Conflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.base, tt.head, tt.other))
		})
	}
}

func TestPlan_Deterministic(t *testing.T) {
	base := dag.Tree{"both.txt": id(t, "0"), "gone.txt": id(t, "g"), "mine.txt": id(t, "m")}
	head := dag.Tree{"both.txt": id(t, "h"), "gone.txt": id(t, "g"), "mine.txt": id(t, "m2")}
	other := dag.Tree{"both.txt": id(t, "o"), "mine.txt": id(t, "m"), "new.txt": id(t, "n")}

	first := Plan(base, head, other)
	for i := 0; i < 20; i++ {
		if diff := cmp.Diff(first, Plan(base, head, other), cmp.Comparer(func(x, y dag.ID) bool { return x == y })); diff != "" {
			t.Fatalf("plan changed on run %d:\n%s", i, diff)
		}
	}

	got := make(map[string]Action)
	var order []string
	for _, d := range first {
		got[d.Path] = d.Action
		order = append(order, d.Path)
	}
	assert.Equal(t, []string{"both.txt", "gone.txt", "mine.txt", "new.txt"}, order)
	assert.Equal(t, map[string]Action{
		"both.txt": Conflict,
		"gone.txt": Remove,
		"mine.txt": Keep,
		"new.txt":  TakeOther,
	}, got)
	assert.Equal(t, []string{"both.txt"}, Conflicts(first))
}

func TestConflictMarkers(t *testing.T) {
	got := ConflictMarkers([]byte("c\n"), []byte("b\n"))
	assert.Equal(t, "<<<<<<< HEAD\nc\n=======\nb\n>>>>>>>\n", string(got))
}

func TestConflictMarkers_DeletedSide(t *testing.T) {
	assert.Equal(t, "<<<<<<< HEAD\nmine\n=======\n>>>>>>>\n",
		string(ConflictMarkers([]byte("mine\n"), nil)))
	assert.Equal(t, "<<<<<<< HEAD\n=======\ntheirs\n>>>>>>>\n",
		string(ConflictMarkers(nil, []byte("theirs\n"))))
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "take-other", TakeOther.String())
	assert.Equal(t, "unknown", Action(42).String())
}
