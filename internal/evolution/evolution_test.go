package evolution

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/data"
)

const fixtures = "../data/testdata"

func testGraph(t *testing.T) *Graph {
	t.Helper()
	c, err := data.LoadDir(fixtures)
	require.NoError(t, err)
	return NewGraph(c)
}

func targets(edges []Edge) []int {
	out := make([]int, len(edges))
	for i, e := range edges {
		out[i] = e.To
	}
	return out
}

func TestNewGraphMergesAndOrders(t *testing.T) {
	g := testGraph(t)

	// Armor sorts before Champion.
	assert.Equal(t, []int{6, 3}, targets(g.Out(2)))
	assert.Equal(t, []int{3, 5}, targets(g.Out(4)))

	// 1->2 is declared on both ends; the requirements come from Koromon.
	require.Len(t, g.Out(1), 1)
	assert.Equal(t, []data.Requirement{{Kind: data.ReqLevel, Value: "11"}}, g.Out(1)[0].Requirements)

	// Garurumon only declares evolves_from.
	assert.Equal(t, []int{8}, targets(g.Out(7)))
	assert.Len(t, g.In(3), 2)
}

func TestNewGraphSkipsMissingTargets(t *testing.T) {
	c, err := data.NewCatalog([]data.Digimon{
		{ID: 1, Number: 1, Slug: "a", Names: data.Names{"en": "A"}, Stage: data.StageRookie,
			EvolvesTo: []data.EvolutionLink{{ID: 2}, {ID: 99}}},
		{ID: 2, Number: 2, Slug: "b", Names: data.Names{"en": "B"}, Stage: data.StageChampion,
			EvolvesFrom: []data.EvolutionLink{{ID: 1}, {ID: 42}}},
	}, nil, nil, nil)
	require.NoError(t, err)

	g := NewGraph(c)
	assert.Equal(t, []int{2}, targets(g.Out(1)))
	assert.Empty(t, g.Out(99))
	assert.Len(t, g.In(2), 1)
}

func TestRoots(t *testing.T) {
	g := testGraph(t)
	var ids []int
	for _, d := range g.Roots() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []int{1, 7, 9}, ids)
}

// shape flattens a tree into "id" and "id*" (cycle) markers, depth first.
func shape(n *Node, forward bool) []string {
	label := ""
	if n.Cycle {
		label = "*"
	}
	out := []string{string(rune('0'+n.ID)) + label}
	kids := n.EvolvesFrom
	if forward {
		kids = n.EvolvesTo
	}
	for _, k := range kids {
		out = append(out, shape(k, forward)...)
	}
	return out
}

func TestTreeForwardStopsAtCycle(t *testing.T) {
	g := testGraph(t)

	tree, err := g.Tree(2, Forward, 3, "en")
	require.NoError(t, err)
	want := []string{"2", "6", "3", "4", "3*", "5"}
	if diff := cmp.Diff(want, shape(tree, true)); diff != "" {
		t.Errorf("tree shape (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Agumon", tree.Name)
	assert.Equal(t, "/api/image?src=digimon%2Fagumon.png", tree.Image)
	assert.Equal(t, data.ReqItem, tree.EvolvesTo[0].Requirements[0].Kind)
}

func TestTreeDepthLimits(t *testing.T) {
	g := testGraph(t)

	tree, err := g.Tree(1, Forward, 1, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, shape(tree, true))

	// Zero depth falls back to the default.
	tree, err = g.Tree(1, Forward, 0, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "6", "3", "4"}, shape(tree, true))

	// A huge depth is capped but still terminates on the 3<->4 loop.
	tree, err = g.Tree(3, Forward, 1000, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "4", "3*", "5"}, shape(tree, true))
}

func TestTreeBackwardAndBoth(t *testing.T) {
	g := testGraph(t)

	tree, err := g.Tree(5, Backward, MaxDepth, "ja")
	require.NoError(t, err)
	assert.Equal(t, "ウォーグレイモン", tree.Name)
	assert.Equal(t, []string{"5", "4", "3", "2", "1", "4*"}, shape(tree, false))

	tree, err = g.Tree(8, Both, 2, "en")
	require.NoError(t, err)
	assert.Empty(t, tree.EvolvesTo)
	require.Len(t, tree.EvolvesFrom, 1)
	assert.Equal(t, 7, tree.EvolvesFrom[0].ID)

	_, err = g.Tree(404, Forward, 3, "en")
	assert.ErrorIs(t, err, data.ErrNotFound)
}

func TestPath(t *testing.T) {
	g := testGraph(t)

	steps, err := g.Path(1, 5, "en")
	require.NoError(t, err)
	var ids []int
	for _, s := range steps {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids)
	assert.Empty(t, steps[0].Requirements)
	assert.Equal(t, "11", steps[1].Requirements[0].Value)

	steps, err = g.Path(2, 2, "en")
	require.NoError(t, err)
	assert.Len(t, steps, 1)

	_, err = g.Path(5, 1, "en")
	assert.ErrorIs(t, err, ErrNoPath)
	_, err = g.Path(7, 5, "en")
	assert.ErrorIs(t, err, ErrNoPath)
	_, err = g.Path(1, 404, "en")
	assert.ErrorIs(t, err, data.ErrNotFound)
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"": Forward, "forward": Forward, "backward": Backward, "both": Both} {
		got, ok := ParseDirection(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseDirection("sideways")
	assert.False(t, ok)
}

func TestCacheRebuildsPerCatalog(t *testing.T) {
	c1, err := data.LoadDir(fixtures)
	require.NoError(t, err)
	c2, err := data.LoadDir(fixtures)
	require.NoError(t, err)

	var gc Cache
	g1 := gc.For(c1)
	assert.Same(t, g1, gc.For(c1))
	assert.NotSame(t, g1, gc.For(c2))
}

func TestRoutes(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, data.NewSource(data.DirLoader(fixtures)), &Cache{}, zap.NewNop())

	tests := []struct {
		target string
		status int
	}{
		{"/api/evolution/agumon", http.StatusOK},
		{"/api/evolution/2?direction=both&depth=2", http.StatusOK},
		{"/api/evolution/2?direction=up", http.StatusBadRequest},
		{"/api/evolution/2?depth=deep", http.StatusBadRequest},
		{"/api/evolution/nobody", http.StatusNotFound},
		{"/api/evolution/path?from=koromon&to=wargreymon", http.StatusOK},
		{"/api/evolution/path?from=wargreymon&to=koromon", http.StatusNotFound},
		{"/api/evolution/path?from=koromon", http.StatusBadRequest},
		{"/api/evolution/roots", http.StatusOK},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
		assert.Equal(t, tt.status, rec.Code, tt.target)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/evolution/path?from=1&to=4", nil))
	var body struct {
		Steps  []Step `json:"steps"`
		Length int    `json:"length"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Length)
}

func countNodes(n *Node) (nodes int, truncated bool) {
	nodes, truncated = 1, n.Truncated
	for _, c := range append(append([]*Node{}, n.EvolvesTo...), n.EvolvesFrom...) {
		k, tr := countNodes(c)
		nodes += k
		truncated = truncated || tr
	}
	return nodes, truncated
}

func TestTreeStopsAtNodeBudget(t *testing.T) {
	// Every digimon evolves into every other one.
	const n = 12
	var mons []data.Digimon
	for i := 1; i <= n; i++ {
		d := data.Digimon{ID: i, Number: i, Slug: fmt.Sprintf("mon-%d", i),
			Names: data.Names{"en": fmt.Sprintf("Mon %d", i)}, Stage: data.StageRookie}
		for j := 1; j <= n; j++ {
			if j != i {
				d.EvolvesTo = append(d.EvolvesTo, data.EvolutionLink{ID: j})
			}
		}
		mons = append(mons, d)
	}
	c, err := data.NewCatalog(mons, nil, nil, nil)
	require.NoError(t, err)

	tree, err := NewGraph(c).Tree(1, Both, MaxDepth, "en")
	require.NoError(t, err)
	nodes, truncated := countNodes(tree)
	assert.Equal(t, MaxNodes, nodes)
	assert.True(t, truncated)

	// Small trees are untouched.
	tree, err = testGraph(t).Tree(1, Both, MaxDepth, "en")
	require.NoError(t, err)
	_, truncated = countNodes(tree)
	assert.False(t, truncated)
}
