// Package evolution builds the digivolution graph and answers tree and
// shortest-path queries over it.
package evolution

import (
	"errors"
	"sort"
	"sync"

	"github.com/digiguide/digiguide/internal/data"
)

// ErrNoPath means the target cannot be reached by forward evolution.
var ErrNoPath = errors.New("no evolution path")

// Depth and size bounds for Tree.
const (
	DefaultDepth = 3
	MaxDepth     = 10
	MaxNodes     = 2000
)

// Direction selects which edges a tree follows.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
	Both     Direction = "both"
)

// ParseDirection maps a query value onto a Direction. Empty means Forward.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case "", Forward:
		return Forward, true
	case Backward, Both:
		return Direction(s), true
	}
	return "", false
}

// Edge is a directed evolution from one digimon to another.
type Edge struct {
	From         int
	To           int
	Requirements []data.Requirement
}

// Graph is the evolution graph of one catalog.
type Graph struct {
	nodes map[int]*data.Digimon
	out   map[int][]Edge
	in    map[int][]Edge
}

// NewGraph merges EvolvesTo and EvolvesFrom links into one edge set.
// Links to unknown digimon are skipped; a duplicate edge keeps the first
// non-empty requirement list.
func NewGraph(c *data.Catalog) *Graph {
	g := &Graph{
		nodes: make(map[int]*data.Digimon, len(c.Digimon)),
		out:   map[int][]Edge{},
		in:    map[int][]Edge{},
	}
	for i := range c.Digimon {
		g.nodes[c.Digimon[i].ID] = &c.Digimon[i]
	}

	seen := map[[2]int]int{}
	add := func(from, to int, reqs []data.Requirement) {
		if g.nodes[from] == nil || g.nodes[to] == nil {
			return
		}
		key := [2]int{from, to}
		if idx, ok := seen[key]; ok {
			if len(g.out[from][idx].Requirements) == 0 && len(reqs) > 0 {
				g.out[from][idx].Requirements = reqs
			}
			return
		}
		seen[key] = len(g.out[from])
		g.out[from] = append(g.out[from], Edge{From: from, To: to, Requirements: reqs})
	}
	for i := range c.Digimon {
		d := &c.Digimon[i]
		for _, l := range d.EvolvesTo {
			add(d.ID, l.ID, l.Requirements)
		}
		for _, l := range d.EvolvesFrom {
			add(l.ID, d.ID, l.Requirements)
		}
	}

	for from := range g.out {
		g.sortEdges(g.out[from], func(e Edge) int { return e.To })
		for _, e := range g.out[from] {
			g.in[e.To] = append(g.in[e.To], e)
		}
	}
	for to := range g.in {
		g.sortEdges(g.in[to], func(e Edge) int { return e.From })
	}
	return g
}

// sortEdges orders edges by the stage, then number, of the endpoint
// picked by end.
func (g *Graph) sortEdges(edges []Edge, end func(Edge) int) {
	sort.SliceStable(edges, func(i, j int) bool {
		a, b := g.nodes[end(edges[i])], g.nodes[end(edges[j])]
		if a.Stage.Order() != b.Stage.Order() {
			return a.Stage.Order() < b.Stage.Order()
		}
		return a.Number < b.Number
	})
}

// Out returns the forward edges from id.
func (g *Graph) Out(id int) []Edge { return g.out[id] }

// In returns the edges leading into id.
func (g *Graph) In(id int) []Edge { return g.in[id] }

// Has reports whether id is in the graph.
func (g *Graph) Has(id int) bool { return g.nodes[id] != nil }

// Roots returns the digimon with no incoming edges, by number.
func (g *Graph) Roots() []*data.Digimon {
	var roots []*data.Digimon
	for id, d := range g.nodes {
		if len(g.in[id]) == 0 {
			roots = append(roots, d)
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].Number != roots[j].Number {
			return roots[i].Number < roots[j].Number
		}
		return roots[i].ID < roots[j].ID
	})
	return roots
}

// Cache keeps the graph of the most recent catalog.
type Cache struct {
	mu      sync.Mutex
	catalog *data.Catalog
	graph   *Graph
}

// For returns the graph of c, building it on first use.
func (gc *Cache) For(c *data.Catalog) *Graph {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if gc.catalog != c {
		gc.catalog, gc.graph = c, NewGraph(c)
	}
	return gc.graph
}
