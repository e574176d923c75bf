package evolution

import (
	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/httpx"
)

// Node is one digimon in an evolution tree. Requirements are those of the
// edge leading to this node from its parent in the tree.
type Node struct {
	ID           int                `json:"id"`
	Slug         string             `json:"slug"`
	Name         string             `json:"name"`
	Stage        string             `json:"stage"`
	Image        string             `json:"image,omitempty"`
	Requirements []data.Requirement `json:"requirements,omitempty"`
	Cycle        bool               `json:"cycle,omitempty"`
	Truncated    bool               `json:"truncated,omitempty"`
	EvolvesTo    []*Node            `json:"evolves_to,omitempty"`
	EvolvesFrom  []*Node            `json:"evolves_from,omitempty"`
}

// Tree expands the graph around id up to depth levels. A node already on
// the current branch is emitted with Cycle set and is not expanded again.
// A tree stops growing at MaxNodes; nodes whose children were cut off
// carry Truncated.
func (g *Graph) Tree(id int, dir Direction, depth int, locale string) (*Node, error) {
	if !g.Has(id) {
		return nil, data.ErrNotFound
	}
	if depth <= 0 {
		depth = DefaultDepth
	}
	if depth > MaxDepth {
		depth = MaxDepth
	}

	x := &expander{g: g, locale: locale, branch: map[int]bool{id: true}, budget: MaxNodes - 1}
	root := g.node(id, nil, locale)
	if dir == Forward || dir == Both {
		root.EvolvesTo = x.expand(root, id, true, depth)
	}
	if dir == Backward || dir == Both {
		root.EvolvesFrom = x.expand(root, id, false, depth)
	}
	return root, nil
}

// expander carries the state of one Tree call.
type expander struct {
	g      *Graph
	locale string
	branch map[int]bool
	budget int
}

func (x *expander) expand(parent *Node, id int, forward bool, depth int) []*Node {
	if depth == 0 {
		return nil
	}
	edges := x.g.in[id]
	if forward {
		edges = x.g.out[id]
	}

	var children []*Node
	for _, e := range edges {
		if x.budget == 0 {
			parent.Truncated = true
			break
		}
		x.budget--

		next := e.From
		if forward {
			next = e.To
		}
		child := x.g.node(next, e.Requirements, x.locale)
		if x.branch[next] {
			child.Cycle = true
			children = append(children, child)
			continue
		}

		x.branch[next] = true
		sub := x.expand(child, next, forward, depth-1)
		delete(x.branch, next)

		if forward {
			child.EvolvesTo = sub
		} else {
			child.EvolvesFrom = sub
		}
		children = append(children, child)
	}
	return children
}

func (g *Graph) node(id int, reqs []data.Requirement, locale string) *Node {
	d := g.nodes[id]
	return &Node{
		ID:           d.ID,
		Slug:         d.Slug,
		Name:         d.Name(locale),
		Stage:        string(d.Stage),
		Image:        httpx.ImageURL(d.Image),
		Requirements: reqs,
	}
}

// Step is one hop on an evolution path. Requirements are those of the
// edge into this step and are empty for the first step.
type Step struct {
	ID           int                `json:"id"`
	Slug         string             `json:"slug"`
	Name         string             `json:"name"`
	Stage        string             `json:"stage"`
	Requirements []data.Requirement `json:"requirements"`
}

// Path returns the shortest forward evolution path from one digimon to
// another, found breadth first.
func (g *Graph) Path(from, to int, locale string) ([]Step, error) {
	if !g.Has(from) || !g.Has(to) {
		return nil, data.ErrNotFound
	}

	prev := map[int]Edge{}
	visited := map[int]bool{from: true}
	queue := []int{from}
	for len(queue) > 0 && !visited[to] {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.out[cur] {
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			prev[e.To] = e
			queue = append(queue, e.To)
		}
	}
	if !visited[to] {
		return nil, ErrNoPath
	}

	var rev []Step
	for cur := to; ; {
		d := g.nodes[cur]
		step := Step{
			ID:           d.ID,
			Slug:         d.Slug,
			Name:         d.Name(locale),
			Stage:        string(d.Stage),
			Requirements: []data.Requirement{},
		}
		e, ok := prev[cur]
		if !ok {
			rev = append(rev, step)
			break
		}
		if e.Requirements != nil {
			step.Requirements = e.Requirements
		}
		rev = append(rev, step)
		cur = e.From
	}

	steps := make([]Step, len(rev))
	for i := range rev {
		steps[i] = rev[len(rev)-1-i]
	}
	return steps, nil
}
