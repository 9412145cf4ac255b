package back

import (
	"sort"

	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/regcolor/compiler/tac"
)

type (
	// Graph is an interference graph over temps.
	//
	// Removed nodes keep their adjacency rows, so coloring can look
	// at all neighbours while Degree counts only the present ones.
	Graph struct {
		nodes []tac.Temp // insertion order
		order []int      // temp -> insertion index + 1

		present BitsTemp
		adj     []BitsTemp
		deg     []int

		edges int

		// Pressure is the largest number of nodes live at once
		// right after a definition.
		Pressure int
	}
)

func NewGraph() *Graph {
	return &Graph{}
}

// AddNode adds t if it's not known yet.
func (g *Graph) AddNode(t tac.Temp) bool {
	if t < 0 {
		panic(t)
	}

	if g.Known(t) {
		return false
	}

	g.nodes = append(g.nodes, t)
	g.order = sliceSet(g.order, t, len(g.nodes))
	g.adj = sliceSet(g.adj, t, BitsTemp{})
	g.deg = sliceSet(g.deg, t, 0)
	g.present.Set(t)

	return true
}

// AddEdge adds a symmetric edge. Self loops and repeated edges are ignored.
func (g *Graph) AddEdge(a, b tac.Temp) bool {
	if !g.Known(a) || !g.Known(b) {
		panic("edge to unknown node")
	}

	if a == b || g.adj[a].IsSet(b) {
		return false
	}

	g.adj[a].Set(b)
	g.adj[b].Set(a)

	if g.present.IsSet(b) {
		g.deg[a]++
	}

	if g.present.IsSet(a) {
		g.deg[b]++
	}

	g.edges++

	return true
}

// Remove takes t out of the node set updating neighbours degrees.
func (g *Graph) Remove(t tac.Temp) {
	if !g.present.IsSet(t) {
		return
	}

	g.present.Clear(t)

	g.adj[t].Range(func(n tac.Temp) bool {
		if g.present.IsSet(n) {
			g.deg[n]--
		}

		return true
	})
}

// Known reports whether t was ever added.
func (g *Graph) Known(t tac.Temp) bool { return sliceGet(g.order, t) != 0 }

// HasNode reports whether t is in the current node set.
func (g *Graph) HasNode(t tac.Temp) bool { return g.present.IsSet(t) }

func (g *Graph) HasEdge(a, b tac.Temp) bool {
	return g.Known(a) && g.adj[a].IsSet(b)
}

func (g *Graph) Degree(t tac.Temp) int { return sliceGet(g.deg, t) }

// Neighbors returns all neighbours of t, removed included.
// The result must not be modified.
func (g *Graph) Neighbors(t tac.Temp) BitsTemp { return sliceGet(g.adj, t) }

// Nodes returns all nodes ever added in insertion order.
func (g *Graph) Nodes() []tac.Temp { return g.nodes }

// Len is the size of the current node set.
func (g *Graph) Len() int { return g.present.Size() }

func (g *Graph) NumEdges() int { return g.edges }

func (g *Graph) rank(t tac.Temp) int { return sliceGet(g.order, t) }

// Edges returns every edge once, as sorted {lo, hi} pairs.
func (g *Graph) Edges() [][2]tac.Temp {
	r := make([][2]tac.Temp, 0, g.edges)

	for _, a := range g.nodes {
		g.adj[a].Range(func(b tac.Temp) bool {
			if a < b {
				r = append(r, [2]tac.Temp{a, b})
			}

			return true
		})
	}

	sort.Slice(r, func(i, j int) bool {
		if r[i][0] != r[j][0] {
			return r[i][0] < r[j][0]
		}

		return r[i][1] < r[j][1]
	})

	return r
}

// CheckDegrees verifies every present node degree equals
// the number of its present neighbours.
func (g *Graph) CheckDegrees() error {
	for _, t := range g.nodes {
		if !g.present.IsSet(t) {
			continue
		}

		n := 0

		g.adj[t].Range(func(x tac.Temp) bool {
			if g.present.IsSet(x) {
				n++
			}

			return true
		})

		if n != g.deg[t] {
			return newInternal(t, "degree %d, present neighbours %d", g.deg[t], n)
		}
	}

	return nil
}

func (g *Graph) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	if g == nil {
		return e.AppendNil(b)
	}

	b = e.AppendMap(b, 4)

	b = e.AppendKeyInt(b, "nodes", len(g.nodes))
	b = e.AppendKeyInt(b, "present", g.Len())
	b = e.AppendKeyInt(b, "edges", g.edges)
	b = e.AppendKeyInt(b, "pressure", g.Pressure)

	return b
}
