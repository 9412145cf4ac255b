package back

import (
	"context"

	"nikand.dev/go/heap"
	"tlog.app/go/tlog"

	"github.com/slowlang/regcolor/compiler/set"
	"github.com/slowlang/regcolor/compiler/tac"
)

type (
	// Assignment maps every colored temp to its register.
	Assignment map[tac.Temp]tac.Reg

	candidate struct {
		t    tac.Temp
		deg  int
		rank int
	}
)

// Color runs Simplify and Select on g and checks the result.
// g is consumed: its node set is empty afterwards.
func Color(ctx context.Context, g *Graph, regs tac.RegFile) (asg Assignment, err error) {
	stack, err := Simplify(ctx, g, regs.K())
	if err != nil {
		return nil, err
	}

	asg, err = Select(ctx, g, stack, regs)
	if err != nil {
		return nil, err
	}

	err = Verify(g, asg)
	if err != nil {
		return nil, err
	}

	return asg, nil
}

// Simplify removes nodes of degree < k one by one, lowest degree first,
// and returns them in removal order.
func Simplify(ctx context.Context, g *Graph, k int) (stack []tac.Temp, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "back: simplify", "nodes", g.Len(), "k", k)
	defer tr.Finish("err", &err)

	q := heap.Heap[candidate]{Less: candidateLess}

	for _, t := range g.Nodes() {
		if g.HasNode(t) {
			q.Push(candidate{t: t, deg: g.Degree(t), rank: g.rank(t)})
		}
	}

	stack = make([]tac.Temp, 0, g.Len())

	for g.Len() != 0 {
		if q.Len() == 0 {
			return nil, newInternal(tac.NoTemp, "worklist is empty with %d nodes left", g.Len())
		}

		c := q.Pop()

		if !g.HasNode(c.t) || g.Degree(c.t) != c.deg {
			continue // stale
		}

		if c.deg >= k {
			return nil, spillRequired(g, k)
		}

		g.Remove(c.t)
		stack = append(stack, c.t)

		tr.V("simplify").Printw("remove", "temp", c.t, "degree", c.deg, "left", g.Len())

		g.Neighbors(c.t).Range(func(n tac.Temp) bool {
			if g.HasNode(n) {
				q.Push(candidate{t: n, deg: g.Degree(n), rank: g.rank(n)})
			}

			return true
		})

		if tr.If("check_degrees") {
			if err = g.CheckDegrees(); err != nil {
				return nil, err
			}
		}
	}

	return stack, nil
}

// Select colors nodes in reverse removal order, each with the first
// register not taken by an already colored neighbour.
func Select(ctx context.Context, g *Graph, stack []tac.Temp, regs tac.RegFile) (asg Assignment, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "back: select", "nodes", len(stack), "k", regs.K())
	defer tr.Finish("err", &err)

	colors := make(map[tac.Temp]int, len(stack))

	var used set.Bits[int]

	for i := len(stack) - 1; i >= 0; i-- {
		t := stack[i]

		used.Reset()

		g.Neighbors(t).Range(func(n tac.Temp) bool {
			if c, ok := colors[n]; ok {
				used.Set(c)
			}

			return true
		})

		c := used.FirstUnset(regs.K())
		if c < 0 {
			return nil, newInternal(t, "no register left: %d neighbours colored, k %d", used.Size(), regs.K())
		}

		colors[t] = c

		tr.V("select").Printw("color", "temp", t, "reg", regs[c], "used", used)
	}

	asg = make(Assignment, len(colors))

	for t, c := range colors {
		asg[t] = regs[c]
	}

	return asg, nil
}

// Verify checks asg is a proper coloring of g.
func Verify(g *Graph, asg Assignment) error {
	for _, t := range g.Nodes() {
		if _, ok := asg[t]; !ok {
			return newInternal(t, "node left uncolored")
		}
	}

	for _, e := range g.Edges() {
		if asg[e[0]] == asg[e[1]] {
			return newInternal(e[0], "shares register %v with neighbour %d", asg[e[0]], int(e[1]))
		}
	}

	return nil
}

func spillRequired(g *Graph, k int) *SpillRequired {
	e := &SpillRequired{
		K:         k,
		Candidate: tac.NoTemp,
		Pressure:  g.Pressure,
	}

	maxdeg := -1

	for _, t := range g.Nodes() {
		if !g.HasNode(t) {
			continue
		}

		e.Stuck = append(e.Stuck, t)

		if d := g.Degree(t); d > maxdeg {
			maxdeg = d
			e.Candidate = t
		}
	}

	return e
}

func candidateLess(d []candidate, i, j int) bool {
	if d[i].deg != d[j].deg {
		return d[i].deg < d[j].deg
	}

	return d[i].rank < d[j].rank
}
