// Package cycles detects dependency cycles in the target graph using
// Tarjan's strongly connected components algorithm over the gonum backing.
package cycles

import (
	"sort"

	gograph "gonum.org/v1/gonum/graph"

	"github.com/depscope/depscope/pkg/graph"
)

// tarjan carries the traversal state for one SCC computation over a gonum
// directed graph.
type tarjan struct {
	directed gograph.Directed
	member   map[int64]bool // nil means every node participates
	index    int
	stack    []int64
	onStack  map[int64]bool
	indices  map[int64]int
	lowLink  map[int64]int
	sccs     [][]int64
}

// Find returns all dependency cycles in the graph: every strongly connected
// component with more than one member, plus single targets that depend on
// themselves. Each component is sorted lexically and components are ordered
// by their smallest member, so the output is deterministic regardless of
// node iteration order.
func Find(g *graph.Graph) [][]string {
	return find(g, nil)
}

// FindWithin restricts cycle detection to the subgraph induced by the given
// target set: only edges with both endpoints in the set are followed.
func FindWithin(g *graph.Graph, set []string) [][]string {
	member := make(map[int64]bool, len(set))
	for _, addr := range set {
		if id, ok := g.ID(addr); ok {
			member[id] = true
		}
	}
	return find(g, member)
}

func find(g *graph.Graph, member map[int64]bool) [][]string {
	t := &tarjan{
		directed: g.Directed(),
		member:   member,
		onStack:  make(map[int64]bool),
		indices:  make(map[int64]int),
		lowLink:  make(map[int64]int),
	}

	nodes := t.directed.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		if !t.in(id) {
			continue
		}
		if _, visited := t.indices[id]; !visited {
			t.strongConnect(id)
		}
	}

	inCycle := make(map[string]bool)
	var result [][]string
	for _, scc := range t.sccs {
		component := make([]string, 0, len(scc))
		for _, id := range scc {
			addr, _ := g.Address(id)
			component = append(component, addr)
			inCycle[addr] = true
		}
		sort.Strings(component)
		result = append(result, component)
	}

	// Self edges never reach the gonum graph; read them off the adjacency.
	// A self-looping member of a larger component is already reported.
	for _, addr := range g.Addresses() {
		if inCycle[addr] {
			continue
		}
		if id, ok := g.ID(addr); !ok || !t.in(id) {
			continue
		}
		for _, dep := range g.DependenciesOf(addr) {
			if dep == addr {
				result = append(result, []string{addr})
				break
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i][0] < result[j][0]
	})
	return result
}

func (t *tarjan) in(id int64) bool {
	return t.member == nil || t.member[id]
}

func (t *tarjan) strongConnect(id int64) {
	t.indices[id] = t.index
	t.lowLink[id] = t.index
	t.index++

	t.stack = append(t.stack, id)
	t.onStack[id] = true

	successors := t.directed.From(id)
	for successors.Next() {
		next := successors.Node().ID()
		if !t.in(next) {
			continue
		}
		if _, visited := t.indices[next]; !visited {
			t.strongConnect(next)
			t.lowLink[id] = min(t.lowLink[id], t.lowLink[next])
		} else if t.onStack[next] {
			t.lowLink[id] = min(t.lowLink[id], t.indices[next])
		}
	}

	// Root of a component: pop the stack down to this node.
	if t.lowLink[id] == t.indices[id] {
		var scc []int64
		for {
			top := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[top] = false
			scc = append(scc, top)
			if top == id {
				break
			}
		}
		if len(scc) > 1 {
			t.sccs = append(t.sccs, scc)
		}
	}
}
