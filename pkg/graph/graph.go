package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/depscope/depscope/pkg/model"
)

// Graph is an immutable dependency graph of build targets for one analysis
// session. Forward adjacency preserves declaration order; reverse adjacency
// is derived eagerly during Build so it can never go stale. All analysis
// packages borrow the graph read-only and return fresh collections.
type Graph struct {
	directed *simple.DirectedGraph
	targets  map[string]*model.Target
	ids      map[string]int64 // address -> gonum node ID
	byID     map[int64]string // gonum node ID -> address
	forward  map[string][]string
	reverse  map[string][]string // sorted
}

// Build constructs a graph from materialized target declarations. It rejects
// duplicate addresses and dependency addresses that do not resolve to a
// declared target. The returned graph is complete, including reverse
// adjacency, before any caller can observe it.
func Build(specs []model.TargetSpec) (*Graph, error) {
	g := &Graph{
		directed: simple.NewDirectedGraph(),
		targets:  make(map[string]*model.Target, len(specs)),
		ids:      make(map[string]int64, len(specs)),
		byID:     make(map[int64]string, len(specs)),
		forward:  make(map[string][]string, len(specs)),
		reverse:  make(map[string][]string, len(specs)),
	}

	// First pass: register every target so dependency resolution can see
	// forward declarations.
	for i := range specs {
		spec := &specs[i]
		if _, exists := g.targets[spec.Address]; exists {
			return nil, &DuplicateTargetError{Address: spec.Address}
		}

		id := int64(len(g.ids))
		g.ids[spec.Address] = id
		g.byID[id] = spec.Address
		g.directed.AddNode(simple.Node(id))

		g.targets[spec.Address] = &model.Target{
			Address: spec.Address,
			Kind:    spec.Kind,
			Tags:    append([]string(nil), spec.Tags...),
			Sources: append([]string(nil), spec.Sources...),
		}
	}

	// Second pass: resolve edges. Duplicates in a declaration list are
	// dropped; the first occurrence fixes the position.
	for i := range specs {
		spec := &specs[i]
		seen := make(map[string]bool, len(spec.Deps))
		for _, dep := range spec.Deps {
			if seen[dep] {
				continue
			}
			seen[dep] = true

			if _, exists := g.targets[dep]; !exists {
				return nil, &MissingTargetError{Address: dep, DeclaredBy: spec.Address}
			}

			g.forward[spec.Address] = append(g.forward[spec.Address], dep)
			g.reverse[dep] = append(g.reverse[dep], spec.Address)

			// gonum's simple graph rejects self edges; the adjacency maps
			// still record them so cycle detection sees the loop.
			if dep != spec.Address {
				from := g.directed.Node(g.ids[spec.Address])
				to := g.directed.Node(g.ids[dep])
				g.directed.SetEdge(g.directed.NewEdge(from, to))
			}
		}
		g.targets[spec.Address].Deps = append([]string(nil), g.forward[spec.Address]...)
	}

	for addr := range g.reverse {
		sort.Strings(g.reverse[addr])
	}

	return g, nil
}

// Target returns the target at the given address.
func (g *Graph) Target(addr string) (*model.Target, bool) {
	t, ok := g.targets[addr]
	return t, ok
}

// Contains reports whether the address resolves to a target.
func (g *Graph) Contains(addr string) bool {
	_, ok := g.targets[addr]
	return ok
}

// Len returns the number of targets in the graph.
func (g *Graph) Len() int {
	return len(g.targets)
}

// Addresses returns all target addresses in lexical order.
func (g *Graph) Addresses() []string {
	addrs := make([]string, 0, len(g.targets))
	for addr := range g.targets {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

// DependenciesOf returns the declared dependencies of a target in
// declaration order with duplicates removed. The result is a copy.
func (g *Graph) DependenciesOf(addr string) []string {
	return append([]string(nil), g.forward[addr]...)
}

// DependentsOf returns the addresses that declare a dependency on the given
// target, in lexical order. The result is a copy.
func (g *Graph) DependentsOf(addr string) []string {
	return append([]string(nil), g.reverse[addr]...)
}

// Edges returns all dependency edges as [from, to] pairs, ordered by
// declaring target and declaration position.
func (g *Graph) Edges() [][2]string {
	var edges [][2]string
	for _, from := range g.Addresses() {
		for _, to := range g.forward[from] {
			edges = append(edges, [2]string{from, to})
		}
	}
	return edges
}

// Directed exposes the underlying gonum graph for algorithms that want the
// generic directed-graph interface. Callers must not mutate it.
func (g *Graph) Directed() *simple.DirectedGraph {
	return g.directed
}

// Address translates a gonum node ID back to a target address.
func (g *Graph) Address(id int64) (string, bool) {
	addr, ok := g.byID[id]
	return addr, ok
}

// ID translates a target address to its gonum node ID.
func (g *Graph) ID(addr string) (int64, bool) {
	id, ok := g.ids[addr]
	return id, ok
}
