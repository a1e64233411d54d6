// Package order produces deterministic dependency-respecting orderings of
// target sets.
package order

import (
	"fmt"
	"sort"
	"strings"

	"github.com/depscope/depscope/pkg/graph"
)

// CycleError reports that the input set contains a dependency cycle. Cycle
// holds the participating targets in traversal order.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// Three-color DFS marking.
const (
	white = iota // unvisited
	gray         // in progress
	black        // done
)

// Sort returns the members of the input set ordered so that dependencies
// precede their dependents: for every edge (a depends on b) with both
// endpoints in the set, b appears before a. Only edges internal to the set
// constrain the ordering. Ties are broken by lexical address order, so
// identical input always yields byte-identical output.
func Sort(g *graph.Graph, set []string) ([]string, error) {
	member := make(map[string]bool, len(set))
	for _, addr := range set {
		if !g.Contains(addr) {
			return nil, &graph.MissingTargetError{Address: addr}
		}
		member[addr] = true
	}

	roots := make([]string, 0, len(member))
	for addr := range member {
		roots = append(roots, addr)
	}
	sort.Strings(roots)

	color := make(map[string]int, len(member))
	var stack []string
	result := make([]string, 0, len(member))

	var visit func(addr string) error
	visit = func(addr string) error {
		color[addr] = gray
		stack = append(stack, addr)

		deps := g.DependenciesOf(addr)
		sort.Strings(deps)
		for _, dep := range deps {
			if !member[dep] {
				continue
			}
			switch color[dep] {
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			case gray:
				// Back edge: the cycle is the stack suffix starting at dep.
				start := 0
				for i, s := range stack {
					if s == dep {
						start = i
						break
					}
				}
				return &CycleError{Cycle: append([]string(nil), stack[start:]...)}
			}
		}

		stack = stack[:len(stack)-1]
		color[addr] = black
		result = append(result, addr)
		return nil
	}

	for _, addr := range roots {
		if color[addr] == white {
			if err := visit(addr); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}
