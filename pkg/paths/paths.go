// Package paths locates dependency paths between two targets.
package paths

import (
	"errors"
	"sort"

	"github.com/depscope/depscope/pkg/graph"
)

// ErrNoPath signals that the destination is unreachable from the origin.
// It is a result, not an internal failure; callers test for it with
// errors.Is.
var ErrNoPath = errors.New("no dependency path")

// Find returns the shortest dependency path from one target to another,
// following declared dependencies, inclusive of both endpoints.
// Find(a, a) returns [a]. Among equal-length paths the lexicographically
// smallest address sequence wins: breadth-first search expands neighbors in
// lexical order, so the first parent recorded for a node closes the
// smallest prefix.
func Find(g *graph.Graph, from, to string) ([]string, error) {
	for _, addr := range []string{from, to} {
		if !g.Contains(addr) {
			return nil, &graph.MissingTargetError{Address: addr}
		}
	}

	if from == to {
		return []string{from}, nil
	}

	parent := make(map[string]string)
	visited := map[string]bool{from: true}
	queue := []string{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		deps := g.DependenciesOf(current)
		sort.Strings(deps)
		for _, next := range deps {
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = current

			if next == to {
				return assemble(parent, from, to), nil
			}
			queue = append(queue, next)
		}
	}

	return nil, ErrNoPath
}

// assemble walks the parent chain backwards and reverses it.
func assemble(parent map[string]string, from, to string) []string {
	path := []string{to}
	for current := to; current != from; {
		current = parent[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
