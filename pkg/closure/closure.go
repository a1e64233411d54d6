// Package closure computes transitive closures over the target graph:
// forward ("what does this set depend on") and backward ("what depends on
// this set", i.e. dependees).
package closure

import (
	"github.com/depscope/depscope/pkg/graph"
)

// Options controls closure traversal.
type Options struct {
	// Transitive selects full reachability. When false only direct
	// neighbors (one hop) are added to the roots.
	Transitive bool
}

// Forward returns the set of targets reachable from the roots by following
// declared dependencies. Roots are included in the result. Each node is
// visited at most once, so traversal terminates even on cyclic graphs.
func Forward(g *graph.Graph, roots []string, opts Options) (map[string]bool, error) {
	return walk(g, roots, opts, g.DependenciesOf)
}

// Backward returns the set of targets that depend on the roots, directly or
// transitively (the dependees). Roots are included in the result.
func Backward(g *graph.Graph, roots []string, opts Options) (map[string]bool, error) {
	return walk(g, roots, opts, g.DependentsOf)
}

func walk(g *graph.Graph, roots []string, opts Options, neighbors func(string) []string) (map[string]bool, error) {
	visited := make(map[string]bool, len(roots))
	queue := make([]string, 0, len(roots))

	for _, root := range roots {
		if !g.Contains(root) {
			return nil, &graph.MissingTargetError{Address: root}
		}
		if visited[root] {
			continue
		}
		visited[root] = true
		queue = append(queue, root)
	}

	if !opts.Transitive {
		for _, root := range queue {
			for _, next := range neighbors(root) {
				visited[next] = true
			}
		}
		return visited, nil
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range neighbors(current) {
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}

	return visited, nil
}
