// Package analysis provides thin consumers over the target graph: the
// file-to-target mapping and per-target line counting. They read source
// paths off targets already present in the graph and add no traversal of
// their own.
package analysis

import (
	"sort"

	"github.com/depscope/depscope/pkg/graph"
)

// FileMap returns the mapping from source file path to the addresses of the
// targets that own it. Owner lists are sorted; a file owned by several
// targets lists them all.
func FileMap(g *graph.Graph) map[string][]string {
	owners := make(map[string][]string)
	for _, addr := range g.Addresses() {
		t, _ := g.Target(addr)
		for _, src := range t.Sources {
			owners[src] = append(owners[src], addr)
		}
	}
	for src := range owners {
		sort.Strings(owners[src])
	}
	return owners
}

// TargetsOwning returns the addresses of all targets owning any of the given
// source paths, sorted and deduplicated. Paths owned by no target are
// skipped.
func TargetsOwning(g *graph.Graph, paths []string) []string {
	owners := FileMap(g)
	seen := make(map[string]bool)
	var result []string
	for _, path := range paths {
		for _, addr := range owners[path] {
			if !seen[addr] {
				seen[addr] = true
				result = append(result, addr)
			}
		}
	}
	sort.Strings(result)
	return result
}
