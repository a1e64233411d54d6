// Package cover reduces a target set to the smallest subset whose combined
// forward closure still covers the whole set.
package cover

import (
	"sort"

	"github.com/depscope/depscope/pkg/closure"
	"github.com/depscope/depscope/pkg/graph"
)

// Minimal returns the smallest subset C of the input set such that every
// member of the set is reachable from C. A member is redundant when another
// member reaches it; redundancy is decided from closure membership alone, so
// the result does not depend on input order. Members that are mutually
// reachable (a cycle inside the set, possibly through targets outside it)
// collapse to their lexicographically smallest address. The result is sorted.
func Minimal(g *graph.Graph, set []string) ([]string, error) {
	members := make([]string, 0, len(set))
	seen := make(map[string]bool, len(set))
	for _, addr := range set {
		if seen[addr] {
			continue
		}
		seen[addr] = true
		members = append(members, addr)
	}
	sort.Strings(members)

	reaches := make(map[string]map[string]bool, len(members))
	for _, addr := range members {
		fc, err := closure.Forward(g, []string{addr}, closure.Options{Transitive: true})
		if err != nil {
			return nil, err
		}
		reaches[addr] = fc
	}

	var result []string
	for _, t := range members {
		covered := false
		for _, u := range members {
			if u == t || !reaches[u][t] {
				continue
			}
			if reaches[t][u] {
				// Mutually reachable: only the smallest address of the
				// class survives, and members is sorted, so any smaller
				// equivalent u displaces t.
				if u < t {
					covered = true
					break
				}
				continue
			}
			covered = true
			break
		}
		if !covered {
			result = append(result, t)
		}
	}

	return result, nil
}
