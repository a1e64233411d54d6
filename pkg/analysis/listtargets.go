package analysis

import (
	"github.com/depscope/depscope/pkg/filter"
	"github.com/depscope/depscope/pkg/graph"
)

// ListTargets returns all target addresses, optionally reduced by a filter
// predicate, in lexical order.
func ListTargets(g *graph.Graph, p filter.Predicate) ([]string, error) {
	return filter.Apply(g, nil, p)
}
