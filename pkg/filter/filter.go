// Package filter evaluates boolean predicates over target attributes to
// select subsets of the graph. Predicates are composed values, not an
// inheritance hierarchy: every query component takes a graph and an optional
// predicate.
package filter

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/gobwas/glob"

	"github.com/depscope/depscope/pkg/graph"
	"github.com/depscope/depscope/pkg/model"
)

// Predicate selects targets by their attributes. Implementations must be
// side-effect free; the engine evaluates each predicate once per target.
type Predicate interface {
	Match(t *model.Target) bool
}

// InvalidPredicateError reports a malformed filter expression. It is
// returned before any traversal begins.
type InvalidPredicateError struct {
	Atom   string
	Reason string
}

func (e *InvalidPredicateError) Error() string {
	return fmt.Sprintf("invalid predicate %q: %s", e.Atom, e.Reason)
}

type predicateFunc func(*model.Target) bool

func (f predicateFunc) Match(t *model.Target) bool { return f(t) }

// All matches every target.
var All Predicate = predicateFunc(func(*model.Target) bool { return true })

// None matches no target.
var None Predicate = predicateFunc(func(*model.Target) bool { return false })

// KindIs matches targets of the given kind.
func KindIs(kind model.Kind) Predicate {
	return predicateFunc(func(t *model.Target) bool { return t.Kind == kind })
}

// HasTag matches targets carrying the given tag.
func HasTag(tag string) Predicate {
	return predicateFunc(func(t *model.Target) bool { return t.HasTag(tag) })
}

// AddressMatches matches targets whose address matches the regular
// expression.
func AddressMatches(pattern string) (Predicate, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &InvalidPredicateError{Atom: "address~" + pattern, Reason: err.Error()}
	}
	return predicateFunc(func(t *model.Target) bool { return re.MatchString(t.Address) }), nil
}

// OwnsSourceMatching matches targets owning any source file that matches
// the glob pattern.
func OwnsSourceMatching(pattern string) (Predicate, error) {
	gl, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, &InvalidPredicateError{Atom: "source=" + pattern, Reason: err.Error()}
	}
	return predicateFunc(func(t *model.Target) bool {
		for _, src := range t.Sources {
			if gl.Match(src) {
				return true
			}
		}
		return false
	}), nil
}

// And matches targets matched by every predicate. And() matches everything.
func And(ps ...Predicate) Predicate {
	return predicateFunc(func(t *model.Target) bool {
		for _, p := range ps {
			if !p.Match(t) {
				return false
			}
		}
		return true
	})
}

// Or matches targets matched by any predicate. Or() matches nothing.
func Or(ps ...Predicate) Predicate {
	return predicateFunc(func(t *model.Target) bool {
		for _, p := range ps {
			if p.Match(t) {
				return true
			}
		}
		return false
	})
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return predicateFunc(func(t *model.Target) bool { return !p.Match(t) })
}

// Apply evaluates the predicate against every candidate and returns the
// matching addresses in lexical order. An empty candidate set or a predicate
// matching nothing yields an empty result, not an error. A nil candidate
// slice means the whole graph.
func Apply(g *graph.Graph, candidates []string, p Predicate) ([]string, error) {
	if candidates == nil {
		candidates = g.Addresses()
	}
	if p == nil {
		p = All
	}

	var matched []string
	for _, addr := range candidates {
		t, ok := g.Target(addr)
		if !ok {
			return nil, &graph.MissingTargetError{Address: addr}
		}
		if p.Match(t) {
			matched = append(matched, addr)
		}
	}
	sort.Strings(matched)
	return matched, nil
}
