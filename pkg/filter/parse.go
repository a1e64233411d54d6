package filter

import (
	"strings"

	"github.com/depscope/depscope/pkg/model"
)

// Parse builds a predicate from the textual filter expression used by the
// CLI and the query API. The expression is a sequence of whitespace-
// separated atoms combined with AND; the keyword "or" separates AND-groups
// (AND binds tighter than OR). A leading "!" negates an atom.
//
// Atoms:
//
//	kind=KIND      kind equality
//	tag=TAG        tag membership
//	address~RE     address regular-expression match
//	source=GLOB    any owned source file matches the glob
//
// Malformed expressions return InvalidPredicateError before any traversal.
func Parse(expr string) (Predicate, error) {
	tokens := strings.Fields(expr)
	if len(tokens) == 0 {
		return nil, &InvalidPredicateError{Atom: expr, Reason: "empty expression"}
	}

	var groups []Predicate
	var current []Predicate

	flush := func() error {
		if len(current) == 0 {
			return &InvalidPredicateError{Atom: expr, Reason: "empty clause around \"or\""}
		}
		groups = append(groups, And(current...))
		current = nil
		return nil
	}

	for _, token := range tokens {
		if strings.EqualFold(token, "or") {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		atom, err := parseAtom(token)
		if err != nil {
			return nil, err
		}
		current = append(current, atom)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if len(groups) == 1 {
		return groups[0], nil
	}
	return Or(groups...), nil
}

func parseAtom(token string) (Predicate, error) {
	negate := false
	if strings.HasPrefix(token, "!") {
		negate = true
		token = token[1:]
	}

	var p Predicate
	var err error
	switch {
	case strings.HasPrefix(token, "kind="):
		p = KindIs(model.Kind(token[len("kind="):]))
	case strings.HasPrefix(token, "tag="):
		p = HasTag(token[len("tag="):])
	case strings.HasPrefix(token, "address~"):
		p, err = AddressMatches(token[len("address~"):])
	case strings.HasPrefix(token, "source="):
		p, err = OwnsSourceMatching(token[len("source="):])
	default:
		return nil, &InvalidPredicateError{Atom: token, Reason: "unknown atom"}
	}
	if err != nil {
		return nil, err
	}

	if negate {
		p = Not(p)
	}
	return p, nil
}
