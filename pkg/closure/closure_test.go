package closure

import (
	"errors"
	"testing"

	"github.com/depscope/depscope/pkg/graph"
	"github.com/depscope/depscope/pkg/model"
)

// buildGraph constructs the graph from an address -> deps edge list.
func buildGraph(t *testing.T, edges map[string][]string) *graph.Graph {
	t.Helper()
	specs := make([]model.TargetSpec, 0, len(edges))
	for addr, deps := range edges {
		specs = append(specs, model.TargetSpec{Address: addr, Kind: model.KindLibrary, Deps: deps})
	}
	g, err := graph.Build(specs)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func sameSet(got map[string]bool, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for _, addr := range want {
		if !got[addr] {
			return false
		}
	}
	return true
}

func TestForwardClosure(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"A": {},
		"B": {"A"},
		"C": {"B"},
		"D": {"A"},
	})

	got, err := Forward(g, []string{"C"}, Options{Transitive: true})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if !sameSet(got, "C", "B", "A") {
		t.Errorf("Expected {C B A}, got %v", got)
	}
}

func TestBackwardClosure(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"A": {},
		"B": {"A"},
		"C": {"B"},
		"D": {"A"},
	})

	got, err := Backward(g, []string{"A"}, Options{Transitive: true})
	if err != nil {
		t.Fatalf("Backward() error = %v", err)
	}
	if !sameSet(got, "A", "B", "C", "D") {
		t.Errorf("Expected {A B C D}, got %v", got)
	}
}

func TestClosureIncludesRootsAndIsClosed(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"A": {},
		"B": {"A"},
		"C": {"B", "A"},
		"D": {"C"},
		"E": {},
	})

	got, err := Forward(g, []string{"D", "E"}, Options{Transitive: true})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}

	for _, root := range []string{"D", "E"} {
		if !got[root] {
			t.Errorf("Root %s missing from its own closure", root)
		}
	}

	// Closed under one more hop: no member has an unincluded dependency.
	for addr := range got {
		for _, dep := range g.DependenciesOf(addr) {
			if !got[dep] {
				t.Errorf("Closure not closed: %s -> %s missing", addr, dep)
			}
		}
	}
}

func TestInverseLaw(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"A": {},
		"B": {"A"},
		"C": {"B"},
		"D": {"A"},
		"E": {},
	})

	// b in backward({a}) iff a in forward({b}), for all pairs.
	for _, a := range g.Addresses() {
		back, err := Backward(g, []string{a}, Options{Transitive: true})
		if err != nil {
			t.Fatalf("Backward(%s) error = %v", a, err)
		}
		for _, b := range g.Addresses() {
			fwd, err := Forward(g, []string{b}, Options{Transitive: true})
			if err != nil {
				t.Fatalf("Forward(%s) error = %v", b, err)
			}
			if back[b] != fwd[a] {
				t.Errorf("Inverse law violated for a=%s b=%s: backward=%t forward=%t",
					a, b, back[b], fwd[a])
			}
		}
	}
}

func TestNonTransitiveStopsAtOneHop(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"A": {},
		"B": {"A"},
		"C": {"B"},
	})

	got, err := Forward(g, []string{"C"}, Options{Transitive: false})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if !sameSet(got, "C", "B") {
		t.Errorf("Expected one hop {C B}, got %v", got)
	}

	back, err := Backward(g, []string{"A"}, Options{Transitive: false})
	if err != nil {
		t.Fatalf("Backward() error = %v", err)
	}
	if !sameSet(back, "A", "B") {
		t.Errorf("Expected one hop {A B}, got %v", back)
	}
}

func TestClosureTerminatesOnCycle(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"A": {"B"},
		"B": {"A"},
		"C": {"A"},
	})

	got, err := Forward(g, []string{"C"}, Options{Transitive: true})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if !sameSet(got, "A", "B", "C") {
		t.Errorf("Expected {A B C}, got %v", got)
	}
}

func TestMissingRoot(t *testing.T) {
	g := buildGraph(t, map[string][]string{"A": {}})

	_, err := Forward(g, []string{"nope"}, Options{Transitive: true})
	var missing *graph.MissingTargetError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingTargetError, got %v", err)
	}
	if missing.Address != "nope" {
		t.Errorf("Expected offending address nope, got %s", missing.Address)
	}
}
