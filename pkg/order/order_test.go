package order

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/depscope/depscope/pkg/graph"
	"github.com/depscope/depscope/pkg/model"
)

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

func TestSortChain(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"A": {},
		"B": {"A"},
		"C": {"B"},
	})

	got, err := Sort(g, []string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("Expected [A B C], got %v", got)
	}
}

func TestSortDependenciesPrecedeDependents(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"A": {},
		"B": {"A"},
		"C": {"A", "B"},
		"D": {"B"},
		"E": {},
	})
	set := []string{"A", "B", "C", "D", "E"}

	got, err := Sort(g, set)
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if len(got) != len(set) {
		t.Fatalf("Expected %d members, got %v", len(set), got)
	}

	pos := make(map[string]int, len(got))
	for i, addr := range got {
		pos[addr] = i
	}
	for _, from := range set {
		for _, to := range g.DependenciesOf(from) {
			if _, ok := pos[to]; !ok {
				continue
			}
			if pos[to] >= pos[from] {
				t.Errorf("Dependency %s must precede %s in %v", to, from, got)
			}
		}
	}
}

func TestSortDeterministic(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"A": {},
		"B": {},
		"C": {},
		"D": {"A", "B", "C"},
	})

	first, err := Sort(g, []string{"D", "C", "B", "A"})
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Sort(g, []string{"A", "B", "C", "D"})
		if err != nil {
			t.Fatalf("Sort() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Non-deterministic order: %v vs %v", first, again)
		}
	}
}

func TestSortIgnoresEdgesLeavingSet(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"A": {},
		"B": {"A"},
		"C": {"B"},
	})

	// A is outside the set; only C -> B constrains the order.
	got, err := Sort(g, []string{"B", "C"})
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Errorf("Expected [B C], got %v", got)
	}
}

func TestSortCycleError(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"A": {"B"},
		"B": {"A"},
	})

	_, err := Sort(g, []string{"A", "B"})
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("Expected CycleError, got %v", err)
	}

	named := append([]string(nil), cycleErr.Cycle...)
	sort.Strings(named)
	if !reflect.DeepEqual(named, []string{"A", "B"}) {
		t.Errorf("Expected cycle naming {A B}, got %v", cycleErr.Cycle)
	}
}

func TestSortSelfLoop(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"A": {"A"},
	})

	_, err := Sort(g, []string{"A"})
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("Expected CycleError, got %v", err)
	}
	if !reflect.DeepEqual(cycleErr.Cycle, []string{"A"}) {
		t.Errorf("Expected cycle [A], got %v", cycleErr.Cycle)
	}
}

func TestSortCycleOutsideSetIgnored(t *testing.T) {
	// The A<->B cycle does not touch the ordered set.
	g := buildGraph(t, map[string][]string{
		"A": {"B"},
		"B": {"A"},
		"C": {},
		"D": {"C"},
	})

	got, err := Sort(g, []string{"C", "D"})
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"C", "D"}) {
		t.Errorf("Expected [C D], got %v", got)
	}
}

func TestSortMissingMember(t *testing.T) {
	g := buildGraph(t, map[string][]string{"A": {}})

	_, err := Sort(g, []string{"A", "ghost"})
	var missing *graph.MissingTargetError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingTargetError, got %v", err)
	}
}
