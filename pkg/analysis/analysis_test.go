package analysis

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/depscope/depscope/pkg/graph"
	"github.com/depscope/depscope/pkg/model"
)

func buildGraph(t *testing.T, specs []model.TargetSpec) *graph.Graph {
	t.Helper()
	g, err := graph.Build(specs)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func TestFileMap(t *testing.T) {
	g := buildGraph(t, []model.TargetSpec{
		{Address: "//core:engine", Kind: model.KindLibrary,
			Sources: []string{"core/engine.go", "core/shared.go"}},
		{Address: "//core:cli", Kind: model.KindBinary,
			Sources: []string{"core/main.go", "core/shared.go"}},
		{Address: "//docs:manual", Kind: model.KindResource},
	})

	got := FileMap(g)
	want := map[string][]string{
		"core/engine.go": {"//core:engine"},
		"core/main.go":   {"//core:cli"},
		"core/shared.go": {"//core:cli", "//core:engine"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestTargetsOwning(t *testing.T) {
	g := buildGraph(t, []model.TargetSpec{
		{Address: "//core:engine", Kind: model.KindLibrary, Sources: []string{"core/engine.go"}},
		{Address: "//util:strings", Kind: model.KindLibrary, Sources: []string{"util/strings.go"}},
	})

	got := TargetsOwning(g, []string{"core/engine.go", "nobody/owns.go", "core/engine.go"})
	if !reflect.DeepEqual(got, []string{"//core:engine"}) {
		t.Errorf("Expected [//core:engine], got %v", got)
	}
}

func TestCountLines(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "core"), 0o755); err != nil {
		t.Fatal(err)
	}
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("core/engine.go", "package core\n\nfunc Run() {}\n")
	write("core/empty.go", "")

	g := buildGraph(t, []model.TargetSpec{
		{Address: "//core:engine", Kind: model.KindLibrary,
			Sources: []string{"core/engine.go", "core/empty.go", "core/missing.go"}},
		{Address: "//docs:manual", Kind: model.KindResource},
	})

	got, err := CountLines(g, root, nil)
	if err != nil {
		t.Fatalf("CountLines() error = %v", err)
	}
	want := []TargetLineCount{
		{Address: "//core:engine", Files: 2, Lines: 3, Blank: 1},
		{Address: "//docs:manual"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestCountLinesSubset(t *testing.T) {
	g := buildGraph(t, []model.TargetSpec{
		{Address: "//a:a", Kind: model.KindLibrary},
		{Address: "//b:b", Kind: model.KindLibrary},
	})

	got, err := CountLines(g, t.TempDir(), []string{"//b:b"})
	if err != nil {
		t.Fatalf("CountLines() error = %v", err)
	}
	if len(got) != 1 || got[0].Address != "//b:b" {
		t.Errorf("Expected counts for //b:b only, got %+v", got)
	}
}

func TestCountLinesHelper(t *testing.T) {
	tests := []struct {
		data        string
		lines, blank int
	}{
		{"", 0, 0},
		{"one", 1, 0},
		{"one\n", 1, 0},
		{"one\ntwo\n", 2, 0},
		{"one\n\nthree\n", 3, 1},
		{"\t  \n", 1, 1},
	}
	for _, tt := range tests {
		lines, blank := countLines([]byte(tt.data))
		if lines != tt.lines || blank != tt.blank {
			t.Errorf("countLines(%q) = (%d, %d), want (%d, %d)",
				tt.data, lines, blank, tt.lines, tt.blank)
		}
	}
}
