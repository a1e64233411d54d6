package analysis

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/depscope/depscope/pkg/graph"
	"github.com/depscope/depscope/pkg/logging"
)

// TargetLineCount aggregates line counts for the source files owned by one
// target.
type TargetLineCount struct {
	Address string `json:"address"`
	Files   int    `json:"files"`
	Lines   int    `json:"lines"`
	Blank   int    `json:"blank"`
}

// CountLines reads the source files owned by each target in the set and
// totals their lines. Source paths are resolved relative to root. Files
// that cannot be read are skipped with a warning so one stale declaration
// does not sink the whole report. A nil set means all targets. Results are
// sorted by address.
func CountLines(g *graph.Graph, root string, set []string) ([]TargetLineCount, error) {
	if set == nil {
		set = g.Addresses()
	}

	counts := make([]TargetLineCount, 0, len(set))
	for _, addr := range set {
		t, ok := g.Target(addr)
		if !ok {
			return nil, &graph.MissingTargetError{Address: addr}
		}

		count := TargetLineCount{Address: addr}
		for _, src := range t.Sources {
			data, err := os.ReadFile(filepath.Join(root, src))
			if err != nil {
				logging.Warn("skipping unreadable source", "target", addr, "path", src, "error", err)
				continue
			}
			lines, blank := countLines(data)
			count.Files++
			count.Lines += lines
			count.Blank += blank
		}
		counts = append(counts, count)
	}

	sort.Slice(counts, func(i, j int) bool { return counts[i].Address < counts[j].Address })
	return counts, nil
}

// countLines returns the number of lines and how many of them are blank.
// A trailing newline does not start an extra line.
func countLines(data []byte) (lines, blank int) {
	if len(data) == 0 {
		return 0, 0
	}
	split := bytes.Split(data, []byte("\n"))
	if data[len(data)-1] == '\n' {
		split = split[:len(split)-1]
	}
	for _, line := range split {
		if len(bytes.TrimSpace(line)) == 0 {
			blank++
		}
	}
	return len(split), blank
}
