package output

import (
	"fmt"
	"sort"

	"github.com/fatih/color"

	"github.com/depscope/depscope/pkg/analysis"
)

// PrintAddresses prints a set of target addresses, one per line, under a
// bold heading.
func PrintAddresses(heading string, addrs []string) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	bold.Printf("%s (%d)\n", heading, len(addrs))
	for _, addr := range addrs {
		cyan.Printf("  %s\n", addr)
	}
}

// PrintSet prints a result set in lexical order.
func PrintSet(heading string, set map[string]bool) {
	addrs := make([]string, 0, len(set))
	for addr := range set {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	PrintAddresses(heading, addrs)
}

// PrintPath prints a dependency path as an arrow chain.
func PrintPath(path []string) {
	cyan := color.New(color.FgCyan)
	for i, addr := range path {
		if i > 0 {
			fmt.Print(" -> ")
		}
		cyan.Print(addr)
	}
	fmt.Println()
}

// PrintNoPath reports an unreachable destination.
func PrintNoPath(from, to string) {
	yellow := color.New(color.FgYellow)
	yellow.Printf("no dependency path from %s to %s\n", from, to)
}

// PrintCycles prints detected dependency cycles, or a green all-clear.
func PrintCycles(cycles [][]string) {
	if len(cycles) == 0 {
		green := color.New(color.FgGreen)
		green.Println("✓ No dependency cycles detected")
		return
	}

	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	red.Printf("Found %d dependency cycle(s):\n", len(cycles))
	for i, cycle := range cycles {
		fmt.Printf("  [%d] ", i+1)
		for j, addr := range cycle {
			if j > 0 {
				fmt.Print(" <-> ")
			}
			yellow.Print(addr)
		}
		fmt.Println()
	}
}

// PrintFileMap prints the file-to-target mapping sorted by path.
func PrintFileMap(owners map[string][]string) {
	paths := make([]string, 0, len(owners))
	for path := range owners {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	cyan := color.New(color.FgCyan)
	for _, path := range paths {
		fmt.Printf("%s\n", path)
		for _, addr := range owners[path] {
			cyan.Printf("  %s\n", addr)
		}
	}
}

// PrintLineCounts prints per-target line totals with a summary row.
func PrintLineCounts(counts []analysis.TargetLineCount) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	bold.Printf("%-50s %8s %8s %8s\n", "TARGET", "FILES", "LINES", "BLANK")
	var files, lines, blank int
	for _, c := range counts {
		cyan.Printf("%-50s", c.Address)
		fmt.Printf(" %8d %8d %8d\n", c.Files, c.Lines, c.Blank)
		files += c.Files
		lines += c.Lines
		blank += c.Blank
	}
	bold.Printf("%-50s %8d %8d %8d\n", "TOTAL", files, lines, blank)
}
