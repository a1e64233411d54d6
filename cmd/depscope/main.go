package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/depscope/depscope/pkg/analysis"
	"github.com/depscope/depscope/pkg/closure"
	"github.com/depscope/depscope/pkg/config"
	"github.com/depscope/depscope/pkg/cover"
	"github.com/depscope/depscope/pkg/cycles"
	"github.com/depscope/depscope/pkg/filter"
	"github.com/depscope/depscope/pkg/graph"
	"github.com/depscope/depscope/pkg/loader"
	"github.com/depscope/depscope/pkg/logging"
	"github.com/depscope/depscope/pkg/order"
	"github.com/depscope/depscope/pkg/output"
	"github.com/depscope/depscope/pkg/paths"
	"github.com/depscope/depscope/pkg/watcher"
	"github.com/depscope/depscope/pkg/web"
)

const usageText = `Usage: depscope [flags] <command> [targets...]

Commands:
  deps <targets...>          Targets the given targets depend on
  dependees <targets...>     Targets that depend on the given targets
  minimal-cover <targets...> Smallest subset covering the set's closure
  sort [targets...]          Dependency-respecting order (all targets if none given)
  paths <from> <to>          Shortest dependency path between two targets
  filter <expr...>           Targets matching a predicate expression
  listtargets                All targets (honors --filter)
  filemap                    Source file to target mapping
  cloc [targets...]          Line counts for owned source files
  cycles                     Dependency cycles in the graph
  serve                      Run the query API server

Predicate atoms: kind=KIND tag=TAG address~RE source=GLOB, combined with
whitespace (AND), "or", and a leading "!" for negation.

Flags:
`

func main() {
	flags := pflag.NewFlagSet("depscope", pflag.ExitOnError)
	flags.String("snapshot", "targets.json", "Path to the target-declaration snapshot")
	flags.String("source-root", ".", "Root directory that source paths are resolved against")
	flags.Bool("web", false, "Start the query API server instead of running a command")
	flags.Int("port", 8080, "Port for the query API server")
	flags.Bool("watch", false, "Rebuild the graph when the snapshot changes (server mode)")
	flags.Bool("json-logs", false, "Emit logs as JSON")
	flags.CountP("verbose", "v", "Increase log verbosity")
	transitive := flags.Bool("transitive", true, "Follow dependencies transitively")
	filterExpr := flags.String("filter", "", "Predicate expression applied to the result set")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usageText)
		fmt.Fprintln(os.Stderr, flags.FlagUsages())
	}
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.VerboseCnt > 0 {
		level = slog.LevelDebug
	}
	if cfg.JSONLogs {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}

	args := flags.Args()
	if cfg.WebMode || (len(args) > 0 && args[0] == "serve") {
		runServer(cfg)
		return
	}
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	g, err := buildGraph(cfg.Snapshot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := runCommand(g, cfg, args[0], args[1:], *transitive, *filterExpr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildGraph(snapshot string) (*graph.Graph, error) {
	specs, err := loader.Load(snapshot)
	if err != nil {
		return nil, err
	}
	g, err := graph.Build(specs)
	if err != nil {
		return nil, err
	}
	logging.Debug("graph built", "targets", g.Len(), "snapshot", snapshot)
	return g, nil
}

func runCommand(g *graph.Graph, cfg *config.Config, verb string, operands []string, transitive bool, filterExpr string) error {
	switch verb {
	case "deps":
		if len(operands) == 0 {
			return fmt.Errorf("deps requires at least one target")
		}
		set, err := closure.Forward(g, operands, closure.Options{Transitive: transitive})
		if err != nil {
			return err
		}
		return printFiltered(g, "Dependencies", set, filterExpr)

	case "dependees":
		if len(operands) == 0 {
			return fmt.Errorf("dependees requires at least one target")
		}
		set, err := closure.Backward(g, operands, closure.Options{Transitive: transitive})
		if err != nil {
			return err
		}
		return printFiltered(g, "Dependees", set, filterExpr)

	case "minimal-cover":
		if len(operands) == 0 {
			return fmt.Errorf("minimal-cover requires at least one target")
		}
		result, err := cover.Minimal(g, operands)
		if err != nil {
			return err
		}
		output.PrintAddresses("Minimal cover", result)
		return nil

	case "sort":
		set := operands
		if len(set) == 0 {
			set = g.Addresses()
		}
		result, err := order.Sort(g, set)
		var cycleErr *order.CycleError
		if errors.As(err, &cycleErr) {
			output.PrintCycles([][]string{cycleErr.Cycle})
			return err
		}
		if err != nil {
			return err
		}
		output.PrintAddresses("Topological order", result)
		return nil

	case "paths":
		if len(operands) != 2 {
			return fmt.Errorf("paths requires exactly two targets: <from> <to>")
		}
		path, err := paths.Find(g, operands[0], operands[1])
		if errors.Is(err, paths.ErrNoPath) {
			output.PrintNoPath(operands[0], operands[1])
			return nil
		}
		if err != nil {
			return err
		}
		output.PrintPath(path)
		return nil

	case "filter":
		expr := strings.Join(operands, " ")
		if expr == "" {
			expr = filterExpr
		}
		pred, err := filter.Parse(expr)
		if err != nil {
			return err
		}
		result, err := filter.Apply(g, nil, pred)
		if err != nil {
			return err
		}
		output.PrintAddresses("Matching targets", result)
		return nil

	case "listtargets":
		var pred filter.Predicate
		if filterExpr != "" {
			var err error
			if pred, err = filter.Parse(filterExpr); err != nil {
				return err
			}
		}
		result, err := analysis.ListTargets(g, pred)
		if err != nil {
			return err
		}
		output.PrintAddresses("Targets", result)
		return nil

	case "filemap":
		output.PrintFileMap(analysis.FileMap(g))
		return nil

	case "cloc":
		var set []string
		if len(operands) > 0 {
			set = operands
		}
		counts, err := analysis.CountLines(g, cfg.SourceRoot, set)
		if err != nil {
			return err
		}
		output.PrintLineCounts(counts)
		return nil

	case "cycles":
		output.PrintCycles(cycles.Find(g))
		return nil

	default:
		return fmt.Errorf("unknown command %q", verb)
	}
}

// printFiltered applies an optional predicate expression to a result set
// before printing, so filter output feeds the other engines.
func printFiltered(g *graph.Graph, heading string, set map[string]bool, filterExpr string) error {
	if filterExpr == "" {
		output.PrintSet(heading, set)
		return nil
	}

	pred, err := filter.Parse(filterExpr)
	if err != nil {
		return err
	}
	addrs := make([]string, 0, len(set))
	for addr := range set {
		addrs = append(addrs, addr)
	}
	matched, err := filter.Apply(g, addrs, pred)
	if err != nil {
		return err
	}
	output.PrintAddresses(heading, matched)
	return nil
}

func runServer(cfg *config.Config) {
	server := web.NewServer(cfg.SourceRoot)

	g, err := buildGraph(cfg.Snapshot)
	if err != nil {
		logging.Fatal("failed to build graph", "error", err)
	}
	server.SetGraph(g, cfg.Snapshot)

	if cfg.Watch {
		ctx := context.Background()
		sw, err := watcher.NewSnapshotWatcher(cfg.Snapshot)
		if err != nil {
			logging.Fatal("failed to create watcher", "error", err)
		}
		if err := sw.Start(ctx); err != nil {
			logging.Fatal("failed to start watcher", "error", err)
		}

		debouncer := watcher.NewDebouncer(sw.Events(), 200*time.Millisecond, 2*time.Second)
		debouncer.Start(ctx)

		go func() {
			for range debouncer.Output() {
				fresh, err := buildGraph(cfg.Snapshot)
				if err != nil {
					logging.Error("snapshot reload failed", "error", err)
					server.PublishReloadError(cfg.Snapshot, err)
					continue
				}
				logging.Info("graph reloaded", "targets", fresh.Len())
				server.SetGraph(fresh, cfg.Snapshot)
			}
		}()
	}

	if err := server.Start(cfg.Port); err != nil {
		logging.Fatal("server failed", "error", err)
	}
}
