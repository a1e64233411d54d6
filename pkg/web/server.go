// Package web exposes the graph analysis operations over an HTTP JSON API.
// Formatting stays thin: handlers translate query parameters to analysis
// calls and analysis errors to status codes.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/depscope/depscope/pkg/analysis"
	"github.com/depscope/depscope/pkg/closure"
	"github.com/depscope/depscope/pkg/cover"
	"github.com/depscope/depscope/pkg/cycles"
	"github.com/depscope/depscope/pkg/filter"
	"github.com/depscope/depscope/pkg/graph"
	"github.com/depscope/depscope/pkg/logging"
	"github.com/depscope/depscope/pkg/order"
	"github.com/depscope/depscope/pkg/paths"
	"github.com/depscope/depscope/pkg/pubsub"
)

// Server serves graph queries over HTTP. The current graph is swapped
// atomically behind a read-write lock in watch mode; every query runs
// against one consistent snapshot.
type Server struct {
	router     *mux.Router
	publisher  pubsub.Publisher
	sourceRoot string

	mu       sync.RWMutex
	graph    *graph.Graph
	snapshot string
}

// NewServer creates a new query server. Source paths for line counting are
// resolved against sourceRoot.
func NewServer(sourceRoot string) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		publisher:  pubsub.NewSSEPublisher(),
		sourceRoot: sourceRoot,
	}
	s.setupRoutes()
	return s
}

// SetGraph swaps in a freshly built graph and notifies subscribers.
func (s *Server) SetGraph(g *graph.Graph, snapshot string) {
	s.mu.Lock()
	s.graph = g
	s.snapshot = snapshot
	s.mu.Unlock()

	status := pubsub.GraphStatus{
		Snapshot: snapshot,
		Targets:  g.Len(),
		Edges:    len(g.Edges()),
	}
	if err := s.publisher.Publish("graph", "reloaded", status); err != nil {
		logging.Warn("failed to publish graph status", "error", err)
	}
}

// PublishReloadError notifies subscribers that a snapshot reload failed.
// The previous graph stays in place.
func (s *Server) PublishReloadError(snapshot string, reloadErr error) {
	status := pubsub.GraphStatus{
		Snapshot: snapshot,
		Error:    reloadErr.Error(),
	}
	if err := s.publisher.Publish("graph", "reload_failed", status); err != nil {
		logging.Warn("failed to publish reload error", "error", err)
	}
}

func (s *Server) current() *graph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/subscribe/graph", s.handleSubscribeGraph).Methods("GET")

	s.router.HandleFunc("/api/targets", s.handleTargets).Methods("GET")
	s.router.HandleFunc("/api/targets/{address:.+}", s.handleTarget).Methods("GET")

	s.router.HandleFunc("/api/query/deps", s.handleDeps).Methods("GET")
	s.router.HandleFunc("/api/query/dependees", s.handleDependees).Methods("GET")
	s.router.HandleFunc("/api/query/minimal-cover", s.handleMinimalCover).Methods("GET")
	s.router.HandleFunc("/api/query/sort", s.handleSort).Methods("GET")
	s.router.HandleFunc("/api/query/paths", s.handlePaths).Methods("GET")
	s.router.HandleFunc("/api/query/filter", s.handleFilter).Methods("GET")

	s.router.HandleFunc("/api/cycles", s.handleCycles).Methods("GET")
	s.router.HandleFunc("/api/filemap", s.handleFileMap).Methods("GET")
	s.router.HandleFunc("/api/cloc", s.handleCloc).Methods("GET")
}

// Handler returns the server's HTTP handler, wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

// Start runs the server on the given port, blocking.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Info("query API listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleSubscribeGraph(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub, err := s.publisher.Subscribe(r.Context(), "graph")
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	flusher.Flush()
	for event := range sub.Events() {
		if err := pubsub.WriteSSE(w, event); err != nil {
			return
		}
		flusher.Flush()
	}
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	g := s.current()
	if g == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "graph not loaded"})
		return
	}

	pred, err := predicateParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	addrs, err := analysis.ListTargets(g, pred)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addressesBody{Targets: addrs})
}

func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	g := s.current()
	if g == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "graph not loaded"})
		return
	}

	address := mux.Vars(r)["address"]
	t, ok := g.Target(address)
	if !ok {
		writeError(w, &graph.MissingTargetError{Address: address})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeps(w http.ResponseWriter, r *http.Request) {
	s.handleClosure(w, r, closure.Forward)
}

func (s *Server) handleDependees(w http.ResponseWriter, r *http.Request) {
	s.handleClosure(w, r, closure.Backward)
}

type closureFunc func(*graph.Graph, []string, closure.Options) (map[string]bool, error)

func (s *Server) handleClosure(w http.ResponseWriter, r *http.Request, fn closureFunc) {
	g := s.current()
	if g == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "graph not loaded"})
		return
	}

	roots := listParam(r, "roots")
	if len(roots) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing roots parameter"})
		return
	}
	opts := closure.Options{Transitive: r.URL.Query().Get("transitive") != "false"}

	result, err := fn(g, roots, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	addrs := setToSlice(result)
	if pred, err := predicateParam(r); err != nil {
		writeError(w, err)
		return
	} else if pred != nil {
		if addrs, err = filter.Apply(g, addrs, pred); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, addressesBody{Targets: addrs})
}

func (s *Server) handleMinimalCover(w http.ResponseWriter, r *http.Request) {
	g := s.current()
	if g == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "graph not loaded"})
		return
	}

	set := listParam(r, "targets")
	if len(set) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing targets parameter"})
		return
	}

	result, err := cover.Minimal(g, set)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addressesBody{Targets: result})
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	g := s.current()
	if g == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "graph not loaded"})
		return
	}

	set := listParam(r, "targets")
	if len(set) == 0 {
		set = g.Addresses()
	}

	result, err := order.Sort(g, set)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addressesBody{Targets: result})
}

func (s *Server) handlePaths(w http.ResponseWriter, r *http.Request) {
	g := s.current()
	if g == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "graph not loaded"})
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing from/to parameter"})
		return
	}

	path, err := paths.Find(g, from, to)
	if errors.Is(err, paths.ErrNoPath) {
		// Unreachable is a result, not a failure.
		writeJSON(w, http.StatusOK, pathBody{Found: false})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pathBody{Found: true, Path: path})
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	g := s.current()
	if g == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "graph not loaded"})
		return
	}

	expr := r.URL.Query().Get("expr")
	pred, err := filter.Parse(expr)
	if err != nil {
		writeError(w, err)
		return
	}

	candidates := listParam(r, "targets") // nil means the whole graph
	result, err := filter.Apply(g, candidates, pred)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addressesBody{Targets: result})
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	g := s.current()
	if g == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "graph not loaded"})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Cycles [][]string `json:"cycles"`
	}{Cycles: cycles.Find(g)})
}

func (s *Server) handleFileMap(w http.ResponseWriter, r *http.Request) {
	g := s.current()
	if g == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "graph not loaded"})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Files map[string][]string `json:"files"`
	}{Files: analysis.FileMap(g)})
}

func (s *Server) handleCloc(w http.ResponseWriter, r *http.Request) {
	g := s.current()
	if g == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "graph not loaded"})
		return
	}

	counts, err := analysis.CountLines(g, s.sourceRoot, listParam(r, "targets"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Counts []analysis.TargetLineCount `json:"counts"`
	}{Counts: counts})
}

type addressesBody struct {
	Targets []string `json:"targets"`
}

type pathBody struct {
	Found bool     `json:"found"`
	Path  []string `json:"path,omitempty"`
}

type errorBody struct {
	Error string   `json:"error"`
	Cycle []string `json:"cycle,omitempty"`
}

// listParam reads a comma-separated list parameter; nil when absent.
func listParam(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// predicateParam parses the optional filter expression parameter.
func predicateParam(r *http.Request) (filter.Predicate, error) {
	expr := r.URL.Query().Get("filter")
	if expr == "" {
		return nil, nil
	}
	return filter.Parse(expr)
}

func setToSlice(set map[string]bool) []string {
	addrs := make([]string, 0, len(set))
	for addr := range set {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

// writeError maps the analysis error taxonomy to HTTP statuses: missing
// target 404, cycle 409, bad predicate 400, anything else 500.
func writeError(w http.ResponseWriter, err error) {
	var missing *graph.MissingTargetError
	var cycleErr *order.CycleError
	var badPred *filter.InvalidPredicateError

	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusNotFound, errorBody{Error: missing.Error()})
	case errors.As(err, &cycleErr):
		writeJSON(w, http.StatusConflict, errorBody{Error: cycleErr.Error(), Cycle: cycleErr.Cycle})
	case errors.As(err, &badPred):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: badPred.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("failed to encode response", "error", err)
	}
}
