// Package cellgraph defines the graph type, configuration options and
// sentinel errors for cell-graph construction and geodesic distances.
package cellgraph

import (
	"errors"
	"runtime"
)

// Sentinel errors returned by the cellgraph package.
var (
	// ErrTooFewPoints indicates the embedding holds fewer than two points,
	// so no neighbor graph can be formed.
	ErrTooFewPoints = errors.New("cellgraph: need at least two points")

	// ErrBadNeighborCount indicates k < 1 or k ≥ number of points.
	ErrBadNeighborCount = errors.New("cellgraph: neighbor count out of range")

	// ErrNonFiniteEmbedding indicates a NaN or ±Inf coordinate in the embedding.
	ErrNonFiniteEmbedding = errors.New("cellgraph: embedding has NaN or Inf coordinates")

	// ErrBadCap indicates a non-positive or non-finite unreachable cap.
	ErrBadCap = errors.New("cellgraph: unreachable cap must be positive and finite")

	// ErrBadWorkers indicates a worker count below one.
	ErrBadWorkers = errors.New("cellgraph: worker count must be at least 1")

	// ErrUnreachable indicates a cross-component pair was queried while the
	// UnreachableError policy is active.
	ErrUnreachable = errors.New("cellgraph: vertices are unreachable from each other")

	// ErrVertexOutOfRange indicates a source index outside [0, N).
	ErrVertexOutOfRange = errors.New("cellgraph: vertex index out of range")
)

// UnreachablePolicy selects how cross-component distances are reported.
//
//   - UnreachableInf   — report +Inf (default; downstream stages tolerate it).
//   - UnreachableCap   — report a caller-chosen finite cap (WithCap).
//   - UnreachableError — fail the computation with ErrUnreachable.
type UnreachablePolicy int

const (
	// UnreachableInf reports +Inf for unreachable pairs.
	UnreachableInf UnreachablePolicy = iota

	// UnreachableCap substitutes the configured finite cap.
	UnreachableCap

	// UnreachableError aborts with ErrUnreachable naming the offending pair.
	UnreachableError
)

// Options configures geodesic distance computation.
//
// Policy  – how unreachable pairs are reported (default UnreachableInf).
// Cap     – finite substitute distance under UnreachableCap (must be > 0).
// Workers – parallel Dijkstra sources (default runtime.GOMAXPROCS(0)).
type Options struct {
	Policy  UnreachablePolicy // unreachable-pair reporting policy
	Cap     float64           // finite cap used by UnreachableCap
	Workers int               // number of concurrent single-source solves
}

// Option represents a functional option for configuring distance computation.
type Option func(*Options)

// WithCap activates the UnreachableCap policy with the given finite cap.
// cap must be positive; validated in AllPairs (ErrBadCap).
func WithCap(cap float64) Option {
	return func(o *Options) {
		o.Policy = UnreachableCap
		o.Cap = cap
	}
}

// WithUnreachableError activates the UnreachableError policy: any
// cross-component pair fails the whole computation with ErrUnreachable.
func WithUnreachableError() Option {
	return func(o *Options) {
		o.Policy = UnreachableError
	}
}

// WithWorkers sets the number of concurrent single-source solves.
// Must be ≥ 1; validated in AllPairs (ErrBadWorkers).
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// DefaultOptions returns an Options struct initialized with the defaults:
//   - Policy:  UnreachableInf (report +Inf, never substitute silently)
//   - Cap:     0 (unused under UnreachableInf)
//   - Workers: runtime.GOMAXPROCS(0)
func DefaultOptions() Options {
	return Options{
		Policy:  UnreachableInf,
		Cap:     0,
		Workers: runtime.GOMAXPROCS(0),
	}
}

// halfEdge is one undirected adjacency entry: neighbor index and weight.
type halfEdge struct {
	to int     // neighbor vertex index
	w  float64 // non-negative edge weight
}

// Graph is an undirected weighted kNN graph over embedded points.
// Vertices are dense indices 0..N-1 matching the embedding rows.
// Immutable after construction.
type Graph struct {
	n   int          // number of vertices
	adj [][]halfEdge // adjacency lists, sorted by neighbor index
}

// Order returns the number of vertices. Complexity: O(1).
func (g *Graph) Order() int { return g.n }

// Degree returns the adjacency-list length of vertex v, or
// ErrVertexOutOfRange. Complexity: O(1).
func (g *Graph) Degree(v int) (int, error) {
	if v < 0 || v >= g.n {
		return 0, ErrVertexOutOfRange
	}

	return len(g.adj[v]), nil
}

// Neighbors returns the neighbor indices and edge weights of vertex v in
// ascending index order, or ErrVertexOutOfRange. The returned slices are
// copies; mutating them does not affect the graph.
// Complexity: O(deg(v)).
func (g *Graph) Neighbors(v int) ([]int, []float64, error) {
	if v < 0 || v >= g.n {
		return nil, nil, ErrVertexOutOfRange
	}
	ids := make([]int, len(g.adj[v]))
	ws := make([]float64, len(g.adj[v]))
	var i int
	var e halfEdge
	for i, e = range g.adj[v] {
		ids[i] = e.to
		ws[i] = e.w
	}

	return ids, ws, nil
}
