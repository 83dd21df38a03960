// Package cellgraph: geodesic distances on the kNN graph.
//
// Single-source shortest paths use Dijkstra with a lazy decrease-key
// min-heap: instead of updating entries in place, improved distances are
// pushed as duplicates and stale pops are skipped via a visited mask.
// All-pairs distances run one Dijkstra per source, fanned out across an
// errgroup worker pool; every worker owns its scratch state and writes to a
// disjoint result row, so the Wait call is the only synchronization point.
package cellgraph

import (
	"container/heap"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/genetraj/matrix"
)

// From computes shortest-path distances from source src to every vertex.
// Unreachable vertices are reported as +Inf; policy substitution happens in
// AllPairs, so single-source callers always see the raw sentinel.
//
// Returns ErrVertexOutOfRange for an invalid source.
// Complexity: O((V+E) log V) time, O(V+E) memory.
func (g *Graph) From(src int) ([]float64, error) {
	// 1) Validate the source index.
	if src < 0 || src >= g.n {
		return nil, fmt.Errorf("%w: source %d of %d", ErrVertexOutOfRange, src, g.n)
	}

	// 2) Prepare distance array, visited mask and the priority queue.
	dist := make([]float64, g.n)
	var i int
	for i = 0; i < g.n; i++ {
		dist[i] = math.Inf(1) // +Inf until relaxed
	}
	dist[src] = 0
	visited := make([]bool, g.n)
	pq := make(nodePQ, 0, g.n)
	heap.Init(&pq)
	heap.Push(&pq, &nodeItem{id: src, dist: 0})

	// 3) Main loop: pop the closest unvisited vertex and relax its edges.
	var (
		item    *nodeItem
		u       int
		e       halfEdge
		newDist float64
	)
	for pq.Len() > 0 {
		item = heap.Pop(&pq).(*nodeItem)
		u = item.id
		// Skip stale heap entries (lazy decrease-key).
		if visited[u] {
			continue
		}
		visited[u] = true

		for _, e = range g.adj[u] {
			newDist = dist[u] + e.w
			// Strictly-better check avoids pushing duplicates on ties.
			if newDist < dist[e.to] {
				dist[e.to] = newDist
				heap.Push(&pq, &nodeItem{id: e.to, dist: newDist})
			}
		}
	}

	return dist, nil
}

// AllPairs computes the full N×N geodesic distance matrix of the graph.
//
// One Dijkstra runs per source across Options.Workers goroutines. Afterwards
// the matrix is made exactly symmetric by keeping the minimum of the two
// directions (floating-point relaxation order can differ per direction by an
// ulp) and the diagonal is forced to zero. Unreachable pairs follow the
// configured policy: +Inf, the finite cap, or ErrUnreachable.
//
// The returned matrix satisfies matrix.ValidateDistanceMatrix.
// Complexity: O(N·(V+E) log V) total work; O(N²) memory.
func (g *Graph) AllPairs(opts ...Option) (*matrix.Dense, error) {
	// 1) Build and validate options.
	cfg := DefaultOptions()
	var opt Option
	for _, opt = range opts {
		opt(&cfg)
	}
	if cfg.Workers < 1 {
		return nil, ErrBadWorkers
	}
	if cfg.Policy == UnreachableCap && (cfg.Cap <= 0 || math.IsInf(cfg.Cap, 0) || math.IsNaN(cfg.Cap)) {
		return nil, ErrBadCap
	}

	// 2) Fan the per-source solves out across the worker pool.
	//    rows[src] is written by exactly one goroutine: no locking needed.
	rows := make([][]float64, g.n)
	var eg errgroup.Group
	eg.SetLimit(cfg.Workers)
	var src int
	for src = 0; src < g.n; src++ {
		s := src // capture loop variable for the closure
		eg.Go(func() error {
			row, err := g.From(s)
			if err != nil {
				return err
			}
			rows[s] = row

			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("cellgraph: all-pairs solve: %w", err)
	}

	// 3) Collect rows into the output matrix, enforcing exact symmetry and
	//    applying the unreachable policy.
	out, err := matrix.NewDense(g.n, g.n)
	if err != nil {
		return nil, fmt.Errorf("cellgraph: %w", err)
	}
	var (
		i, j int
		d    float64
	)
	for i = 0; i < g.n; i++ {
		for j = i + 1; j < g.n; j++ {
			d = math.Min(rows[i][j], rows[j][i])
			if math.IsInf(d, 1) {
				switch cfg.Policy {
				case UnreachableCap:
					d = cfg.Cap
				case UnreachableError:
					return nil, fmt.Errorf("%w: vertices %d and %d", ErrUnreachable, i, j)
				}
				// UnreachableInf keeps the +Inf sentinel.
			}
			_ = out.Set(i, j, d) // indices valid by construction
			_ = out.Set(j, i, d)
		}
		// Diagonal is zero by definition of a geodesic metric.
		_ = out.Set(i, i, 0)
	}

	return out, nil
}

// nodeItem represents a vertex and its current distance from the source.
// It is stored in the priority queue to order vertices by increasing distance.
type nodeItem struct {
	id   int     // vertex index
	dist float64 // distance from source
}

// nodePQ is a min-heap of *nodeItem ordered by dist ascending.
// Lazy decrease-key: improved distances are pushed as new items and stale
// entries are skipped when popped (checked via the visited mask).
type nodePQ []*nodeItem

// Len returns the number of items in the heap.
func (pq nodePQ) Len() int { return len(pq) }

// Less defines the comparison: smaller dist → higher priority.
// Ties break on the lower vertex index for deterministic pop order.
func (pq nodePQ) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}

	return pq[i].id < pq[j].id
}

// Swap swaps two elements in the heap.
func (pq nodePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

// Push adds a new element x onto the heap; x must be of type *nodeItem.
func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(*nodeItem)) }

// Pop removes and returns the smallest element from the heap.
func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
