// Package cellgraph: exact k-nearest-neighbor graph construction over a
// point embedding. Directed kNN edges are symmetrized into an undirected
// graph; parallel edges are deduplicated keeping the minimum weight.
package cellgraph

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/genetraj/matrix"
)

// NewKNN builds the undirected kNN graph of the N×D embedding points.
//
// Each point contributes directed edges to its k nearest other points by
// Euclidean distance (ties broken by lower index, so construction is
// deterministic). The directed edge sets are then merged: an unordered pair
// linked in either direction becomes one undirected edge whose weight is the
// minimum of the contributed weights. Duplicate points produce zero-weight
// edges and are kept.
//
// Preconditions and validation (in order):
//  1. points must be non-nil (matrix.ErrNilMatrix).
//  2. points must hold at least two rows (ErrTooFewPoints).
//  3. k must satisfy 1 ≤ k ≤ N−1 (ErrBadNeighborCount).
//  4. Every coordinate must be finite (ErrNonFiniteEmbedding).
//
// Complexity: O(N²·D) distance evaluations + O(N² log N) neighbor selection;
// O(N·k) memory for adjacency lists.
func NewKNN(points *matrix.Dense, k int) (*Graph, error) {
	// 1) Validate the embedding handle.
	if err := matrix.ValidateNotNil(points); err != nil {
		return nil, fmt.Errorf("cellgraph: %w", err)
	}
	n := points.Rows()

	// 2) A single point has no neighbors to link to.
	if n < 2 {
		return nil, ErrTooFewPoints
	}

	// 3) k must leave at least one neighbor and not exceed the population.
	if k < 1 || k >= n {
		return nil, fmt.Errorf("%w: k=%d with %d points", ErrBadNeighborCount, k, n)
	}

	// 4) Geodesics over NaN coordinates are meaningless; fail fast.
	if err := matrix.ValidateFinite(points); err != nil {
		return nil, ErrNonFiniteEmbedding
	}

	// 5) Compute pairwise Euclidean distances once (symmetric by construction).
	d := points.Cols()
	dist := make([][]float64, n)
	var (
		i, j, c    int
		diff, sum  float64
		ri, rj     []float64
		rowsByIdx  = make([][]float64, n) // cached row views
		neighborID = make([]int, n)       // scratch index permutation
	)
	for i = 0; i < n; i++ {
		rowsByIdx[i], _ = points.Row(i) // bounds are valid by construction
	}
	for i = 0; i < n; i++ {
		dist[i] = make([]float64, n)
	}
	for i = 0; i < n; i++ {
		ri = rowsByIdx[i]
		for j = i + 1; j < n; j++ {
			rj = rowsByIdx[j]
			sum = 0
			for c = 0; c < d; c++ {
				diff = ri[c] - rj[c]
				sum += diff * diff
			}
			sum = math.Sqrt(sum)
			dist[i][j] = sum
			dist[j][i] = sum
		}
	}

	// 6) Select the k nearest neighbors of every point, deterministically.
	//    Symmetrize on the fly through an unordered-pair weight map.
	type pair struct{ u, v int } // u < v always
	weights := make(map[pair]float64, n*k)
	var (
		src  int
		key  pair
		prev float64
		ok   bool
	)
	for src = 0; src < n; src++ {
		// 6.1: Rank all other points by (distance, index).
		idx := neighborID[:0]
		for j = 0; j < n; j++ {
			if j != src {
				idx = append(idx, j)
			}
		}
		s := src // capture for the closure below
		sort.SliceStable(idx, func(a, b int) bool {
			if dist[s][idx[a]] != dist[s][idx[b]] {
				return dist[s][idx[a]] < dist[s][idx[b]]
			}

			return idx[a] < idx[b]
		})

		// 6.2: Merge the k nearest into the undirected edge set (min weight).
		for j = 0; j < k; j++ {
			if src < idx[j] {
				key = pair{u: src, v: idx[j]}
			} else {
				key = pair{u: idx[j], v: src}
			}
			prev, ok = weights[key]
			if !ok || dist[src][idx[j]] < prev {
				weights[key] = dist[src][idx[j]]
			}
		}
	}

	// 7) Materialize sorted adjacency lists.
	g := &Graph{n: n, adj: make([][]halfEdge, n)}
	var (
		p pair
		w float64
	)
	for p, w = range weights {
		g.adj[p.u] = append(g.adj[p.u], halfEdge{to: p.v, w: w})
		g.adj[p.v] = append(g.adj[p.v], halfEdge{to: p.u, w: w})
	}
	for i = 0; i < n; i++ {
		lst := g.adj[i]
		sort.Slice(lst, func(a, b int) bool { return lst[a].to < lst[b].to })
	}

	return g, nil
}
