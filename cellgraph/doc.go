// Package cellgraph builds a k-nearest-neighbor graph over a cell embedding
// and computes all-pairs geodesic (shortest-path) distances on it — the
// ground metric every later genetraj stage runs on.
//
// 🚀 What is cellgraph?
//
//	Two steps, both deterministic:
//	  • NewKNN — exact kNN search in the embedding (Euclidean), directed
//	    edges symmetrized into an undirected graph keeping the minimum
//	    weight per pair; duplicate points yield zero-weight edges.
//	  • AllPairs — Dijkstra from every vertex (lazy decrease-key min-heap),
//	    fanned out across workers; rows are collected into one symmetric
//	    matrix with a zero diagonal.
//
// Disconnected components:
//
//	Connectivity is not guaranteed. A cross-component query yields the
//	configured unreachable sentinel: +Inf (default), a finite cap
//	(WithCap), or a hard failure (WithUnreachableError).
//
// Complexity:
//
//   - NewKNN:   O(N²·D) distance evaluations + O(N² log N) selection
//   - AllPairs: O(N·(V+E) log V) total, divided across workers
//   - Memory:   O(N²) for the output matrix, O(V+E) per worker
//
// Errors (sentinel):
//
//   - ErrTooFewPoints       — fewer than two points in the embedding
//   - ErrBadNeighborCount   — k < 1 or k ≥ N
//   - ErrNonFiniteEmbedding — NaN/±Inf coordinate in the embedding
//   - ErrBadCap             — non-positive finite cap
//   - ErrBadWorkers         — worker count < 1
//   - ErrUnreachable        — cross-component pair under WithUnreachableError
//
// Example usage:
//
//	g, err := cellgraph.NewKNN(embedding, 10)
//	if err != nil { ... }
//	dist, err := g.AllPairs(cellgraph.WithWorkers(8))
package cellgraph
