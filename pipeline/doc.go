// Package pipeline runs the full gene-trajectory inference sequence over a
// single-cell expression data set.
//
// 🚀 What is pipeline?
//
//	The one-call orchestration of the four numerical stages:
//
//	cell embedding ──► cellgraph (kNN + geodesics) ──► cell distances
//	cell distances ──► coarsen (optional binning)  ──► bin distances
//	expression     ──► ot (pairwise transport)     ──► gene distances
//	gene distances ──► diffmap (spectral embed)    ──► gene embedding
//	gene embedding ──► trajectory (state machine)  ──► ordered trajectories
//
//	Each stage's output is fully materialized before the next stage starts
//	and is immutable afterwards. There is no streaming mode; parallelism
//	lives inside the distance and transport fan-outs.
//
// Failure semantics:
//
//	Input validation fails fast before any stage runs. A non-converged
//	transport pair never aborts the whole batch: Run returns the partial
//	Result together with ErrTransportFailures, and Result.Failures names
//	every affected pair. Downstream stages only run on a complete distance
//	matrix.
//
// Example usage:
//
//	res, err := pipeline.Run(expr, cells, []int{40, 30},
//	    pipeline.WithCellK(15),
//	    pipeline.WithBins(100),
//	    pipeline.WithDistanceCap(1e6),
//	    pipeline.WithDims(5),
//	    pipeline.WithGeneNames(names),
//	)
//	if err != nil { ... }
//	_ = res.WriteTable(os.Stdout)
//
// Complexity: dominated by the transport stage, G·(G−1)/2 Sinkhorn solves
// of O(N²) per iteration (N = cells, or bins when coarsening is on).
package pipeline
