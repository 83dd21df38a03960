// Package ot computes Wasserstein (optimal-transport) distances between gene
// expression distributions over cells or bins, using the cell geodesic
// distance matrix as the ground cost.
//
// 🚀 What is ot?
//
//	Each gene column of the expression matrix, rescaled to sum to one, is a
//	probability distribution over cells. The distance between two genes is
//	the minimum total cost of morphing one distribution into the other,
//	with per-unit cost given by the cell distance matrix.
//
// Solver:
//
//	Entropy-regularized optimal transport (Sinkhorn-Knopp matrix scaling).
//	The regularization strength is set relative to the largest finite ground
//	cost (WithRelEpsilon), so the solver is insensitive to the metric's
//	scale. Identical distributions short-circuit to an exact 0 before the
//	solver runs. RELAXATION: the entropic cost is a sharp approximation of
//	the true Wasserstein distance and need not satisfy the triangle
//	inequality; treat the output as a dissimilarity, not a strict metric.
//
// Batch engine:
//
//	Pairwise fans the G·(G−1)/2 independent solves across an errgroup worker
//	pool. Every worker owns its solver scratch state and writes to disjoint
//	result offsets; a non-converged pair is flagged in the result (entry =
//	NaN + a recorded failure) without aborting the remaining pairs. An
//	optional progress hook observes completion counts.
//
// Complexity: O(N²) per Sinkhorn iteration, ≤ MaxIter iterations per pair,
// G·(G−1)/2 pairs total.
//
// Errors (sentinel):
//
//   - ErrZeroMassGene       — a gene column sums to zero (degenerate input)
//   - ErrNegativeExpression — a negative expression entry
//   - ErrShapeMismatch      — expression rows vs cost-matrix size disagree
//   - ErrBadEpsilon / ErrBadMaxIter / ErrBadTolerance / ErrBadWorkers
//   - ErrNotConverged       — a Sinkhorn solve exhausted its budget
//     (reported per pair in the batch result)
//
// Example usage:
//
//	res, err := ot.Pairwise(expr, cellDist,
//	    ot.WithWorkers(8),
//	    ot.WithProgress(func(done, total int) { ... }),
//	)
//	if err != nil { ... }
//	if !res.Complete() {
//	    for _, f := range res.Failures { ... }
//	}
package ot
