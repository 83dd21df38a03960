// Package coarsen reduces a cell population to a smaller set of
// representative bins, bounding the size of the optimal-transport problems
// downstream: the per-pair Sinkhorn solve scales quadratically in the ground
// set, so a few hundred bins stand in for many thousands of cells.
//
// 🚀 How it works
//
//	Deterministic farthest-point binning on the cell distance matrix:
//	  1. The first seed is the medoid (minimum total distance to all cells).
//	  2. Each further seed is the cell farthest from the current seed set.
//	  3. Every cell joins the bin of its nearest seed.
//	All ties break on the lowest index, so identical inputs always produce
//	identical partitions.
//
// Guarantees:
//
//   - The assignment is a total partition: every cell maps to exactly one
//     bin and every bin is non-empty (each seed belongs to its own bin).
//   - Bin expression is the SUM of member expression by default (sums keep
//     total mass, so normalized gene distributions are unchanged by
//     regrouping); WithMeanAggregation switches to the mean.
//   - Bin-to-bin distance is the mean pairwise distance between members,
//     with the diagonal forced to zero; the output passes the distance
//     matrix validators.
//
// Complexity: O(N·n) seeding + O(N²) aggregation, O(n²+n·G) memory.
//
// Errors (sentinel):
//
//   - ErrBadBinCount      — bins < 1 or bins > N
//   - ErrShapeMismatch    — expression and distance row counts differ
//   - ErrInfiniteDistance — the input distance matrix carries +Inf entries;
//     cap unreachable pairs upstream (cellgraph.WithCap) before coarsening
package coarsen
