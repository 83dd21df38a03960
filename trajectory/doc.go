// Package trajectory orders genes along inferred expression programs from
// their diffusion-map embedding.
//
// 🚀 What is trajectory?
//
//	An explicit state machine over the set R of unassigned genes. Each round
//	anchors a new trajectory at the most extremal remaining gene (largest
//	embedding norm), spreads random-walk visitation mass from that terminus
//	over a kNN walk graph rebuilt on R, admits every gene whose cumulative
//	mass clears the threshold, and removes the admitted genes from R. Genes
//	are strictly partitioned — at most one trajectory per gene.
//
// Ordering:
//
//	Each admitted gene carries a pseudo-position: its geodesic distance from
//	the terminus over the walk graph. Trajectory.Reverse flips the traversal
//	direction (pos → max − pos) without recomputing anything.
//
// Tuning:
//
//	The per-trajectory diffusion step count t is the knob the algorithm
//	cannot pick for itself — a small t leaves genes unassigned, a large one
//	merges distinct programs. Callers pass the full t list up front;
//	leftover genes are reported in Result.Unassigned, or rejected wholesale
//	via WithFullAssignment.
//
// Determinism:
//
//	Extraction is a pure function of the embedding, the t list and the
//	options. Ties (equal norms, equal distances) resolve to the lowest gene
//	index, so repeated runs are identical.
//
// Export:
//
//	Result.WriteTable emits the gene/trajectory/position table as CSV;
//	Result.RenderTable draws the same rows as a boxed terminal table.
//
// Errors (sentinel):
//
//   - ErrBadEmbedding        — NaN or Inf coordinate in the embedding
//   - ErrNegativeSteps       — a negative t list entry
//   - ErrBadTrajectoryCount  — more trajectories requested than genes
//   - ErrBadWalkNeighbors / ErrBadThreshold — option out of range
//   - ErrIncompleteAssignment — leftovers under WithFullAssignment
//   - ErrBadNames            — name slice does not cover every gene
//
// Example usage:
//
//	res, err := trajectory.Extract(emb, []int{30, 30}, trajectory.WithK(8))
//	if err != nil { ... }
//	_ = res.WriteTable(os.Stdout, geneNames)
//
// Complexity: O(T · (G²·D + t·G·k)) time — the per-round kNN rebuild over
// the remaining genes dominates.
package trajectory
