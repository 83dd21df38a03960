// Package pipeline: end-to-end orchestration of the four numerical stages.
//
// Run is strictly sequential at the stage level: every stage's full output
// is materialized before the next stage starts, and no stage mutates an
// upstream output. Parallelism lives inside the stages (the distance and
// transport fan-outs), never across them.
package pipeline

import (
	"fmt"

	"github.com/katalvlaran/genetraj/cellgraph"
	"github.com/katalvlaran/genetraj/coarsen"
	"github.com/katalvlaran/genetraj/diffmap"
	"github.com/katalvlaran/genetraj/matrix"
	"github.com/katalvlaran/genetraj/ot"
	"github.com/katalvlaran/genetraj/trajectory"
)

// Run executes the full trajectory-inference pipeline:
//
//	cell embedding → kNN graph → geodesic cell distances
//	             (optional) coarse-graining into bins
//	expression + cell distances → pairwise gene transport distances
//	gene distances → diffusion-map gene embedding
//	gene embedding + tList → ordered gene trajectories
//
// expr is the cell×gene expression matrix (non-negative, finite), cellEmb
// the cell×D embedding the cell graph is built from, tList the
// per-trajectory diffusion step counts (see trajectory.Extract).
//
// Input validation fails fast before any stage runs. A non-converged
// transport pair does not abort the batch: when any pair fails, Run returns
// the partial Result together with ErrTransportFailures so the caller can
// inspect Result.Failures instead of reading masked defaults.
//
// Returns pipeline sentinels for cross-input validation and stage sentinels
// otherwise.
func Run(expr, cellEmb *matrix.Dense, tList []int, opts ...Option) (*Result, error) {
	// 1) Fail-fast input validation, before any stage spends cycles.
	if err := matrix.ValidateNotNil(expr); err != nil {
		return nil, fmt.Errorf("pipeline: expression: %w", err)
	}
	if err := matrix.ValidateNotNil(cellEmb); err != nil {
		return nil, fmt.Errorf("pipeline: cell embedding: %w", err)
	}
	if err := matrix.ValidateFinite(expr); err != nil {
		return nil, fmt.Errorf("pipeline: expression: %w", err)
	}
	if err := matrix.ValidateNonNegative(expr); err != nil {
		return nil, fmt.Errorf("pipeline: expression: %w", err)
	}
	if expr.Rows() != cellEmb.Rows() {
		return nil, fmt.Errorf("%w: %d expression rows, %d embedding rows",
			ErrCellCountMismatch, expr.Rows(), cellEmb.Rows())
	}

	cfg := DefaultOptions()
	var opt Option
	for _, opt = range opts {
		opt(&cfg)
	}
	if cfg.Bins < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadBinCount, cfg.Bins)
	}
	genes := expr.Cols()
	if cfg.Names != nil && len(cfg.Names) != genes {
		return nil, fmt.Errorf("%w: %d names, %d genes", ErrBadGeneNames, len(cfg.Names), genes)
	}

	res := &Result{Names: cfg.Names}

	// 2) Cell graph and geodesic distances.
	graph, err := cellgraph.NewKNN(cellEmb, cfg.CellK)
	if err != nil {
		return nil, err
	}
	gopts := []cellgraph.Option{cellgraph.WithWorkers(cfg.Transport.Workers)}
	if cfg.Cap > 0 {
		gopts = append(gopts, cellgraph.WithCap(cfg.Cap))
	}
	cellDist, err := graph.AllPairs(gopts...)
	if err != nil {
		return nil, err
	}

	// 3) Optional coarse-graining: transport then runs on bins, not cells.
	transportExpr, transportDist := expr, cellDist
	if cfg.Bins > 0 {
		copts := []coarsen.Option{}
		if cfg.MeanBins {
			copts = append(copts, coarsen.WithMeanAggregation())
		}
		coarse, cerr := coarsen.Coarsen(expr, cellDist, cfg.Bins, copts...)
		if cerr != nil {
			return nil, cerr
		}
		res.Assignment = coarse.Assignment
		transportExpr, transportDist = coarse.Expression, coarse.Distance
	}
	res.CellDistances = transportDist

	// 4) Pairwise gene transport distances.
	pw, err := ot.Pairwise(transportExpr, transportDist,
		ot.WithRelEpsilon(cfg.Transport.RelEpsilon),
		ot.WithMaxIter(cfg.Transport.MaxIter),
		ot.WithTolerance(cfg.Transport.Tolerance),
		ot.WithWorkers(cfg.Transport.Workers),
		ot.WithProgress(cfg.Transport.Progress),
	)
	if err != nil {
		return nil, err
	}
	res.GeneDistances = pw.Distances
	res.Failures = pw.Failures
	if !pw.Complete() {
		// Partial result: the caller gets the distances that did converge
		// plus the failure list, never a silently substituted default.
		return res, fmt.Errorf("%w: %d of %d pairs", ErrTransportFailures,
			len(pw.Failures), genes*(genes-1)/2)
	}

	// 5) Diffusion-map gene embedding.
	res.Embedding, err = diffmap.Embed(pw.Distances,
		diffmap.WithDims(cfg.Dims),
		diffmap.WithTime(cfg.Time),
		diffmap.WithLocalK(cfg.LocalK),
	)
	if err != nil {
		return nil, err
	}

	// 6) Trajectory extraction.
	topts := []trajectory.Option{
		trajectory.WithK(cfg.TrajK),
		trajectory.WithRelThreshold(cfg.RelThreshold),
	}
	if cfg.RequireFullAssignment {
		topts = append(topts, trajectory.WithFullAssignment())
	}
	res.Trajectories, err = trajectory.Extract(res.Embedding, tList, topts...)
	if err != nil {
		return nil, err
	}

	return res, nil
}
