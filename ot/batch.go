// Package ot: the pairwise batch engine.
//
// All G·(G−1)/2 gene-pair solves share the immutable ground cost and nothing
// else; each task owns its solver scratch state and writes its result to a
// fixed, disjoint offset. errgroup.Wait is the single collection barrier.
package ot

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/genetraj/matrix"
)

// Pairwise computes the symmetric gene-gene transport distance matrix.
//
// Validation happens before any solve starts (fail-fast): options, the
// ground-cost invariants, the expression/cost shape agreement, and the
// column normalization (zero-mass genes are rejected here).
//
// Per-pair failures do NOT abort the batch: the affected entries hold NaN
// and the failures are listed in the result, so one degenerate pair cannot
// invalidate the others. Callers must consult Complete()/Failures before
// treating the matrix as fully populated.
//
// Complexity: O(G²/2) solves, each O(MaxIter·N²) worst case, divided across
// Options.Workers goroutines.
func Pairwise(expr, cost *matrix.Dense, opts ...Option) (*PairwiseResult, error) {
	// 1) Build and validate options.
	cfg := DefaultOptions()
	var opt Option
	for _, opt = range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		return nil, ErrBadWorkers
	}

	// 2) Validate the ground cost and shape agreement.
	if err := matrix.ValidateDistanceMatrix(cost, distEps); err != nil {
		return nil, fmt.Errorf("ot: cost: %w", err)
	}
	if expr != nil && expr.Rows() != cost.Rows() {
		return nil, fmt.Errorf("%w: %d expression rows vs %d cost rows",
			ErrShapeMismatch, expr.Rows(), cost.Rows())
	}

	// 3) Normalize gene columns into PMFs (zero-mass genes fail here).
	pmfs, err := Normalize(expr)
	if err != nil {
		return nil, err
	}
	genes := len(pmfs)

	// 4) Enumerate the unordered pair tasks.
	type task struct{ i, j int }
	tasks := make([]task, 0, genes*(genes-1)/2)
	var i, j int
	for i = 0; i < genes; i++ {
		for j = i + 1; j < genes; j++ {
			tasks = append(tasks, task{i: i, j: j})
		}
	}
	total := len(tasks)

	// 5) Resolve the shared epsilon once; the kernel depends only on the
	//    cost, so each worker builds its solver from the same inputs.
	eps, solve := resolveEpsilon(cost, cfg.RelEpsilon)
	var kern *gibbsKernel
	if solve {
		kern = newGibbsKernel(cost, eps)
	}

	// 6) Fan out. results[t] and failures[t] are written by exactly one
	//    goroutine each: disjoint offsets, no locking.
	results := make([]float64, total)
	failures := make([]error, total)
	var done atomic.Int64
	var eg errgroup.Group
	eg.SetLimit(cfg.Workers)
	var t int
	for t = 0; t < total; t++ {
		tid := t // capture task index
		eg.Go(func() error {
			tk := tasks[tid]
			if !solve {
				// Degenerate all-zero metric: every plan is free.
				results[tid] = 0
			} else {
				s := newSolver(kern, cfg.MaxIter, cfg.Tolerance)
				d, solveErr := s.distance(pmfs[tk.i], pmfs[tk.j])
				if solveErr != nil {
					failures[tid] = solveErr
					results[tid] = math.NaN()
				} else {
					results[tid] = d
				}
			}
			if cfg.Progress != nil {
				cfg.Progress(int(done.Add(1)), total)
			}

			return nil
		})
	}
	// Workers never return errors (failures are per-pair data), but Wait is
	// still the collection barrier for the result slices.
	_ = eg.Wait()

	// 7) Assemble the symmetric output matrix and the failure list.
	out, err := matrix.NewDense(genes, genes)
	if err != nil {
		return nil, fmt.Errorf("ot: %w", err)
	}
	res := &PairwiseResult{Distances: out}
	for t = 0; t < total; t++ {
		tk := tasks[t]
		_ = out.Set(tk.i, tk.j, results[t]) // indices valid by construction
		_ = out.Set(tk.j, tk.i, results[t])
		if failures[t] != nil {
			res.Failures = append(res.Failures, PairFailure{I: tk.i, J: tk.j, Err: failures[t]})
		}
	}
	sort.Slice(res.Failures, func(a, b int) bool {
		if res.Failures[a].I != res.Failures[b].I {
			return res.Failures[a].I < res.Failures[b].I
		}

		return res.Failures[a].J < res.Failures[b].J
	})

	return res, nil
}
