// Package coarsen: deterministic farthest-point binning of the cell
// population with expression and distance aggregation.
package coarsen

import (
	"fmt"
	"math"

	"github.com/katalvlaran/genetraj/matrix"
)

// Coarsen partitions N cells into representative bins and aggregates
// the expression and distance matrices accordingly.
//
// Preconditions and validation (in order):
//  1. expr and dist must be non-nil (matrix.ErrNilMatrix).
//  2. dist must be a valid distance matrix (matrix sentinel set).
//  3. expr.Rows() must equal dist.Rows() (ErrShapeMismatch).
//  4. dist must be finite (ErrInfiniteDistance).
//  5. 1 ≤ bins ≤ N (ErrBadBinCount).
//
// Determinism: seeding and assignment break all ties on the lowest index, so
// identical inputs always yield the identical partition.
//
// Complexity: O(N·bins) seeding + O(N²) distance aggregation;
// O(bins² + bins·G) output memory.
func Coarsen(expr, dist *matrix.Dense, bins int, opts ...Option) (*Result, error) {
	// 1) Build options.
	cfg := DefaultOptions()
	var opt Option
	for _, opt = range opts {
		opt(&cfg)
	}

	// 2) Validate handles.
	if err := matrix.ValidateNotNil(expr); err != nil {
		return nil, fmt.Errorf("coarsen: expression: %w", err)
	}
	if err := matrix.ValidateDistanceMatrix(dist, distEps); err != nil {
		return nil, fmt.Errorf("coarsen: distance: %w", err)
	}
	n := dist.Rows()

	// 3) Expression rows index the same cells as the distance matrix.
	if expr.Rows() != n {
		return nil, fmt.Errorf("%w: %d expression rows vs %d cells",
			ErrShapeMismatch, expr.Rows(), n)
	}

	// 4) Representative statistics over unreachable pairs are undefined.
	if err := matrix.ValidateFinite(dist); err != nil {
		return nil, ErrInfiniteDistance
	}

	// 5) Validate the requested bin count.
	if bins < 1 || bins > n {
		return nil, fmt.Errorf("%w: %d bins for %d cells", ErrBadBinCount, bins, n)
	}

	// 6) Seed bins: medoid first, then farthest-point traversal.
	seeds := pickSeeds(dist, n, bins)

	// 7) Assign every cell to its nearest seed (ties → lowest bin index).
	assignment := make([]int, n)
	var (
		cell, b, best int
		d, bestD      float64
	)
	for cell = 0; cell < n; cell++ {
		best, bestD = 0, math.Inf(1)
		for b = 0; b < bins; b++ {
			d, _ = dist.At(cell, seeds[b]) // indices valid by construction
			if d < bestD {
				best, bestD = b, d
			}
		}
		assignment[cell] = best
	}

	// 8) Aggregate expression per bin.
	genes := expr.Cols()
	coarseExpr, err := matrix.NewDense(bins, genes)
	if err != nil {
		return nil, fmt.Errorf("coarsen: %w", err)
	}
	sizes := make([]int, bins)
	var (
		g        int
		v, cur   float64
		assigned int
	)
	for cell = 0; cell < n; cell++ {
		assigned = assignment[cell]
		sizes[assigned]++
		for g = 0; g < genes; g++ {
			v, _ = expr.At(cell, g)
			cur, _ = coarseExpr.At(assigned, g)
			_ = coarseExpr.Set(assigned, g, cur+v)
		}
	}
	if cfg.Aggregation == AggregateMean {
		for b = 0; b < bins; b++ {
			for g = 0; g < genes; g++ {
				cur, _ = coarseExpr.At(b, g)
				_ = coarseExpr.Set(b, g, cur/float64(sizes[b]))
			}
		}
	}

	// 9) Aggregate distances: mean pairwise member distance per bin pair.
	coarseDist, err := matrix.NewDense(bins, bins)
	if err != nil {
		return nil, fmt.Errorf("coarsen: %w", err)
	}
	sums, err := matrix.NewDense(bins, bins)
	if err != nil {
		return nil, fmt.Errorf("coarsen: %w", err)
	}
	counts := make([][]int, bins)
	for b = 0; b < bins; b++ {
		counts[b] = make([]int, bins)
	}
	var i, j, bi, bj int
	for i = 0; i < n; i++ {
		bi = assignment[i]
		for j = i + 1; j < n; j++ {
			bj = assignment[j]
			if bi == bj {
				continue // within-bin spread does not enter the coarse metric
			}
			d, _ = dist.At(i, j)
			cur, _ = sums.At(bi, bj)
			_ = sums.Set(bi, bj, cur+d)
			counts[bi][bj]++
			cur, _ = sums.At(bj, bi)
			_ = sums.Set(bj, bi, cur+d)
			counts[bj][bi]++
		}
	}
	for bi = 0; bi < bins; bi++ {
		for bj = 0; bj < bins; bj++ {
			if bi == bj || counts[bi][bj] == 0 {
				continue // diagonal stays zero
			}
			cur, _ = sums.At(bi, bj)
			_ = coarseDist.Set(bi, bj, cur/float64(counts[bi][bj]))
		}
	}

	return &Result{
		Assignment: assignment,
		Expression: coarseExpr,
		Distance:   coarseDist,
	}, nil
}

// distEps is the symmetry/diagonal tolerance for the input distance matrix.
const distEps = 1e-9

// pickSeeds returns bins seed indices: the medoid first, then repeated
// farthest-point selection. All ties break on the lowest cell index.
// Complexity: O(N²) for the medoid + O(N·bins) for the traversal.
func pickSeeds(dist *matrix.Dense, n, bins int) []int {
	// Medoid: the cell minimizing total distance to everyone else.
	var (
		i, j       int
		d, sum     float64
		bestSum    = math.Inf(1)
		medoid     int
		minToSeeds = make([]float64, n)
	)
	for i = 0; i < n; i++ {
		sum = 0
		for j = 0; j < n; j++ {
			d, _ = dist.At(i, j)
			sum += d
		}
		if sum < bestSum {
			bestSum, medoid = sum, i
		}
	}

	seeds := make([]int, 0, bins)
	seeds = append(seeds, medoid)

	// Track each cell's distance to the nearest chosen seed.
	for i = 0; i < n; i++ {
		minToSeeds[i], _ = dist.At(i, medoid)
	}

	// Farthest-point traversal: next seed maximizes distance to the set.
	var (
		next  int
		bestD float64
	)
	for len(seeds) < bins {
		next, bestD = 0, -1
		for i = 0; i < n; i++ {
			if minToSeeds[i] > bestD {
				next, bestD = i, minToSeeds[i]
			}
		}
		seeds = append(seeds, next)
		for i = 0; i < n; i++ {
			d, _ = dist.At(i, next)
			if d < minToSeeds[i] {
				minToSeeds[i] = d
			}
		}
	}

	return seeds
}
