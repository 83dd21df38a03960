// Package ot: the entropy-regularized transport solver.
//
// Sinkhorn-Knopp alternately rescales the Gibbs kernel K = exp(−C/ε) until
// the scaled plan diag(u)·K·diag(v) matches both marginals. The transport
// distance is then the Frobenius inner product of the plan with the ground
// cost. Degenerate scalings (zero or non-finite row sums) and exhausted
// budgets surface as ErrNotConverged rather than an approximate value.
package ot

import (
	"fmt"
	"math"

	"github.com/katalvlaran/genetraj/matrix"
)

// marginalCheckEvery controls how often the convergence test runs; the test
// itself is an extra O(N²) pass, so it is amortized over iterations.
const marginalCheckEvery = 10

// Normalize rescales every gene column of the expression matrix into a
// probability distribution over cells/bins.
//
// Preconditions and validation (in order):
//  1. expr must be non-nil (matrix.ErrNilMatrix).
//  2. Every entry must be finite (matrix.ErrNaNInf).
//  3. Every entry must be non-negative (ErrNegativeExpression).
//  4. Every column must carry positive total mass (ErrZeroMassGene, naming
//     the gene index).
//
// Returns one PMF slice per gene. Complexity: O(N·G).
func Normalize(expr *matrix.Dense) ([][]float64, error) {
	// 1) Validate the handle and numeric policy.
	if err := matrix.ValidateNotNil(expr); err != nil {
		return nil, fmt.Errorf("ot: expression: %w", err)
	}
	if err := matrix.ValidateFinite(expr); err != nil {
		return nil, fmt.Errorf("ot: expression: %w", err)
	}
	if err := matrix.ValidateNonNegative(expr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNegativeExpression, err)
	}

	// 2) Column sums, then rescale.
	n, g := expr.Rows(), expr.Cols()
	out := make([][]float64, g)
	var (
		col, row int
		v, total float64
	)
	for col = 0; col < g; col++ {
		pmf := make([]float64, n)
		total = 0
		for row = 0; row < n; row++ {
			v, _ = expr.At(row, col)
			pmf[row] = v
			total += v
		}
		// A zero-mass gene has no distribution: explicit degenerate-input error.
		if total <= 0 {
			return nil, fmt.Errorf("%w: gene %d", ErrZeroMassGene, col)
		}
		for row = 0; row < n; row++ {
			pmf[row] /= total
		}
		out[col] = pmf
	}

	return out, nil
}

// gibbsKernel is the solver state shared by every pair of one batch: the
// Gibbs kernel exp(−C/ε) and the ground cost, both immutable after
// construction, so any number of workers may read them concurrently.
type gibbsKernel struct {
	n      int       // ground-set size
	kernel []float64 // flat n×n Gibbs kernel exp(−C/ε)
	cost   []float64 // flat n×n ground cost (finite entries of C)
}

// newGibbsKernel precomputes the Gibbs kernel for the given ground cost and
// epsilon. Infinite costs map to kernel zeros (no feasible route between
// those locations). Complexity: O(N²).
func newGibbsKernel(cost *matrix.Dense, eps float64) *gibbsKernel {
	n := cost.Rows()
	k := &gibbsKernel{
		n:      n,
		kernel: make([]float64, n*n),
		cost:   make([]float64, n*n),
	}
	var (
		i, j int
		c    float64
	)
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			c, _ = cost.At(i, j)
			k.cost[i*n+j] = c
			if math.IsInf(c, 1) {
				k.kernel[i*n+j] = 0 // unreachable route carries no mass
			} else {
				k.kernel[i*n+j] = math.Exp(-c / eps)
			}
		}
	}

	return k
}

// solver holds the per-pair scratch state of one Sinkhorn solve on top of a
// shared (read-only) kernel. Each worker owns exactly one solver.
type solver struct {
	k       *gibbsKernel // shared immutable kernel + cost
	n       int          // cached k.n
	u, v    []float64    // scaling vectors
	kv, ktu []float64    // scratch products K·v and Kᵀ·u
	maxIter int
	tol     float64
}

// newSolver allocates the per-worker scratch over a shared kernel.
// Complexity: O(N) memory.
func newSolver(k *gibbsKernel, maxIter int, tol float64) *solver {
	return &solver{
		k:       k,
		n:       k.n,
		u:       make([]float64, k.n),
		v:       make([]float64, k.n),
		kv:      make([]float64, k.n),
		ktu:     make([]float64, k.n),
		maxIter: maxIter,
		tol:     tol,
	}
}

// distance runs one Sinkhorn solve between PMFs a and b and returns the
// entropic transport cost ⟨P, C⟩.
//
// Identical marginals short-circuit to an exact 0: the identity plan is
// optimal and the entropic bias would otherwise report a spurious positive
// self-distance.
//
// Returns ErrNotConverged when the scaling degenerates (zero or non-finite
// products) or the iteration budget runs out before the marginal tolerance
// is met. Complexity: O(maxIter·N²) worst case.
func (s *solver) distance(a, b []float64) (float64, error) {
	// 1) Identity short-circuit: d(p, p) = 0 exactly.
	if equalPMF(a, b) {
		return 0, nil
	}

	// 2) Initialize scalings uniformly.
	n := s.n
	var i, j int
	for i = 0; i < n; i++ {
		s.u[i] = 1.0
		s.v[i] = 1.0
	}

	// 3) Alternate the marginal scalings.
	var (
		iter      int
		sum, marg float64
		converged bool
	)
	for iter = 0; iter < s.maxIter; iter++ {
		// 3.1: kv = K·v ; u = a ./ kv.
		for i = 0; i < n; i++ {
			sum = 0
			for j = 0; j < n; j++ {
				sum += s.k.kernel[i*n+j] * s.v[j]
			}
			s.kv[i] = sum
			// A supported row with zero kernel mass cannot be scaled.
			if a[i] > 0 {
				if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
					return 0, fmt.Errorf("%w: degenerate row scaling at %d", ErrNotConverged, i)
				}
				s.u[i] = a[i] / sum
			} else {
				s.u[i] = 0
			}
		}
		// 3.2: ktu = Kᵀ·u ; v = b ./ ktu.
		for j = 0; j < n; j++ {
			sum = 0
			for i = 0; i < n; i++ {
				sum += s.k.kernel[i*n+j] * s.u[i]
			}
			s.ktu[j] = sum
			if b[j] > 0 {
				if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
					return 0, fmt.Errorf("%w: degenerate column scaling at %d", ErrNotConverged, j)
				}
				s.v[j] = b[j] / sum
			} else {
				s.v[j] = 0
			}
		}

		// 3.3: Periodic convergence test on the row marginal.
		if iter%marginalCheckEvery != marginalCheckEvery-1 {
			continue
		}
		marg = 0
		for i = 0; i < n; i++ {
			sum = 0
			for j = 0; j < n; j++ {
				sum += s.k.kernel[i*n+j] * s.v[j]
			}
			marg += math.Abs(s.u[i]*sum - a[i])
		}
		if marg < s.tol {
			converged = true
			break
		}
	}
	if !converged {
		return 0, fmt.Errorf("%w: %d iterations, marginal gap %.3e", ErrNotConverged, s.maxIter, marg)
	}

	// 4) Transport cost ⟨P, C⟩ with P = diag(u)·K·diag(v).
	//    Kernel zeros (infinite cost) carry no mass, so the Inf·0 products
	//    are skipped rather than poisoning the sum.
	var (
		total float64
		p     float64
	)
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			p = s.u[i] * s.k.kernel[i*n+j] * s.v[j]
			if p > 0 {
				total += p * s.k.cost[i*n+j]
			}
		}
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, fmt.Errorf("%w: non-finite transport cost", ErrNotConverged)
	}

	return total, nil
}

// equalPMF reports exact element-wise equality of two PMFs.
func equalPMF(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	var i int
	for i = range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// costExtent returns the largest finite entry of the cost matrix, used to
// scale the relative epsilon, and whether any entry is +Inf.
// Complexity: O(N²).
func costExtent(cost *matrix.Dense) (float64, bool) {
	n := cost.Rows()
	var (
		i, j   int
		c      float64
		best   float64
		hasInf bool
	)
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			c, _ = cost.At(i, j)
			if math.IsInf(c, 1) {
				hasInf = true
				continue
			}
			if c > best {
				best = c
			}
		}
	}

	return best, hasInf
}

// resolveEpsilon picks the entropic regularization for a ground cost. The
// second return is false only for an all-zero metric with no unreachable
// pairs, where every plan is free and no solve is needed. When the finite
// entries are all zero but +Inf entries exist, a positive epsilon is kept:
// the Gibbs kernel then reduces to the reachability indicator, so a pair
// supported on mutually unreachable components fails with ErrNotConverged
// instead of reporting a free plan.
func resolveEpsilon(cost *matrix.Dense, rel float64) (float64, bool) {
	max, hasInf := costExtent(cost)
	if eps := rel * max; eps > 0 {
		return eps, true
	}
	if hasInf {
		return rel, true
	}

	return 0, false
}

// Distance computes the transport distance between two gene PMFs under the
// given ground cost, with the same validation and solver behavior as one
// Pairwise task. Intended for spot checks and tests; batches should use
// Pairwise.
func Distance(a, b []float64, cost *matrix.Dense, opts ...Option) (float64, error) {
	// 1) Build and validate options.
	cfg := DefaultOptions()
	var opt Option
	for _, opt = range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return 0, err
	}

	// 2) Validate the ground cost and marginals.
	if err := matrix.ValidateDistanceMatrix(cost, distEps); err != nil {
		return 0, fmt.Errorf("ot: cost: %w", err)
	}
	n := cost.Rows()
	if len(a) != n || len(b) != n {
		return 0, fmt.Errorf("%w: marginals %d/%d vs cost %d", ErrShapeMismatch, len(a), len(b), n)
	}

	// 3) Solve.
	eps, solve := resolveEpsilon(cost, cfg.RelEpsilon)
	if !solve {
		// All-zero cost metric: every plan costs zero.
		return 0, nil
	}
	s := newSolver(newGibbsKernel(cost, eps), cfg.MaxIter, cfg.Tolerance)

	return s.distance(a, b)
}

// distEps is the symmetry/diagonal tolerance applied to the ground cost.
const distEps = 1e-9
