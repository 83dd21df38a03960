// Package ot defines configuration options, sentinel errors and the batch
// result type for the optimal-transport distance engine.
package ot

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/katalvlaran/genetraj/matrix"
)

// Sentinel errors returned by the ot package.
var (
	// ErrZeroMassGene indicates a gene column with zero total expression:
	// it has no distribution over cells and no transport distance.
	ErrZeroMassGene = errors.New("ot: gene column has zero total expression")

	// ErrNegativeExpression indicates a negative expression entry;
	// expression values are unnormalized probability mass and must be ≥ 0.
	ErrNegativeExpression = errors.New("ot: negative expression value")

	// ErrShapeMismatch indicates the expression row count does not match the
	// ground-cost matrix size.
	ErrShapeMismatch = errors.New("ot: expression rows and cost size disagree")

	// ErrBadEpsilon indicates a non-positive relative regularization strength.
	ErrBadEpsilon = errors.New("ot: relative epsilon must be positive")

	// ErrBadMaxIter indicates a non-positive Sinkhorn iteration budget.
	ErrBadMaxIter = errors.New("ot: iteration budget must be positive")

	// ErrBadTolerance indicates a non-positive marginal tolerance.
	ErrBadTolerance = errors.New("ot: tolerance must be positive")

	// ErrBadWorkers indicates a worker count below one.
	ErrBadWorkers = errors.New("ot: worker count must be at least 1")

	// ErrNotConverged indicates a Sinkhorn solve that exhausted its iteration
	// budget or degenerated numerically before meeting the tolerance.
	ErrNotConverged = errors.New("ot: sinkhorn solve did not converge")
)

// ProgressFunc observes batch completion: done pairs out of total.
// Pairwise may invoke it concurrently from worker goroutines; implementations
// must be safe for concurrent use.
type ProgressFunc func(done, total int)

// Options configures the Sinkhorn solver and the pairwise batch.
//
// RelEpsilon – entropic regularization as a fraction of the largest finite
// ground cost (default 0.05). Smaller values sharpen the approximation and
// slow convergence.
// MaxIter    – Sinkhorn iteration budget per pair (default 5000).
// Tolerance  – L1 marginal violation required for convergence (default 1e-8).
// Workers    – concurrent pair solves (default runtime.GOMAXPROCS(0)).
// Progress   – optional completion hook (default nil).
type Options struct {
	RelEpsilon float64
	MaxIter    int
	Tolerance  float64
	Workers    int
	Progress   ProgressFunc
}

// Option represents a functional option for configuring the engine.
type Option func(*Options)

// WithRelEpsilon sets the relative entropic regularization strength.
// Must be positive; validated in Pairwise/Distance (ErrBadEpsilon).
func WithRelEpsilon(rel float64) Option {
	return func(o *Options) { o.RelEpsilon = rel }
}

// WithMaxIter sets the per-pair Sinkhorn iteration budget.
// Must be positive; validated in Pairwise/Distance (ErrBadMaxIter).
func WithMaxIter(n int) Option {
	return func(o *Options) { o.MaxIter = n }
}

// WithTolerance sets the L1 marginal violation accepted as convergence.
// Must be positive; validated in Pairwise/Distance (ErrBadTolerance).
func WithTolerance(tol float64) Option {
	return func(o *Options) { o.Tolerance = tol }
}

// WithWorkers sets the number of concurrent pair solves.
// Must be ≥ 1; validated in Pairwise (ErrBadWorkers).
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// WithProgress installs a completion hook called after every solved pair.
// The hook may run concurrently from several workers.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Options) { o.Progress = fn }
}

// DefaultOptions returns the solver defaults documented on Options.
func DefaultOptions() Options {
	return Options{
		RelEpsilon: 0.05,
		MaxIter:    5000,
		Tolerance:  1e-8,
		Workers:    runtime.GOMAXPROCS(0),
		Progress:   nil,
	}
}

// validate checks the numeric option fields shared by Distance and Pairwise.
func (o *Options) validate() error {
	if o.RelEpsilon <= 0 || math.IsNaN(o.RelEpsilon) || math.IsInf(o.RelEpsilon, 0) {
		return ErrBadEpsilon
	}
	if o.MaxIter <= 0 {
		return ErrBadMaxIter
	}
	if o.Tolerance <= 0 || math.IsNaN(o.Tolerance) {
		return ErrBadTolerance
	}

	return nil
}

// PairFailure records one gene pair whose solve did not produce a distance.
type PairFailure struct {
	I, J int   // gene indices, I < J
	Err  error // the wrapped per-pair failure
}

// Error implements the error interface for a single pair failure.
func (f PairFailure) Error() string {
	return fmt.Sprintf("ot: pair (%d,%d): %v", f.I, f.J, f.Err)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (f PairFailure) Unwrap() error { return f.Err }

// PairwiseResult is the outcome of a batch of gene-pair transport solves.
//
// Distances is a symmetric G×G matrix with zero diagonal. Entries of failed
// pairs hold NaN — never a substituted default — and the matching failures
// are listed in Failures sorted by (I, J). A result with an empty Failures
// slice is fully computed.
type PairwiseResult struct {
	Distances *matrix.Dense // G×G distances; NaN marks failed pairs
	Failures  []PairFailure // failed pairs in (I,J) order; empty when complete
}

// Complete reports whether every pair was solved. Complexity: O(1).
func (r *PairwiseResult) Complete() bool { return len(r.Failures) == 0 }

// FailureAt returns the recorded failure for the unordered pair (i, j), or
// nil when the pair was computed. Complexity: O(len(Failures)).
func (r *PairwiseResult) FailureAt(i, j int) error {
	if j < i {
		i, j = j, i
	}
	var f PairFailure
	for _, f = range r.Failures {
		if f.I == i && f.J == j {
			return f
		}
	}

	return nil
}
