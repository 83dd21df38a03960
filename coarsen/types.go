// Package coarsen defines the result type, configuration options and
// sentinel errors for cell coarse-graining.
package coarsen

import (
	"errors"

	"github.com/katalvlaran/genetraj/matrix"
)

// Sentinel errors returned by the coarsen package.
var (
	// ErrBadBinCount indicates bins < 1 or bins > number of cells.
	ErrBadBinCount = errors.New("coarsen: bin count out of range")

	// ErrShapeMismatch indicates the expression matrix and the distance
	// matrix disagree on the number of cells.
	ErrShapeMismatch = errors.New("coarsen: expression and distance shapes disagree")

	// ErrInfiniteDistance indicates the input distance matrix carries +Inf
	// entries; representative bin statistics over unreachable pairs are
	// undefined. Cap unreachable pairs upstream before coarsening.
	ErrInfiniteDistance = errors.New("coarsen: distance matrix has infinite entries")
)

// Aggregation selects how member expression is combined into bin expression.
//
//   - AggregateSum  — per-bin column sums (default; preserves total mass).
//   - AggregateMean — per-bin column means.
type Aggregation int

const (
	// AggregateSum sums member expression per bin (default).
	AggregateSum Aggregation = iota

	// AggregateMean averages member expression per bin.
	AggregateMean
)

// Options configures coarse-graining.
//
// Aggregation – Sum (default) or Mean member-expression combining.
type Options struct {
	Aggregation Aggregation
}

// Option represents a functional option for configuring Coarsen.
type Option func(*Options)

// WithMeanAggregation switches bin expression from member sums to means.
func WithMeanAggregation() Option {
	return func(o *Options) {
		o.Aggregation = AggregateMean
	}
}

// DefaultOptions returns the coarsening defaults: AggregateSum.
func DefaultOptions() Options {
	return Options{Aggregation: AggregateSum}
}

// Result holds the coarse-grained view of the cell population.
// All fields are immutable after Coarsen returns.
type Result struct {
	// Assignment maps each original cell index to its bin index (a total
	// partition; len == original cell count, values in [0, bins)).
	Assignment []int

	// Expression is the bins×genes aggregated expression matrix.
	Expression *matrix.Dense

	// Distance is the bins×bins representative distance matrix
	// (mean pairwise member distance, zero diagonal, symmetric).
	Distance *matrix.Dense
}
