// Package pipeline defines the aggregated configuration, result bundle and
// sentinel errors of the end-to-end run.
package pipeline

import (
	"errors"
	"io"

	"github.com/katalvlaran/genetraj/matrix"
	"github.com/katalvlaran/genetraj/ot"
	"github.com/katalvlaran/genetraj/trajectory"
)

// Sentinel errors returned by the pipeline package. Stage-specific failures
// propagate the owning package's sentinels unchanged.
var (
	// ErrCellCountMismatch indicates the expression matrix and the cell
	// embedding disagree on the number of cells.
	ErrCellCountMismatch = errors.New("pipeline: expression rows and embedding rows differ")

	// ErrBadBinCount indicates a negative coarse bin count.
	ErrBadBinCount = errors.New("pipeline: bin count must be non-negative")

	// ErrBadGeneNames indicates a gene-name slice whose length differs from
	// the gene count.
	ErrBadGeneNames = errors.New("pipeline: gene name count does not match gene count")

	// ErrTransportFailures indicates one or more gene pairs failed their
	// transport solve; the partial result carries the failure list.
	ErrTransportFailures = errors.New("pipeline: transport solve failed for some gene pairs")
)

// Options aggregates every stage knob of the run. All fields have working
// defaults (DefaultOptions); the zero value is not usable.
//
// CellK                 – cell-graph neighbor count (default 10).
// Cap                   – finite substitute for unreachable cell distances; 0 keeps +Inf.
// Bins                  – coarse bin count; 0 disables coarsening (default).
// MeanBins              – average member expression per bin instead of summing it.
// Transport             – Sinkhorn configuration; its Workers field also drives the distance fan-out.
// Dims / Time / LocalK  – diffusion-map coordinates, time exponent, bandwidth neighbors.
// TrajK                 – trajectory walk-graph neighbor count (default 5).
// RelThreshold          – trajectory admission scale relative to uniform mass (default 1.0).
// RequireFullAssignment – reject leftover unassigned genes.
// Names                 – optional gene identifiers, exported with the result table.
type Options struct {
	CellK                 int
	Cap                   float64
	Bins                  int
	MeanBins              bool
	Transport             ot.Options
	Dims                  int
	Time                  int
	LocalK                int
	TrajK                 int
	RelThreshold          float64
	RequireFullAssignment bool
	Names                 []string
}

// Option represents a functional option for configuring a run.
type Option func(*Options)

// WithCellK sets the cell-graph neighbor count.
func WithCellK(k int) Option {
	return func(o *Options) { o.CellK = k }
}

// WithDistanceCap substitutes a finite cap for unreachable cell-pair
// distances. Required when coarsening a disconnected cell graph.
func WithDistanceCap(cap float64) Option {
	return func(o *Options) { o.Cap = cap }
}

// WithBins enables coarse-graining into the given number of bins before the
// transport stage. Zero disables coarsening.
func WithBins(bins int) Option {
	return func(o *Options) { o.Bins = bins }
}

// WithMeanBins averages member expression per bin instead of summing it.
func WithMeanBins() Option {
	return func(o *Options) { o.MeanBins = true }
}

// WithTransport overrides the Sinkhorn configuration of the transport
// stage. Later stage-level options still apply on top.
func WithTransport(opts ...ot.Option) Option {
	return func(o *Options) {
		var fn ot.Option
		for _, fn = range opts {
			fn(&o.Transport)
		}
	}
}

// WithWorkers sets the worker count shared by the distance and transport
// fan-outs.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Transport.Workers = n }
}

// WithProgress installs a completion hook on the transport stage, the
// run's dominant cost.
func WithProgress(fn ot.ProgressFunc) Option {
	return func(o *Options) { o.Transport.Progress = fn }
}

// WithDims sets the number of diffusion-map coordinates.
func WithDims(d int) Option {
	return func(o *Options) { o.Dims = d }
}

// WithTime sets the diffusion time of the gene embedding.
func WithTime(t int) Option {
	return func(o *Options) { o.Time = t }
}

// WithLocalK sets the local-bandwidth neighbor count of the gene embedding.
func WithLocalK(k int) Option {
	return func(o *Options) { o.LocalK = k }
}

// WithTrajectoryK sets the trajectory walk-graph neighbor count.
func WithTrajectoryK(k int) Option {
	return func(o *Options) { o.TrajK = k }
}

// WithRelThreshold sets the trajectory admission threshold relative to the
// uniform visitation mass.
func WithRelThreshold(rel float64) Option {
	return func(o *Options) { o.RelThreshold = rel }
}

// WithFullAssignment makes leftover unassigned genes fail the run.
func WithFullAssignment() Option {
	return func(o *Options) { o.RequireFullAssignment = true }
}

// WithGeneNames attaches gene identifiers; length must equal the gene
// count (ErrBadGeneNames).
func WithGeneNames(names []string) Option {
	return func(o *Options) { o.Names = names }
}

// DefaultOptions returns the canonical run configuration: 10 cell
// neighbors, no coarsening, Sinkhorn defaults, a 5-dimensional embedding at
// diffusion time 1, and trajectory defaults.
func DefaultOptions() Options {
	return Options{
		CellK:        10,
		Bins:         0,
		Transport:    ot.DefaultOptions(),
		Dims:         5,
		Time:         1,
		LocalK:       5,
		TrajK:        5,
		RelThreshold: 1.0,
	}
}

// Result bundles every materialized stage output. Each field is produced
// once and never mutated afterwards; downstream consumers may read them
// concurrently.
//
// On ErrTransportFailures the result is partial: CellDistances,
// GeneDistances (with NaN at failed pairs) and Failures are populated,
// Embedding and Trajectories are nil.
type Result struct {
	CellDistances *matrix.Dense    // cell×cell (or bin×bin when coarsened)
	Assignment    []int            // cell → bin map, nil without coarsening
	GeneDistances *matrix.Dense    // gene×gene transport distances
	Failures      []ot.PairFailure // non-converged pairs, sorted
	Embedding     *matrix.Dense    // gene×Dims diffusion coordinates
	Trajectories  *trajectory.Result
	Names         []string // gene identifiers when supplied
}

// WriteTable exports the trajectory table as CSV using the run's gene
// names. See trajectory.Result.WriteTable.
func (r *Result) WriteTable(w io.Writer) error {
	return r.Trajectories.WriteTable(w, r.Names)
}
