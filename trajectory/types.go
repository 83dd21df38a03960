// Package trajectory defines the output types, configuration options and
// sentinel errors of trajectory extraction.
package trajectory

import (
	"errors"
	"sort"
)

// Sentinel errors returned by the trajectory package.
var (
	// ErrBadEmbedding indicates a NaN or ±Inf coordinate in the gene embedding.
	ErrBadEmbedding = errors.New("trajectory: embedding has NaN or Inf coordinates")

	// ErrBadWalkNeighbors indicates a walk-graph neighbor count below one.
	ErrBadWalkNeighbors = errors.New("trajectory: walk neighbor count must be at least 1")

	// ErrBadThreshold indicates a non-positive or non-finite admission threshold.
	ErrBadThreshold = errors.New("trajectory: admission threshold must be positive and finite")

	// ErrNegativeSteps indicates a negative diffusion step count in the t list.
	ErrNegativeSteps = errors.New("trajectory: diffusion step count must be non-negative")

	// ErrBadTrajectoryCount indicates more trajectories were requested than
	// the gene set can support.
	ErrBadTrajectoryCount = errors.New("trajectory: requested trajectory count exceeds gene count")

	// ErrIncompleteAssignment indicates genes remained unassigned after the
	// requested trajectories while full assignment was demanded.
	ErrIncompleteAssignment = errors.New("trajectory: genes left unassigned after requested trajectories")

	// ErrBadNames indicates a gene-name slice shorter than the gene count.
	ErrBadNames = errors.New("trajectory: name slice does not cover every gene")
)

// Options configures trajectory extraction.
//
// K                     – walk-graph neighbor count, clamped per round; independent of the cell-graph k (default 5).
// RelThreshold          – admission threshold relative to the uniform mass 1/|R| (default 1.0).
// RequireFullAssignment – treat leftover unassigned genes as ErrIncompleteAssignment.
type Options struct {
	K                     int     // walk-graph neighbor count
	RelThreshold          float64 // admission threshold relative to uniform mass
	RequireFullAssignment bool    // treat leftover genes as an error
}

// Option represents a functional option for configuring extraction.
type Option func(*Options)

// WithK sets the walk-graph neighbor count. Must be ≥ 1; validated in
// Extract (ErrBadWalkNeighbors).
func WithK(k int) Option {
	return func(o *Options) {
		o.K = k
	}
}

// WithRelThreshold sets the admission threshold relative to the uniform
// visitation mass 1/|R|. Values below 1 admit more genes, values above 1
// fewer. Must be positive and finite; validated in Extract (ErrBadThreshold).
func WithRelThreshold(rel float64) Option {
	return func(o *Options) {
		o.RelThreshold = rel
	}
}

// WithFullAssignment makes leftover unassigned genes an error
// (ErrIncompleteAssignment) rather than a reported set.
func WithFullAssignment() Option {
	return func(o *Options) {
		o.RequireFullAssignment = true
	}
}

// DefaultOptions returns the canonical extraction configuration:
// K = 5, RelThreshold = 1.0, leftover genes reported rather than rejected.
func DefaultOptions() Options {
	return Options{
		K:            5,
		RelThreshold: 1.0,
	}
}

// Trajectory is one ordered gene sequence. Genes are listed in traversal
// order; Positions holds the matching pseudo-positions (geodesic distance
// from the terminus over the walk graph). len(Genes) == len(Positions) and
// both are immutable after extraction.
type Trajectory struct {
	Index     int       // position in Result.Trajectories
	Terminus  int       // gene anchoring the trajectory (always a member)
	Genes     []int     // gene indices in traversal order
	Positions []float64 // pseudo-position per gene, aligned with Genes
}

// Reverse returns a copy of the trajectory traversed from the opposite end:
// gene order is flipped and every pseudo-position p becomes max − p, where
// max is the largest position in the trajectory. Nothing is recomputed, so
// reversing twice restores the original exactly.
func (t Trajectory) Reverse() Trajectory {
	n := len(t.Genes)
	out := Trajectory{
		Index:     t.Index,
		Terminus:  t.Terminus,
		Genes:     make([]int, n),
		Positions: make([]float64, n),
	}
	var max float64
	if n > 0 {
		max = t.Positions[n-1] // positions are sorted ascending
	}
	var i int
	for i = 0; i < n; i++ {
		out.Genes[i] = t.Genes[n-1-i]
		out.Positions[i] = max - t.Positions[n-1-i]
	}

	return out
}

// Result bundles the extracted trajectories with the genes no trajectory
// admitted. Unassigned is sorted ascending; an empty slice means every gene
// was placed.
type Result struct {
	Trajectories []Trajectory // in extraction order
	Unassigned   []int        // genes left in the remaining set, sorted
}

// Assigned reports the total number of genes across all trajectories.
func (r *Result) Assigned() int {
	var total int
	var t Trajectory
	for _, t = range r.Trajectories {
		total += len(t.Genes)
	}

	return total
}

// sortedKeys returns the keys of a gene set in ascending order.
func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	var g int
	for g = range set {
		out = append(out, g)
	}
	sort.Ints(out)

	return out
}
