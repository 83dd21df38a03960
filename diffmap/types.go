// Package diffmap defines configuration options and sentinel errors for the
// diffusion-map gene embedder.
package diffmap

import "errors"

// Sentinel errors returned by the diffmap package.
var (
	// ErrTooFewGenes indicates the gene set cannot supply Dims non-trivial
	// eigenpairs (needs at least Dims+1 genes).
	ErrTooFewGenes = errors.New("diffmap: fewer genes than embedding dimensions")

	// ErrBadDims indicates a requested dimension count below one.
	ErrBadDims = errors.New("diffmap: embedding dimension must be at least 1")

	// ErrBadTime indicates a negative diffusion time.
	ErrBadTime = errors.New("diffmap: diffusion time must be non-negative")

	// ErrBadLocalK indicates a bandwidth neighbor index outside [1, G−1].
	ErrBadLocalK = errors.New("diffmap: bandwidth neighbor index out of range")

	// ErrNaNDistance indicates NaN entries in the gene distance matrix —
	// typically failed transport pairs passed through without checking the
	// batch result first.
	ErrNaNDistance = errors.New("diffmap: gene distance matrix has NaN entries")
)

// Options configures the diffusion-map embedding.
//
// Dims   – number of non-trivial eigenpairs to embed with (default 5).
// Time   – integer diffusion-time exponent on the eigenvalues (default 1).
// LocalK – neighbor index for the local kernel bandwidth (default 5).
type Options struct {
	Dims   int
	Time   int
	LocalK int
}

// Option represents a functional option for configuring Embed.
type Option func(*Options)

// WithDims sets the embedding dimension count.
// Must be ≥ 1; validated in Embed (ErrBadDims).
func WithDims(d int) Option {
	return func(o *Options) { o.Dims = d }
}

// WithTime sets the diffusion-time exponent.
// Must be ≥ 0; validated in Embed (ErrBadTime).
func WithTime(t int) Option {
	return func(o *Options) { o.Time = t }
}

// WithLocalK sets the bandwidth neighbor index.
// Must satisfy 1 ≤ LocalK ≤ G−1; validated in Embed (ErrBadLocalK).
func WithLocalK(k int) Option {
	return func(o *Options) { o.LocalK = k }
}

// DefaultOptions returns the embedding defaults documented on Options.
func DefaultOptions() Options {
	return Options{
		Dims:   5,
		Time:   1,
		LocalK: 5,
	}
}
