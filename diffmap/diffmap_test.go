// Package diffmap_test contains unit tests for the diffusion-map embedder:
// validation, determinism, recovery of linear structure and the isolated-gene
// convention.
package diffmap_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/genetraj/diffmap"
	"github.com/katalvlaran/genetraj/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineDistances returns the exact distance matrix of 1-D points.
func lineDistances(t *testing.T, xs ...float64) *matrix.Dense {
	t.Helper()
	n := len(xs)
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			rows[i][j] = math.Abs(xs[i] - xs[j])
		}
	}
	m, err := matrix.NewDenseFromRows(rows)
	require.NoError(t, err)

	return m
}

// ------------------------------------------------------------------------
// 1. Validation.
// ------------------------------------------------------------------------

func TestEmbed_BadOptions(t *testing.T) {
	dist := lineDistances(t, 0, 1, 2, 3, 4, 5, 6)

	_, err := diffmap.Embed(dist, diffmap.WithDims(0))
	assert.ErrorIs(t, err, diffmap.ErrBadDims)

	_, err = diffmap.Embed(dist, diffmap.WithDims(2), diffmap.WithTime(-1))
	assert.ErrorIs(t, err, diffmap.ErrBadTime)

	_, err = diffmap.Embed(dist, diffmap.WithDims(2), diffmap.WithLocalK(0))
	assert.ErrorIs(t, err, diffmap.ErrBadLocalK)

	_, err = diffmap.Embed(dist, diffmap.WithDims(2), diffmap.WithLocalK(7))
	assert.ErrorIs(t, err, diffmap.ErrBadLocalK)
}

func TestEmbed_TooFewGenes(t *testing.T) {
	dist := lineDistances(t, 0, 1, 2)

	// 3 genes cannot support 3 non-trivial dimensions.
	_, err := diffmap.Embed(dist, diffmap.WithDims(3), diffmap.WithLocalK(2))
	assert.ErrorIs(t, err, diffmap.ErrTooFewGenes)
}

func TestEmbed_NaNDistance(t *testing.T) {
	dist := lineDistances(t, 0, 1, 2, 3)
	require.NoError(t, dist.Set(0, 2, math.NaN()))
	require.NoError(t, dist.Set(2, 0, math.NaN()))

	_, err := diffmap.Embed(dist, diffmap.WithDims(1), diffmap.WithLocalK(2))
	assert.ErrorIs(t, err, diffmap.ErrNaNDistance,
		"failed transport entries must be rejected, not embedded")
}

func TestEmbed_InvalidDistanceMatrix(t *testing.T) {
	bad, err := matrix.NewDenseFromRows([][]float64{
		{0, 1},
		{2, 0},
	})
	require.NoError(t, err)

	_, err = diffmap.Embed(bad, diffmap.WithDims(1), diffmap.WithLocalK(1))
	assert.ErrorIs(t, err, matrix.ErrAsymmetry)
}

// TestEmbed_ToleratedAsymmetry: an input asymmetric within the accepted
// tolerance must embed cleanly instead of aborting in the spectral step.
func TestEmbed_ToleratedAsymmetry(t *testing.T) {
	dist := lineDistances(t, 0, 1, 2, 3, 4, 5)
	v, err := dist.At(1, 2)
	require.NoError(t, err)
	require.NoError(t, dist.Set(1, 2, v+1e-10))

	emb, err := diffmap.Embed(dist, diffmap.WithDims(2), diffmap.WithLocalK(2))
	require.NoError(t, err)
	assert.Equal(t, 6, emb.Rows())
	assert.Equal(t, 2, emb.Cols())
}

// ------------------------------------------------------------------------
// 2. Structure and conventions.
// ------------------------------------------------------------------------

// TestEmbed_Shape checks the output is G×Dims.
func TestEmbed_Shape(t *testing.T) {
	dist := lineDistances(t, 0, 1, 2, 3, 4, 5)

	emb, err := diffmap.Embed(dist, diffmap.WithDims(2), diffmap.WithLocalK(2))
	require.NoError(t, err)
	assert.Equal(t, 6, emb.Rows())
	assert.Equal(t, 2, emb.Cols())
}

// TestEmbed_LineOrderRecovered checks that the leading diffusion coordinate
// of collinear genes is monotone along the line (up to global direction).
func TestEmbed_LineOrderRecovered(t *testing.T) {
	dist := lineDistances(t, 0, 1, 2, 3, 4, 5, 6, 7)

	emb, err := diffmap.Embed(dist, diffmap.WithDims(1), diffmap.WithLocalK(3))
	require.NoError(t, err)

	coords := make([]float64, 8)
	var i int
	for i = 0; i < 8; i++ {
		coords[i], _ = emb.At(i, 0)
	}

	increasing, decreasing := true, true
	for i = 1; i < 8; i++ {
		if coords[i] <= coords[i-1] {
			increasing = false
		}
		if coords[i] >= coords[i-1] {
			decreasing = false
		}
	}
	assert.True(t, increasing || decreasing,
		"leading coordinate must order collinear genes monotonically: %v", coords)
}

// TestEmbed_Deterministic demands bit-identical embeddings across runs.
func TestEmbed_Deterministic(t *testing.T) {
	dist := lineDistances(t, 0, 0.5, 1.7, 2.1, 4, 4.2, 6)

	a, err := diffmap.Embed(dist, diffmap.WithDims(3), diffmap.WithLocalK(2))
	require.NoError(t, err)
	b, err := diffmap.Embed(dist, diffmap.WithDims(3), diffmap.WithLocalK(2))
	require.NoError(t, err)

	var i, j int
	var va, vb float64
	for i = 0; i < a.Rows(); i++ {
		for j = 0; j < a.Cols(); j++ {
			va, _ = a.At(i, j)
			vb, _ = b.At(i, j)
			assert.Equal(t, va, vb, "entry (%d,%d) must be identical", i, j)
		}
	}
}

// TestEmbed_IsolatedGene checks the documented convention: a gene at +Inf
// from everyone lands exactly at the origin.
func TestEmbed_IsolatedGene(t *testing.T) {
	dist := lineDistances(t, 0, 1, 2, 3, 4)
	// Cut gene 4 off from the rest.
	var i int
	for i = 0; i < 4; i++ {
		require.NoError(t, dist.Set(i, 4, math.Inf(1)))
		require.NoError(t, dist.Set(4, i, math.Inf(1)))
	}

	emb, err := diffmap.Embed(dist, diffmap.WithDims(2), diffmap.WithLocalK(2))
	require.NoError(t, err)

	var j int
	var v float64
	for j = 0; j < 2; j++ {
		v, _ = emb.At(4, j)
		assert.Equal(t, 0.0, v, "isolated gene gets the all-zero embedding")
	}
}

// TestEmbed_TimeDampens checks that a larger diffusion time shrinks the
// magnitude of every coordinate (|λ| < 1 for non-trivial pairs).
func TestEmbed_TimeDampens(t *testing.T) {
	dist := lineDistances(t, 0, 1, 2, 3, 4, 5)

	t1, err := diffmap.Embed(dist, diffmap.WithDims(2), diffmap.WithLocalK(2), diffmap.WithTime(1))
	require.NoError(t, err)
	t3, err := diffmap.Embed(dist, diffmap.WithDims(2), diffmap.WithLocalK(2), diffmap.WithTime(3))
	require.NoError(t, err)

	var i, j int
	var a, b float64
	for i = 0; i < 6; i++ {
		for j = 0; j < 2; j++ {
			a, _ = t1.At(i, j)
			b, _ = t3.At(i, j)
			assert.LessOrEqual(t, math.Abs(b), math.Abs(a)+1e-12,
				"longer diffusion cannot grow coordinate (%d,%d)", i, j)
		}
	}
}
