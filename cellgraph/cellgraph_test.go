// Package cellgraph_test contains unit tests for kNN graph construction and
// geodesic distances: validation paths, path-graph distances, unreachable
// policies, duplicate points, metric invariants and worker-count invariance.
package cellgraph_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/genetraj/cellgraph"
	"github.com/katalvlaran/genetraj/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// line returns a 1-D embedding with the given x coordinates.
func line(t *testing.T, xs ...float64) *matrix.Dense {
	t.Helper()
	rows := make([][]float64, len(xs))
	for i, x := range xs {
		rows[i] = []float64{x}
	}
	m, err := matrix.NewDenseFromRows(rows)
	require.NoError(t, err)

	return m
}

// ------------------------------------------------------------------------
// 1. Validation: invalid embeddings and neighbor counts must fail fast.
// ------------------------------------------------------------------------

func TestNewKNN_NilEmbedding(t *testing.T) {
	_, err := cellgraph.NewKNN(nil, 1)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestNewKNN_TooFewPoints(t *testing.T) {
	_, err := cellgraph.NewKNN(line(t, 0), 1)
	assert.ErrorIs(t, err, cellgraph.ErrTooFewPoints)
}

func TestNewKNN_BadNeighborCount(t *testing.T) {
	pts := line(t, 0, 1, 2)

	_, err := cellgraph.NewKNN(pts, 0)
	assert.ErrorIs(t, err, cellgraph.ErrBadNeighborCount, "k=0 must error")

	_, err = cellgraph.NewKNN(pts, 3)
	assert.ErrorIs(t, err, cellgraph.ErrBadNeighborCount, "k=N must error")
}

func TestNewKNN_NonFiniteEmbedding(t *testing.T) {
	pts := line(t, 0, 1, 2)
	require.NoError(t, pts.Set(1, 0, math.NaN()))

	_, err := cellgraph.NewKNN(pts, 1)
	assert.ErrorIs(t, err, cellgraph.ErrNonFiniteEmbedding)
}

// ------------------------------------------------------------------------
// 2. Basic functionality: path graphs and geodesic sums.
// ------------------------------------------------------------------------

// TestAllPairs_PathGraph checks that four collinear points with k=1 chain
// into a path whose geodesics are the coordinate differences.
func TestAllPairs_PathGraph(t *testing.T) {
	g, err := cellgraph.NewKNN(line(t, 0, 1, 2, 3), 1)
	require.NoError(t, err)
	require.Equal(t, 4, g.Order())

	dist, err := g.AllPairs()
	require.NoError(t, err)

	d03, err := dist.At(0, 3)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, d03, 1e-12, "geodesic 0→3 walks the whole path")

	d12, err := dist.At(1, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d12, 1e-12)
}

// TestAllPairs_DistanceMatrixInvariants verifies symmetry, zero diagonal and
// non-negativity on a 2-D point cloud.
func TestAllPairs_DistanceMatrixInvariants(t *testing.T) {
	pts, err := matrix.NewDenseFromRows([][]float64{
		{0, 0}, {1, 0}, {0, 1}, {2, 2}, {3, 1}, {1, 3},
	})
	require.NoError(t, err)

	g, err := cellgraph.NewKNN(pts, 2)
	require.NoError(t, err)

	dist, err := g.AllPairs()
	require.NoError(t, err)
	assert.NoError(t, matrix.ValidateDistanceMatrix(dist, 1e-12))
}

// TestAllPairs_TriangleInequality checks d(a,c) ≤ d(a,b)+d(b,c) for every
// mutually reachable triple.
func TestAllPairs_TriangleInequality(t *testing.T) {
	pts, err := matrix.NewDenseFromRows([][]float64{
		{0, 0}, {1, 0.2}, {2, 0}, {2.5, 1}, {1.5, 2}, {0.5, 1.4},
	})
	require.NoError(t, err)

	g, err := cellgraph.NewKNN(pts, 2)
	require.NoError(t, err)

	dist, err := g.AllPairs()
	require.NoError(t, err)

	n := dist.Rows()
	var a, b, c int
	var dab, dbc, dac float64
	for a = 0; a < n; a++ {
		for b = 0; b < n; b++ {
			for c = 0; c < n; c++ {
				dab, _ = dist.At(a, b)
				dbc, _ = dist.At(b, c)
				dac, _ = dist.At(a, c)
				if math.IsInf(dab, 1) || math.IsInf(dbc, 1) || math.IsInf(dac, 1) {
					continue // only mutually reachable triples are bound
				}
				assert.LessOrEqual(t, dac, dab+dbc+1e-9,
					"triangle inequality for (%d,%d,%d)", a, b, c)
			}
		}
	}
}

// ------------------------------------------------------------------------
// 3. Edge cases: duplicates and disconnected components.
// ------------------------------------------------------------------------

// TestNewKNN_DuplicatePoints keeps zero-weight edges between coincident
// points and still reaches the rest of the cloud through them.
func TestNewKNN_DuplicatePoints(t *testing.T) {
	g, err := cellgraph.NewKNN(line(t, 0, 0, 5), 1)
	require.NoError(t, err)

	dist, err := g.AllPairs()
	require.NoError(t, err)

	d01, err := dist.At(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d01, "coincident points are at geodesic distance 0")

	d12, err := dist.At(1, 2)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, d12, 1e-12, "duplicate routes through its twin")
}

// TestAllPairs_DisconnectedPolicies exercises all three unreachable policies
// on a two-component graph.
func TestAllPairs_DisconnectedPolicies(t *testing.T) {
	// Two tight pairs far apart; k=1 links only within each pair.
	g, err := cellgraph.NewKNN(line(t, 0, 1, 100, 101), 1)
	require.NoError(t, err)

	// Default policy: +Inf sentinel.
	dist, err := g.AllPairs()
	require.NoError(t, err)
	cross, err := dist.At(0, 2)
	require.NoError(t, err)
	assert.True(t, math.IsInf(cross, 1), "default policy reports +Inf")

	// Cap policy: finite substitute.
	capped, err := g.AllPairs(cellgraph.WithCap(999))
	require.NoError(t, err)
	cross, err = capped.At(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 999.0, cross, "cap policy substitutes the cap")

	// Error policy: hard failure naming the pair.
	_, err = g.AllPairs(cellgraph.WithUnreachableError())
	assert.ErrorIs(t, err, cellgraph.ErrUnreachable)
}

// ------------------------------------------------------------------------
// 4. Options and concurrency.
// ------------------------------------------------------------------------

func TestAllPairs_BadOptions(t *testing.T) {
	g, err := cellgraph.NewKNN(line(t, 0, 1, 2), 1)
	require.NoError(t, err)

	_, err = g.AllPairs(cellgraph.WithWorkers(0))
	assert.ErrorIs(t, err, cellgraph.ErrBadWorkers)

	_, err = g.AllPairs(cellgraph.WithCap(-1))
	assert.ErrorIs(t, err, cellgraph.ErrBadCap)

	_, err = g.AllPairs(cellgraph.WithCap(math.Inf(1)))
	assert.ErrorIs(t, err, cellgraph.ErrBadCap)
}

// TestAllPairs_WorkerInvariance demands identical matrices from serial and
// parallel runs.
func TestAllPairs_WorkerInvariance(t *testing.T) {
	pts, err := matrix.NewDenseFromRows([][]float64{
		{0, 0}, {1, 1}, {2, 0}, {3, 1}, {4, 0}, {5, 1}, {6, 0},
	})
	require.NoError(t, err)

	g, err := cellgraph.NewKNN(pts, 2)
	require.NoError(t, err)

	serial, err := g.AllPairs(cellgraph.WithWorkers(1))
	require.NoError(t, err)
	parallel, err := g.AllPairs(cellgraph.WithWorkers(4))
	require.NoError(t, err)

	n := serial.Rows()
	var i, j int
	var a, b float64
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			a, _ = serial.At(i, j)
			b, _ = parallel.At(i, j)
			assert.Equal(t, a, b, "entry (%d,%d) must not depend on worker count", i, j)
		}
	}
}

// TestGraph_Neighbors checks the adjacency accessor: ascending order,
// symmetric weights, bounds check, and that callers get copies.
func TestGraph_Neighbors(t *testing.T) {
	g, err := cellgraph.NewKNN(line(t, 0, 1, 3), 1)
	require.NoError(t, err)

	ids, ws, err := g.Neighbors(1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, ids)
	assert.Equal(t, []float64{1, 2}, ws)

	// Mutating the returned slices must not touch the graph.
	ids[0], ws[0] = 99, 99
	ids2, ws2, err := g.Neighbors(1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, ids2)
	assert.Equal(t, []float64{1, 2}, ws2)

	_, _, err = g.Neighbors(3)
	assert.ErrorIs(t, err, cellgraph.ErrVertexOutOfRange)
}

// TestGraph_FromValidation covers the single-source bounds check.
func TestGraph_FromValidation(t *testing.T) {
	g, err := cellgraph.NewKNN(line(t, 0, 1), 1)
	require.NoError(t, err)

	_, err = g.From(-1)
	assert.ErrorIs(t, err, cellgraph.ErrVertexOutOfRange)

	_, err = g.From(2)
	assert.ErrorIs(t, err, cellgraph.ErrVertexOutOfRange)
}
