// Package trajectory_test contains unit tests for trajectory extraction:
// validation, the state-machine invariants (strict partitioning, early
// termination, monotone admission in t), reversal, and table export.
package trajectory_test

import (
	"bytes"
	"encoding/csv"
	"math"
	"sort"
	"testing"

	"github.com/katalvlaran/genetraj/matrix"
	"github.com/katalvlaran/genetraj/trajectory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// embed builds a gene embedding from explicit rows.
func embed(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFromRows(rows)
	require.NoError(t, err)

	return m
}

// twoClusters is an 8-gene, 1-D embedding with two well-separated groups:
// genes 0..3 near the origin, genes 4..7 far from it. With k = 2 the walk
// graph has no cross-cluster edges, so each cluster is one trajectory.
func twoClusters(t *testing.T) *matrix.Dense {
	t.Helper()

	return embed(t, [][]float64{
		{0}, {0.5}, {1}, {1.5},
		{10}, {10.5}, {11}, {11.5},
	})
}

// line is an 8-gene collinear embedding, fully connected under k = 2.
func line(t *testing.T) *matrix.Dense {
	t.Helper()

	return embed(t, [][]float64{
		{0}, {1}, {2}, {3}, {4}, {5}, {6}, {7},
	})
}

// geneSet collects a trajectory's genes into a sorted copy.
func geneSet(tr trajectory.Trajectory) []int {
	out := append([]int(nil), tr.Genes...)
	sort.Ints(out)

	return out
}

// ------------------------------------------------------------------------
// 1. Validation.
// ------------------------------------------------------------------------

func TestExtract_Validation(t *testing.T) {
	emb := line(t)

	_, err := trajectory.Extract(nil, []int{1})
	assert.ErrorIs(t, err, matrix.ErrNilMatrix)

	bad := line(t)
	require.NoError(t, bad.Set(2, 0, math.NaN()))
	_, err = trajectory.Extract(bad, []int{1})
	assert.ErrorIs(t, err, trajectory.ErrBadEmbedding)

	_, err = trajectory.Extract(emb, []int{2, -1})
	assert.ErrorIs(t, err, trajectory.ErrNegativeSteps)

	_, err = trajectory.Extract(emb, make([]int, 9))
	assert.ErrorIs(t, err, trajectory.ErrBadTrajectoryCount)

	_, err = trajectory.Extract(emb, []int{1}, trajectory.WithK(0))
	assert.ErrorIs(t, err, trajectory.ErrBadWalkNeighbors)

	_, err = trajectory.Extract(emb, []int{1}, trajectory.WithRelThreshold(0))
	assert.ErrorIs(t, err, trajectory.ErrBadThreshold)

	_, err = trajectory.Extract(emb, []int{1}, trajectory.WithRelThreshold(math.Inf(1)))
	assert.ErrorIs(t, err, trajectory.ErrBadThreshold)
}

// TestExtract_EmptyTList: zero requested trajectories yield an empty set
// and leave every gene unassigned.
func TestExtract_EmptyTList(t *testing.T) {
	res, err := trajectory.Extract(line(t), nil)
	require.NoError(t, err)

	assert.Empty(t, res.Trajectories)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, res.Unassigned)
	assert.Equal(t, 0, res.Assigned())
}

// ------------------------------------------------------------------------
// 2. State machine.
// ------------------------------------------------------------------------

// TestExtract_TwoClusters: with cross-cluster edges absent, the first
// trajectory is exactly the far cluster (it holds the extremal gene) and
// the second is exactly the near cluster.
func TestExtract_TwoClusters(t *testing.T) {
	res, err := trajectory.Extract(twoClusters(t), []int{10, 10}, trajectory.WithK(2))
	require.NoError(t, err)
	require.Len(t, res.Trajectories, 2)

	first := res.Trajectories[0]
	assert.Equal(t, 7, first.Terminus, "extremal gene anchors the first trajectory")
	assert.Equal(t, []int{4, 5, 6, 7}, geneSet(first))

	second := res.Trajectories[1]
	assert.Equal(t, 3, second.Terminus)
	assert.Equal(t, []int{0, 1, 2, 3}, geneSet(second))

	assert.Empty(t, res.Unassigned)
	assert.Equal(t, 8, res.Assigned())
}

// TestExtract_PositionsSortedFromTerminus: pseudo-positions start at 0 on
// the terminus and never decrease along the traversal.
func TestExtract_PositionsSortedFromTerminus(t *testing.T) {
	res, err := trajectory.Extract(line(t), []int{20}, trajectory.WithK(2))
	require.NoError(t, err)
	require.Len(t, res.Trajectories, 1)

	tr := res.Trajectories[0]
	require.NotEmpty(t, tr.Genes)
	assert.Equal(t, tr.Terminus, tr.Genes[0])
	assert.Equal(t, 0.0, tr.Positions[0])
	var i int
	for i = 1; i < len(tr.Positions); i++ {
		assert.GreaterOrEqual(t, tr.Positions[i], tr.Positions[i-1])
	}
}

// TestExtract_MonotoneInT: raising a trajectory's step count never shrinks
// its admitted set.
func TestExtract_MonotoneInT(t *testing.T) {
	emb := line(t)

	var prev []int
	var tc int
	for _, tc = range []int{0, 1, 3, 8, 20} {
		res, err := trajectory.Extract(emb, []int{tc}, trajectory.WithK(2))
		require.NoError(t, err)
		require.Len(t, res.Trajectories, 1)

		cur := geneSet(res.Trajectories[0])
		assert.Subset(t, cur, prev, "t=%d must keep every gene admitted at smaller t", tc)
		prev = cur
	}

	// t = 0 admits the terminus alone; a generous budget admits the line.
	res, err := trajectory.Extract(emb, []int{0}, trajectory.WithK(2))
	require.NoError(t, err)
	assert.Equal(t, []int{7}, res.Trajectories[0].Genes)

	res, err = trajectory.Extract(emb, []int{20}, trajectory.WithK(2))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, geneSet(res.Trajectories[0]))
}

// TestExtract_EarlyTermination: once every gene is assigned, later t list
// entries produce no trajectories.
func TestExtract_EarlyTermination(t *testing.T) {
	res, err := trajectory.Extract(line(t), []int{20, 20, 20}, trajectory.WithK(2))
	require.NoError(t, err)

	assert.Len(t, res.Trajectories, 1, "an exhausted gene set stops extraction")
	assert.Empty(t, res.Unassigned)
}

// TestExtract_Singletons: t = 0 rounds peel genes off one extremal
// terminus at a time.
func TestExtract_Singletons(t *testing.T) {
	emb := embed(t, [][]float64{{0}, {5}, {50}})

	res, err := trajectory.Extract(emb, []int{0, 0, 0}, trajectory.WithK(1))
	require.NoError(t, err)
	require.Len(t, res.Trajectories, 3)

	assert.Equal(t, []int{2}, res.Trajectories[0].Genes)
	assert.Equal(t, []int{1}, res.Trajectories[1].Genes)
	assert.Equal(t, []int{0}, res.Trajectories[2].Genes)
	assert.Empty(t, res.Unassigned)
}

// TestExtract_UnassignedReporting: a single trajectory on the two-cluster
// embedding leaves the near cluster behind — reported, not dropped.
func TestExtract_UnassignedReporting(t *testing.T) {
	res, err := trajectory.Extract(twoClusters(t), []int{10}, trajectory.WithK(2))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3}, res.Unassigned)

	_, err = trajectory.Extract(twoClusters(t), []int{10},
		trajectory.WithK(2), trajectory.WithFullAssignment())
	assert.ErrorIs(t, err, trajectory.ErrIncompleteAssignment)
}

// TestExtract_Deterministic: identical inputs yield identical results.
func TestExtract_Deterministic(t *testing.T) {
	a, err := trajectory.Extract(twoClusters(t), []int{10, 10}, trajectory.WithK(2))
	require.NoError(t, err)
	b, err := trajectory.Extract(twoClusters(t), []int{10, 10}, trajectory.WithK(2))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

// ------------------------------------------------------------------------
// 3. Reversal.
// ------------------------------------------------------------------------

func TestTrajectory_Reverse(t *testing.T) {
	res, err := trajectory.Extract(line(t), []int{20}, trajectory.WithK(2))
	require.NoError(t, err)
	tr := res.Trajectories[0]
	require.Greater(t, len(tr.Genes), 2)

	rev := tr.Reverse()

	// Same gene set, flipped order.
	assert.Equal(t, geneSet(tr), geneSet(rev))
	assert.Equal(t, tr.Genes[0], rev.Genes[len(rev.Genes)-1])

	// pos → max − pos, so the new start sits at 0 and order is ascending.
	max := tr.Positions[len(tr.Positions)-1]
	assert.Equal(t, 0.0, rev.Positions[0])
	var i int
	for i = 0; i < len(tr.Positions); i++ {
		assert.InDelta(t, max-tr.Positions[len(tr.Positions)-1-i], rev.Positions[i], 0)
	}

	// Reversing twice restores the original exactly.
	assert.Equal(t, tr, rev.Reverse())
}

// ------------------------------------------------------------------------
// 4. Table export.
// ------------------------------------------------------------------------

func TestResult_WriteTable(t *testing.T) {
	res, err := trajectory.Extract(twoClusters(t), []int{10}, trajectory.WithK(2))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.WriteTable(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"gene", "trajectory", "position"}, records[0])
	assert.Len(t, records, 9, "one row per gene plus the header")

	// Assigned rows carry the trajectory index; unassigned rows carry −1
	// and an empty position.
	assert.Equal(t, "0", records[1][1])
	last := records[len(records)-1]
	assert.Equal(t, "-1", last[1])
	assert.Equal(t, "", last[2])
}

func TestResult_WriteTable_Names(t *testing.T) {
	res, err := trajectory.Extract(embed(t, [][]float64{{0}, {1}, {2}}), []int{5}, trajectory.WithK(1))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.WriteTable(&buf, []string{"Sox2", "Nanog", "Pou5f1"}))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	seen := make(map[string]bool)
	var rec []string
	for _, rec = range records[1:] {
		seen[rec[0]] = true
	}
	assert.True(t, seen["Sox2"] && seen["Nanog"] && seen["Pou5f1"],
		"names must replace numeric gene indices")

	// A short name slice is rejected.
	err = res.WriteTable(&buf, []string{"Sox2"})
	assert.ErrorIs(t, err, trajectory.ErrBadNames)
}

func TestResult_RenderTable(t *testing.T) {
	res, err := trajectory.Extract(twoClusters(t), []int{10}, trajectory.WithK(2))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.RenderTable(&buf, nil))

	out := buf.String()
	assert.Contains(t, out, "GENE")
	assert.Contains(t, out, "TRAJECTORY")
	assert.Contains(t, out, "UNASSIGNED 4")

	err = res.RenderTable(&buf, []string{"only-one"})
	assert.ErrorIs(t, err, trajectory.ErrBadNames)
}
