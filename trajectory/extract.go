// Package trajectory: iterative trajectory extraction over a gene embedding.
//
// Extraction is a small explicit state machine over the set R of unassigned
// genes. Each round anchors a new trajectory at the most extremal remaining
// gene, scores the rest of R by cumulative random-walk visitation mass from
// that terminus, admits every gene whose score clears the threshold, orders
// the admitted genes by their walk-graph geodesic distance from the
// terminus, and removes them from R. The walk graph is rebuilt per round on
// the genes still in R, so earlier trajectories never leak transition mass
// into later ones.
package trajectory

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/genetraj/cellgraph"
	"github.com/katalvlaran/genetraj/matrix"
)

// Extract partitions genes into len(tList) ordered trajectories.
//
// emb is the G×D gene embedding; row norms decide termini and row distances
// drive the walk graph. tList supplies the diffusion step count of each
// trajectory in extraction order: trajectory i spreads visitation mass for
// tList[i] steps, so a larger entry admits more genes. Extraction stops
// early when R empties; genes still in R after the last trajectory are
// reported in Result.Unassigned (or rejected via WithFullAssignment).
//
// The computation is a pure function of (emb, tList, opts): repeated runs
// yield identical results.
//
// Returns ErrBadEmbedding, ErrNegativeSteps, ErrBadTrajectoryCount,
// ErrBadWalkNeighbors, ErrBadThreshold, ErrIncompleteAssignment, or a
// matrix validation error for a nil/empty embedding.
// Complexity: O(T · (G²·D + t·G·k)) time, O(G·(D+k)) memory.
func Extract(emb *matrix.Dense, tList []int, opts ...Option) (*Result, error) {
	// 1) Validate the embedding.
	if err := matrix.ValidateNotNil(emb); err != nil {
		return nil, err
	}
	if !emb.IsFinite() {
		return nil, ErrBadEmbedding
	}
	genes := emb.Rows()

	// 2) Validate the step list against the gene set.
	var i, t int
	for i, t = range tList {
		if t < 0 {
			return nil, fmt.Errorf("%w: t_list[%d] = %d", ErrNegativeSteps, i, t)
		}
	}
	if len(tList) > genes {
		return nil, fmt.Errorf("%w: %d requested, %d genes", ErrBadTrajectoryCount, len(tList), genes)
	}

	// 3) Validate options.
	cfg := DefaultOptions()
	var opt Option
	for _, opt = range opts {
		opt(&cfg)
	}
	if cfg.K < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadWalkNeighbors, cfg.K)
	}
	if !(cfg.RelThreshold > 0) || math.IsInf(cfg.RelThreshold, 1) {
		return nil, fmt.Errorf("%w: got %v", ErrBadThreshold, cfg.RelThreshold)
	}

	// 4) Initialize the state machine: R holds every gene.
	remaining := make(map[int]struct{}, genes)
	for i = 0; i < genes; i++ {
		remaining[i] = struct{}{}
	}
	norms := rowNorms(emb)

	res := &Result{Trajectories: make([]Trajectory, 0, len(tList))}

	// 5) One round per requested trajectory, stopping early when R empties.
	var traj Trajectory
	var err error
	for i, t = range tList {
		if len(remaining) == 0 {
			break
		}
		traj, err = extractOne(emb, norms, remaining, t, &cfg)
		if err != nil {
			return nil, err
		}
		traj.Index = i
		res.Trajectories = append(res.Trajectories, traj)
	}

	// 6) Report or reject whatever R still holds.
	res.Unassigned = sortedKeys(remaining)
	if cfg.RequireFullAssignment && len(res.Unassigned) > 0 {
		return nil, fmt.Errorf("%w: %d remaining", ErrIncompleteAssignment, len(res.Unassigned))
	}

	return res, nil
}

// extractOne runs a single round: terminus selection, walk scoring,
// admission, ordering, and removal from the remaining set.
func extractOne(emb *matrix.Dense, norms []float64, remaining map[int]struct{}, steps int, cfg *Options) (Trajectory, error) {
	// 1) Map the remaining genes to dense local indices (ascending order
	//    keeps every downstream step deterministic).
	members := sortedKeys(remaining)
	m := len(members)

	// 2) Terminus: the remaining gene farthest from the embedding origin.
	var local, g, terminus int
	best := math.Inf(-1)
	for local, g = range members {
		if norms[g] > best {
			best = norms[g]
			terminus = local
		}
	}

	// 3) A lone remaining gene is a singleton trajectory at position 0.
	if m == 1 {
		g = members[terminus]
		delete(remaining, g)

		return Trajectory{
			Terminus:  g,
			Genes:     []int{g},
			Positions: []float64{0},
		}, nil
	}

	// 4) Build the walk graph on the remaining genes only, clamping k to
	//    the sub-population size.
	sub, err := subEmbedding(emb, members)
	if err != nil {
		return Trajectory{}, err
	}
	k := cfg.K
	if k > m-1 {
		k = m - 1
	}
	graph, err := cellgraph.NewKNN(sub, k)
	if err != nil {
		return Trajectory{}, err
	}

	// 5) Score every remaining gene by cumulative visitation mass from the
	//    terminus and admit those that clear the uniform-mass threshold.
	score, err := walkScores(graph, terminus, steps)
	if err != nil {
		return Trajectory{}, err
	}
	threshold := cfg.RelThreshold / float64(m)
	admitted := make([]int, 0, m)
	for local = 0; local < m; local++ {
		if local == terminus || score[local] >= threshold {
			admitted = append(admitted, local)
		}
	}

	// 6) Pseudo-position: geodesic distance from the terminus over the walk
	//    graph. Admitted genes always carry positive walk mass, so they are
	//    reachable and their distance is finite.
	dist, err := graph.From(terminus)
	if err != nil {
		return Trajectory{}, err
	}
	sort.Slice(admitted, func(a, b int) bool {
		if dist[admitted[a]] != dist[admitted[b]] {
			return dist[admitted[a]] < dist[admitted[b]]
		}

		return members[admitted[a]] < members[admitted[b]]
	})

	// 7) Materialize the trajectory in global gene indices and shrink R.
	traj := Trajectory{
		Terminus:  members[terminus],
		Genes:     make([]int, len(admitted)),
		Positions: make([]float64, len(admitted)),
	}
	for local, g = range admitted {
		traj.Genes[local] = members[g]
		traj.Positions[local] = dist[g]
		delete(remaining, members[g])
	}

	return traj, nil
}

// walkScores accumulates t+1 steps of random-walk visitation mass started
// at the terminus: Σ_{s=0..t} (e_term · P^s), with P the row-stochastic
// transition matrix of Gaussian edge affinities. The sum only ever grows
// with t, so admission against a fixed threshold is monotone in t.
func walkScores(graph *cellgraph.Graph, terminus, steps int) ([]float64, error) {
	n := graph.Order()

	// Gaussian affinity per edge, bandwidth = mean edge weight. Coincident
	// genes produce zero-weight edges whose affinity is exactly 1.
	var (
		v, j    int
		w, sum  float64
		ids     []int
		ws      []float64
		err     error
		count   int
		nbrIDs  = make([][]int, n)
		nbrAff  = make([][]float64, n)
		rowMass = make([]float64, n)
	)
	for v = 0; v < n; v++ {
		ids, ws, err = graph.Neighbors(v)
		if err != nil {
			return nil, err
		}
		nbrIDs[v] = ids
		nbrAff[v] = ws
		for _, w = range ws {
			sum += w
			count++
		}
	}
	sigma := 1.0
	if count > 0 && sum > 0 {
		sigma = sum / float64(count)
	}
	for v = 0; v < n; v++ {
		for j, w = range nbrAff[v] {
			nbrAff[v][j] = math.Exp(-(w * w) / (sigma * sigma))
			rowMass[v] += nbrAff[v][j]
		}
	}

	// Power iteration on the sparse transition structure. cur is the mass
	// distribution after s steps; score accumulates every step including
	// s = 0 (all mass on the terminus).
	cur := make([]float64, n)
	next := make([]float64, n)
	score := make([]float64, n)
	cur[terminus] = 1
	score[terminus] = 1
	var s int
	var p float64
	for s = 0; s < steps; s++ {
		for j = range next {
			next[j] = 0
		}
		for v = 0; v < n; v++ {
			p = cur[v]
			if p == 0 {
				continue
			}
			if rowMass[v] == 0 {
				next[v] += p // no outgoing affinity: mass stays put
				continue
			}
			for j, w = range nbrAff[v] {
				next[nbrIDs[v][j]] += p * w / rowMass[v]
			}
		}
		cur, next = next, cur
		for j = 0; j < n; j++ {
			score[j] += cur[j]
		}
	}

	return score, nil
}

// rowNorms returns the Euclidean norm of every embedding row.
func rowNorms(emb *matrix.Dense) []float64 {
	norms := make([]float64, emb.Rows())
	var i int
	var row []float64
	var v float64
	for i = 0; i < emb.Rows(); i++ {
		row, _ = emb.Row(i)
		for _, v = range row {
			norms[i] += v * v
		}
		norms[i] = math.Sqrt(norms[i])
	}

	return norms
}

// subEmbedding copies the given rows of emb into a fresh dense matrix.
func subEmbedding(emb *matrix.Dense, members []int) (*matrix.Dense, error) {
	rows := make([][]float64, len(members))
	var i, g int
	var err error
	for i, g = range members {
		rows[i], err = emb.Row(g)
		if err != nil {
			return nil, err
		}
	}

	return matrix.NewDenseFromRows(rows)
}
