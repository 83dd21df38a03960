// Package diffmap: the embedding construction. Affinity with local
// bandwidths, symmetric normalization, Jacobi spectrum, diffusion scaling.
package diffmap

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/genetraj/matrix"
)

// distEps is the symmetry/diagonal tolerance for the input distance matrix.
const distEps = 1e-9

// eigenTol and eigenBudget parameterize the Jacobi solve. The budget grows
// quadratically with the gene count; classic Jacobi needs a few sweeps of
// n·(n−1)/2 rotations each.
const eigenTol = 1e-12

func eigenBudget(n int) int { return 64*n*n + 256 }

// Embed builds the G×Dims diffusion-map embedding of the gene distance
// matrix.
//
// Preconditions and validation (in order):
//  1. dist must be a valid distance matrix (matrix sentinel set);
//     +Inf entries are allowed (isolated genes), NaN is not (ErrNaNDistance).
//     Asymmetry within the tolerance is absorbed by averaging the triangles.
//  2. Dims ≥ 1 (ErrBadDims); Time ≥ 0 (ErrBadTime);
//     1 ≤ LocalK ≤ G−1 (ErrBadLocalK).
//  3. G ≥ Dims+1 so that Dims non-trivial eigenpairs exist (ErrTooFewGenes).
//
// The trivial top eigenpair of the Markov operator is dropped; each gene g
// is embedded at (λ_1^t·φ_1(g), ..., λ_Dims^t·φ_Dims(g)).
//
// Deterministic: identical inputs and options yield identical embeddings
// (matrix.Eigen fixes ordering and signs).
//
// Complexity: O(G²) affinity + O(G³) eigendecomposition.
func Embed(dist *matrix.Dense, opts ...Option) (*matrix.Dense, error) {
	// 1) Build and validate options.
	cfg := DefaultOptions()
	var opt Option
	for _, opt = range opts {
		opt(&cfg)
	}
	if cfg.Dims < 1 {
		return nil, ErrBadDims
	}
	if cfg.Time < 0 {
		return nil, ErrBadTime
	}

	// 2) Validate the distance matrix. NaN is checked before the generic
	//    validators, which would misreport it as a negative value.
	if err := matrix.ValidateNotNil(dist); err != nil {
		return nil, fmt.Errorf("diffmap: %w", err)
	}
	if hasNaN(dist) {
		return nil, ErrNaNDistance
	}
	if err := matrix.ValidateDistanceMatrix(dist, distEps); err != nil {
		return nil, fmt.Errorf("diffmap: %w", err)
	}
	g := dist.Rows()
	if cfg.LocalK < 1 || cfg.LocalK > g-1 {
		return nil, fmt.Errorf("%w: LocalK=%d with %d genes", ErrBadLocalK, cfg.LocalK, g)
	}
	if g < cfg.Dims+1 {
		return nil, fmt.Errorf("%w: %d genes cannot support %d dimensions",
			ErrTooFewGenes, g, cfg.Dims)
	}

	// 3) Local bandwidths: σ_i = distance to the LocalK-th nearest finite
	//    neighbor. Genes without that many finite neighbors fall back to
	//    their largest finite distance; fully isolated genes get σ = 0 and
	//    are zeroed out of the affinity below.
	sigma := localBandwidths(dist, g, cfg.LocalK)

	// 4) Affinity W with Gaussian kernel and local bandwidth product.
	W, err := matrix.NewDense(g, g)
	if err != nil {
		return nil, fmt.Errorf("diffmap: %w", err)
	}
	var (
		i, j        int
		d, dT, w, s float64
	)
	for i = 0; i < g; i++ {
		if sigma[i] == 0 {
			continue // isolated gene: zero affinity row, diagonal included
		}
		for j = i; j < g; j++ {
			if sigma[j] == 0 {
				continue
			}
			// Average the triangles: the input may be asymmetric up to
			// distEps, while the spectral step needs M exactly symmetric.
			d, _ = dist.At(i, j)
			dT, _ = dist.At(j, i)
			d = (d + dT) / 2
			if math.IsInf(d, 1) {
				continue // unreachable pair carries no affinity
			}
			w = math.Exp(-d * d / (sigma[i] * sigma[j]))
			_ = W.Set(i, j, w)
			_ = W.Set(j, i, w)
		}
	}

	// 5) Degrees and D^{−1/2}; zero-degree rows stay zero (isolated genes).
	invSqrt := make([]float64, g)
	for i = 0; i < g; i++ {
		s = 0
		for j = 0; j < g; j++ {
			w, _ = W.At(i, j)
			s += w
		}
		if s > 0 {
			invSqrt[i] = 1 / math.Sqrt(s)
		}
	}

	// 6) Symmetric normalization M = D^{−1/2}·W·D^{−1/2}.
	M, err := matrix.NewDense(g, g)
	if err != nil {
		return nil, fmt.Errorf("diffmap: %w", err)
	}
	// Each pair is computed once and mirrored, so M is symmetric to the
	// last bit regardless of evaluation order.
	for i = 0; i < g; i++ {
		for j = i; j < g; j++ {
			w, _ = W.At(i, j)
			s = invSqrt[i] * w * invSqrt[j]
			_ = M.Set(i, j, s)
			_ = M.Set(j, i, s)
		}
	}

	// 7) Spectrum of M (shared with the Markov operator).
	eigs, vecs, err := matrix.Eigen(M, eigenTol, eigenBudget(g))
	if err != nil {
		return nil, fmt.Errorf("diffmap: spectral step: %w", err)
	}

	// 8) Embed on eigenpairs 1..Dims (pair 0 is the trivial stationary one),
	//    mapping ψ back to Markov eigenvectors φ = D^{−1/2}·ψ and scaling by
	//    λ^t. Zero-degree genes have invSqrt = 0 and land at the origin.
	out, err := matrix.NewDense(g, cfg.Dims)
	if err != nil {
		return nil, fmt.Errorf("diffmap: %w", err)
	}
	var (
		k     int
		lam   float64
		scale float64
		psi   float64
	)
	for k = 1; k <= cfg.Dims; k++ {
		lam = eigs[k]
		scale = math.Pow(lam, float64(cfg.Time))
		for i = 0; i < g; i++ {
			psi, _ = vecs.At(i, k)
			_ = out.Set(i, k-1, scale*invSqrt[i]*psi)
		}
	}

	return out, nil
}

// hasNaN reports whether any entry of m is NaN. Complexity: O(G²).
func hasNaN(m *matrix.Dense) bool {
	n, c := m.Rows(), m.Cols()
	var i, j int
	var v float64
	for i = 0; i < n; i++ {
		for j = 0; j < c; j++ {
			v, _ = m.At(i, j)
			if math.IsNaN(v) {
				return true
			}
		}
	}

	return false
}

// localBandwidths computes σ_i per gene: the LocalK-th smallest finite
// distance to another gene, falling back to the largest finite distance when
// fewer finite neighbors exist, and 0 for fully isolated genes.
// Complexity: O(G² log G).
func localBandwidths(dist *matrix.Dense, g, localK int) []float64 {
	sigma := make([]float64, g)
	var (
		i, j int
		d    float64
	)
	buf := make([]float64, 0, g-1)
	for i = 0; i < g; i++ {
		buf = buf[:0]
		for j = 0; j < g; j++ {
			if j == i {
				continue
			}
			d, _ = dist.At(i, j)
			if !math.IsInf(d, 1) {
				buf = append(buf, d)
			}
		}
		switch {
		case len(buf) == 0:
			sigma[i] = 0 // isolated
		case len(buf) < localK:
			sort.Float64s(buf)
			sigma[i] = buf[len(buf)-1] // fallback: widest finite neighbor
		default:
			sort.Float64s(buf)
			sigma[i] = buf[localK-1]
		}
		// Coincident genes can make σ zero although neighbors exist; fall
		// back to the nearest strictly positive distance to keep the kernel
		// finite.
		if sigma[i] == 0 && len(buf) > 0 {
			for _, d = range buf {
				if d > 0 {
					sigma[i] = d
					break
				}
			}
			if sigma[i] == 0 {
				sigma[i] = 1 // all neighbors coincide: any scale works
			}
		}
	}

	return sigma
}
