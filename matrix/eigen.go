// Package matrix: Eigen computes all eigenvalues and eigenvectors of a real
// symmetric matrix using the cyclic Jacobi rotation method, then fixes
// ordering and signs so that downstream spectral embeddings are fully
// deterministic.
package matrix

import (
	"fmt"
	"math"
	"sort"
)

// Eigen performs Jacobi eigenvalue decomposition on a symmetric matrix m.
// It returns the eigenvalues sorted in descending order and a matrix whose
// columns are the matching eigenvectors.
//
// tol specifies the convergence threshold for the largest off-diagonal
// element; maxIter caps the number of rotations.
//
// Determinism: eigenpairs are sorted by descending eigenvalue (ties broken by
// original pivot order), and every eigenvector is oriented so that its
// largest-magnitude component is positive. Identical inputs therefore always
// produce identical outputs.
//
// Returns ErrNonSquare, ErrAsymmetry, or ErrEigenFailed.
// Complexity: O(n³) worst-case per sweep, capped by maxIter rotations; O(n²) memory.
func Eigen(m *Dense, tol float64, maxIter int) ([]float64, *Dense, error) {
	// Stage 1: Validate input.
	if err := ValidateNotNil(m); err != nil {
		return nil, nil, fmt.Errorf("Eigen: %w", err)
	}
	if err := ValidateSquare(m); err != nil {
		return nil, nil, fmt.Errorf("Eigen: non-square %dx%d: %w", m.r, m.c, ErrNonSquare)
	}
	if err := ValidateSymmetric(m, tol); err != nil {
		return nil, nil, fmt.Errorf("Eigen: %w", ErrAsymmetry)
	}
	n := m.r

	// Stage 2: Prepare A (working copy) and Q (rotation accumulator).
	A := m.Clone()
	Q, err := NewDense(n, n)
	if err != nil {
		return nil, nil, fmt.Errorf("Eigen: %w", err)
	}
	var i, j int
	for i = 0; i < n; i++ {
		Q.data[i*n+i] = 1.0 // Q starts as identity
	}

	// Stage 3: Execute Jacobi rotations on the largest off-diagonal pivot.
	var (
		iter          int     // rotation counter
		converged     bool    // set once maxOff drops below tol
		p, q          int     // pivot indices
		maxOff        float64 // largest |A[p][q]| off-diagonal
		theta, t      float64 // rotation parameters
		c, s          float64 // cosine and sine
		off           float64 // temporary magnitude holder
		app, aqq, apq float64 // pivot-row/column entries before rotation
		aip, aiq      float64 // entries updated per row i
	)
	for iter = 0; ; iter++ {
		// 3.1: Find the largest off-diagonal |A[p][q]|.
		maxOff = 0.0
		for i = 0; i < n; i++ {
			for j = i + 1; j < n; j++ {
				off = math.Abs(A.data[i*n+j])
				if off > maxOff {
					maxOff = off
					p, q = i, j
				}
			}
		}
		// 3.2: Converged once every off-diagonal entry is below tol.
		if maxOff < tol {
			converged = true
			break
		}
		// 3.3: Stop rotating once the iteration budget is spent.
		if iter >= maxIter {
			break
		}

		// 3.4: Compute the rotation annihilating A[p][q].
		app = A.data[p*n+p]
		aqq = A.data[q*n+q]
		apq = A.data[p*n+q]
		theta = (aqq - app) / (2 * apq)
		t = math.Copysign(1.0/(math.Abs(theta)+math.Sqrt(theta*theta+1)), theta)
		c = 1.0 / math.Sqrt(t*t+1) // cosine
		s = t * c                  // sine

		// 3.5: Apply the rotation to rows/columns p and q of A.
		for i = 0; i < n; i++ {
			if i == p || i == q {
				continue
			}
			aip = A.data[i*n+p]
			aiq = A.data[i*n+q]
			A.data[i*n+p] = c*aip - s*aiq
			A.data[p*n+i] = c*aip - s*aiq
			A.data[i*n+q] = s*aip + c*aiq
			A.data[q*n+i] = s*aip + c*aiq
		}
		// 3.6: Update the pivot entries from the saved pre-rotation values.
		A.data[p*n+p] = c*c*app - 2*c*s*apq + s*s*aqq
		A.data[q*n+q] = s*s*app + 2*c*s*apq + c*c*aqq
		A.data[p*n+q] = 0.0
		A.data[q*n+p] = 0.0

		// 3.7: Accumulate the rotation into Q.
		for i = 0; i < n; i++ {
			aip = Q.data[i*n+p]
			aiq = Q.data[i*n+q]
			Q.data[i*n+p] = c*aip - s*aiq
			Q.data[i*n+q] = s*aip + c*aiq
		}
	}
	if !converged {
		return nil, nil, ErrEigenFailed // budget exhausted without convergence
	}

	// Stage 4: Extract eigenvalues, sort pairs descending, fix vector signs.
	order := make([]int, n)
	for i = 0; i < n; i++ {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return A.data[order[a]*n+order[a]] > A.data[order[b]*n+order[b]]
	})

	eigs := make([]float64, n)
	V, _ := NewDense(n, n) // n ≥ 1 here, construction cannot fail
	var (
		col, row int
		best     float64 // largest-magnitude component of the column
		sign     float64 // orientation factor (+1 or −1)
		v        float64
	)
	for col = 0; col < n; col++ {
		src := order[col]
		eigs[col] = A.data[src*n+src]

		// 4.1: Locate the largest-magnitude component of eigenvector src.
		best, sign = 0.0, 1.0
		for row = 0; row < n; row++ {
			v = Q.data[row*n+src]
			if math.Abs(v) > best {
				best = math.Abs(v)
				if v < 0 {
					sign = -1.0
				} else {
					sign = 1.0
				}
			}
		}
		// 4.2: Copy the oriented eigenvector into column col of V.
		for row = 0; row < n; row++ {
			V.data[row*n+col] = sign * Q.data[row*n+src]
		}
	}

	return eigs, V, nil
}
