// Package matrix: validators.
//
// Purpose:
//   - Provide a single, canonical source of truth for the boundary checks
//     every pipeline stage runs on its inputs and outputs.
//   - Keep algorithm bodies minimal by delegating shape/nil/symmetry checks here.
//   - Return plain sentinel errors (no wrapping) so call sites can wrap uniformly.
//
// Determinism & Performance:
//   - All checks are pure, deterministic and allocate nothing.
//   - Symmetry and diagonal checks run on the upper triangle only.
//
// Note:
//   - Composite validators follow a fixed sequence (NotNil → Square → ...).
//   - Each validator states what it assumes (e.g. no nil check).
package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying sentinel with the validator tag.
// Used internally to maintain consistent labeling of sentinel violations.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil.
// Returns ErrNilMatrix if m == nil. Complexity: O(1).
func ValidateNotNil(m *Dense) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSquare ensures the matrix has equal row and column counts.
// Assumes m is non-nil. Returns ErrNonSquare. Complexity: O(1).
func ValidateSquare(m *Dense) error {
	if m.r != m.c {
		return validatorErrorf("ValidateSquare", ErrNonSquare)
	}

	return nil
}

// ValidateSameShape ensures matrices a and b have equal dimensions.
// Assumes both are non-nil. Returns ErrDimensionMismatch. Complexity: O(1).
func ValidateSameShape(a, b *Dense) error {
	if a.r != b.r || a.c != b.c {
		return validatorErrorf("ValidateSameShape", ErrDimensionMismatch)
	}

	return nil
}

// ValidateSymmetric ensures |m[i][j] − m[j][i]| ≤ eps on the upper triangle.
// Infinite entries are symmetric only when both sides are the same infinity.
// Assumes m is non-nil and square. Returns ErrAsymmetry. Complexity: O(n²).
func ValidateSymmetric(m *Dense, eps float64) error {
	var (
		i, j     int
		aij, aji float64
	)
	for i = 0; i < m.r; i++ {
		for j = i + 1; j < m.c; j++ {
			aij = m.data[i*m.c+j]
			aji = m.data[j*m.c+i]
			// Matching infinities compare equal; mixed or differing signs fail.
			if aij == aji {
				continue
			}
			if math.Abs(aij-aji) > eps {
				return validatorErrorf("ValidateSymmetric", ErrAsymmetry)
			}
		}
	}

	return nil
}

// ValidateZeroDiagonal ensures |m[i][i]| ≤ eps for every i — the distance
// matrix invariant. Assumes m is non-nil and square.
// Returns ErrNonZeroDiagonal. Complexity: O(n).
func ValidateZeroDiagonal(m *Dense, eps float64) error {
	var i int
	for i = 0; i < m.r; i++ {
		if math.Abs(m.data[i*m.c+i]) > eps {
			return validatorErrorf("ValidateZeroDiagonal", ErrNonZeroDiagonal)
		}
	}

	return nil
}

// ValidateNonNegative ensures no element is negative (NaN also fails, since a
// NaN entry is not ≥ 0). Assumes m is non-nil.
// Returns ErrNegativeValue. Complexity: O(r·c).
func ValidateNonNegative(m *Dense) error {
	var v float64
	for _, v = range m.data {
		if !(v >= 0) {
			return validatorErrorf("ValidateNonNegative", ErrNegativeValue)
		}
	}

	return nil
}

// ValidateFinite ensures no element is NaN or ±Inf. Assumes m is non-nil.
// Returns ErrNaNInf. Complexity: O(r·c).
func ValidateFinite(m *Dense) error {
	if !m.IsFinite() {
		return validatorErrorf("ValidateFinite", ErrNaNInf)
	}

	return nil
}

// ValidateDistanceMatrix runs the full distance-matrix invariant suite:
// NotNil → Square → Symmetric(eps) → ZeroDiagonal(eps) → NonNegative.
// Infinite off-diagonal entries are permitted (unreachable-pair sentinel);
// use ValidateFinite separately when a stage cannot tolerate them.
// Complexity: O(n²).
func ValidateDistanceMatrix(m *Dense, eps float64) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if err := ValidateSquare(m); err != nil {
		return err
	}
	if err := ValidateSymmetric(m, eps); err != nil {
		return err
	}
	if err := ValidateZeroDiagonal(m, eps); err != nil {
		return err
	}

	return ValidateNonNegative(m)
}
