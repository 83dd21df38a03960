// Package matrix provides the dense linear-algebra substrate shared by the
// genetraj pipeline stages: a row-major float64 matrix, a unified sentinel
// error set, boundary validators, and a Jacobi eigendecomposition for
// symmetric matrices.
//
// 🚀 What lives here?
//
//   - Dense       — flat row-major storage, O(1) At/Set, deep Clone
//   - Validators  — fail-fast checks every stage runs on its inputs
//     (shape, symmetry, zero diagonal, non-negativity, finiteness)
//   - Eigen       — Jacobi rotations for symmetric matrices, with
//     eigenpairs sorted by descending eigenvalue and a fixed
//     sign convention for deterministic embeddings
//
// Design rules:
//
//   - All user-triggered failures return package sentinels ("matrix: ...")
//     matched via errors.Is; no panics on bad input.
//   - Validators are pure, deterministic and allocation-free; symmetry runs
//     on the upper triangle only.
//   - Eigen normalizes every eigenvector so that its largest-magnitude
//     component is positive, removing the usual sign ambiguity.
//
// Performance:
//
//   - Dense At/Set: O(1); Clone: O(r·c)
//   - Eigen: O(n³) per sweep, capped by maxIter sweeps
package matrix
