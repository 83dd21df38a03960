// Package diffmap builds a low-dimensional diffusion-map embedding of genes
// from their pairwise Wasserstein distance matrix.
//
// 🚀 Construction, step by step:
//
//  1. Affinity: w_ij = exp(−d_ij² / (σ_i·σ_j)) with a local bandwidth —
//     σ_i is the distance from gene i to its LocalK-th nearest neighbor,
//     so dense regions get sharp kernels and sparse ones stay connected.
//  2. Normalization: M = D^{−1/2}·W·D^{−1/2} — the symmetric twin of the
//     Markov transition operator, sharing its spectrum.
//  3. Spectrum: Jacobi eigendecomposition of M (matrix.Eigen), eigenpairs
//     sorted by descending eigenvalue with a fixed sign convention.
//  4. Embedding: gene g lands at (λ_1^t·φ_1(g), ..., λ_D^t·φ_D(g)), where
//     φ_k = D^{−1/2}·ψ_k are the Markov eigenvectors and the trivial top
//     pair (λ_0 = 1, constant φ_0) is dropped. Larger diffusion times t
//     damp the fine scales.
//
// Determinism:
//
//	Identical distance matrices and options yield bit-identical embeddings.
//	The eigenvector sign ambiguity is resolved by matrix.Eigen — each
//	eigenvector's largest-magnitude component is made positive.
//
// Degenerate cases:
//
//   - Isolated genes — every distance +Inf — receive zero affinity
//     (diagonal included), zero degree, and an all-zero embedding row.
//   - Fewer genes than Dims+1 cannot supply enough non-trivial eigenpairs:
//     ErrTooFewGenes.
//   - NaN distances (failed transport pairs passed through unchecked) are
//     rejected with ErrNaNDistance before any spectral work.
//
// Complexity: O(G²) affinity + O(G³) eigendecomposition; O(G²) memory.
package diffmap
