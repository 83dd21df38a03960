// Package genetraj infers ordered gene trajectories — sequences of genes
// whose expression changes smoothly along a biological process — from
// single-cell gene-expression data, using graph geodesics, optimal
// transport and spectral embedding.
//
// 🚀 What is genetraj?
//
//	A pure-Go numerical pipeline that brings together:
//		• Cell graph geodesics: kNN graph over a cell embedding + Dijkstra all-pairs distances
//		• Coarse-graining: deterministic binning to bound transport problem size
//		• Optimal transport: entropy-regularized Wasserstein distances between gene distributions
//		• Diffusion maps: spectral embedding of genes from their pairwise distances
//		• Trajectory extraction: random-walk admission and geodesic gene ordering
//
// ✨ Why choose genetraj?
//
//   - Deterministic – identical inputs and options always reproduce identical results
//   - Explicit errors – every failure mode is a matchable sentinel, never a silent default
//   - Pure Go – no cgo, no Python bridge, no hidden deps
//   - Parallel where it counts – per-source and per-gene-pair batches fan out across workers
//
// Under the hood, everything is organized by pipeline stage:
//
//	matrix/     — dense float64 matrices, validators, Jacobi eigendecomposition
//	cellgraph/  — cell kNN graph construction + all-pairs geodesic distances
//	coarsen/    — optional reduction of cells into representative bins
//	ot/         — pairwise gene Wasserstein distances (Sinkhorn batch engine)
//	diffmap/    — diffusion-map embedding of the gene distance matrix
//	trajectory/ — terminus detection, random-walk admission, gene ordering, table export
//	pipeline/   — end-to-end orchestration of the stages above
//
// Data flow:
//
//	expression + cell embedding
//	    → cellgraph → coarsen (optional) → ot → diffmap → trajectory
//
// Dive into each package's doc.go for the algorithmic details, complexity
// notes and worked examples.
//
//	go get github.com/katalvlaran/genetraj
package genetraj
