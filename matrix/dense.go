// Package matrix: Dense is a concrete row-major float64 matrix, storing
// elements in a flat slice for performance and cache friendliness. It is the
// single concrete matrix type used across the genetraj pipeline.
package matrix

import (
	"fmt"
	"math"
)

// Dense is a row-major matrix of float64 values.
// r is rows, c is columns, and data holds r*c elements in row-major order.
type Dense struct {
	r, c int       // number of rows and columns
	data []float64 // flat backing storage, length == r*c
}

// denseErrorf wraps an underlying error with Dense method context.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// NewDense creates an r×c Dense matrix initialized to zeros.
// Stage 1 (Validate): ensure rows and cols > 0.
// Stage 2 (Prepare): allocate flat backing slice.
// Stage 3 (Finalize): return new Dense or ErrBadShape.
// Complexity: O(r·c) time and memory.
func NewDense(rows, cols int) (*Dense, error) {
	// Validate dimensions before touching the allocator.
	if rows <= 0 || cols <= 0 {
		return nil, ErrBadShape
	}
	// Allocate flat slice (zeroed by the runtime).
	data := make([]float64, rows*cols)

	// Return initialized Dense.
	return &Dense{r: rows, c: cols, data: data}, nil
}

// NewDenseFromRows creates a Dense from a rectangular [][]float64.
// Stage 1 (Validate): non-empty outer slice, equal row lengths.
// Stage 2 (Execute): copy rows into flat storage.
// Complexity: O(r·c).
func NewDenseFromRows(rows [][]float64) (*Dense, error) {
	// Reject an empty outer slice and empty first row.
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrBadShape
	}
	r, c := len(rows), len(rows[0])
	m := &Dense{r: r, c: c, data: make([]float64, r*c)}
	var i int
	for i = 0; i < r; i++ {
		// Every row must match the width of the first one.
		if len(rows[i]) != c {
			return nil, fmt.Errorf("NewDenseFromRows: row %d has %d cols, want %d: %w",
				i, len(rows[i]), c, ErrDimensionMismatch)
		}
		copy(m.data[i*c:(i+1)*c], rows[i])
	}

	return m, nil
}

// Rows returns the number of rows in the matrix. Complexity: O(1).
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns in the matrix. Complexity: O(1).
func (m *Dense) Cols() int { return m.c }

// indexOf computes the flat index for (row, col) or returns ErrOutOfRange.
// Complexity: O(1).
func (m *Dense) indexOf(method string, row, col int) (int, error) {
	// Validate row index.
	if row < 0 || row >= m.r {
		return 0, denseErrorf(method, row, col, ErrOutOfRange)
	}
	// Validate column index.
	if col < 0 || col >= m.c {
		return 0, denseErrorf(method, row, col, ErrOutOfRange)
	}

	// Compute flat offset.
	return row*m.c + col, nil
}

// At retrieves the element at (row, col).
// Returns ErrOutOfRange for invalid indices. Complexity: O(1).
func (m *Dense) At(row, col int) (float64, error) {
	idx, err := m.indexOf("At", row, col)
	if err != nil {
		return 0, err
	}

	return m.data[idx], nil
}

// Set assigns value v at (row, col).
// Returns ErrOutOfRange for invalid indices. Complexity: O(1).
func (m *Dense) Set(row, col int, v float64) error {
	idx, err := m.indexOf("Set", row, col)
	if err != nil {
		return err
	}
	m.data[idx] = v

	return nil
}

// Row returns a copy of row i, or ErrOutOfRange.
// The returned slice is independent of the backing storage.
// Complexity: O(c).
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, denseErrorf("Row", i, 0, ErrOutOfRange)
	}
	out := make([]float64, m.c)
	copy(out, m.data[i*m.c:(i+1)*m.c])

	return out, nil
}

// Col returns a copy of column j, or ErrOutOfRange.
// Complexity: O(r).
func (m *Dense) Col(j int) ([]float64, error) {
	if j < 0 || j >= m.c {
		return nil, denseErrorf("Col", 0, j, ErrOutOfRange)
	}
	out := make([]float64, m.r)
	var i int
	for i = 0; i < m.r; i++ {
		out[i] = m.data[i*m.c+j]
	}

	return out, nil
}

// Fill assigns v to every element. Complexity: O(r·c).
func (m *Dense) Fill(v float64) {
	var i int
	for i = range m.data {
		m.data[i] = v
	}
}

// Clone returns a deep copy of the Dense matrix.
// The returned matrix is independent of the original.
// Complexity: O(r·c) time and memory.
func (m *Dense) Clone() *Dense {
	copyData := make([]float64, len(m.data))
	copy(copyData, m.data)

	return &Dense{r: m.r, c: m.c, data: copyData}
}

// MulVec computes y = M·x for a vector x of length Cols().
// Stage 1 (Validate): vector length must match the column count.
// Stage 2 (Execute): accumulate row dot products.
// Complexity: O(r·c).
func (m *Dense) MulVec(x []float64) ([]float64, error) {
	// Validate operand compatibility.
	if len(x) != m.c {
		return nil, fmt.Errorf("Dense.MulVec: vector length %d, want %d: %w",
			len(x), m.c, ErrDimensionMismatch)
	}
	y := make([]float64, m.r)
	var (
		i, j int
		sum  float64
	)
	for i = 0; i < m.r; i++ {
		sum = 0
		for j = 0; j < m.c; j++ {
			sum += m.data[i*m.c+j] * x[j]
		}
		y[i] = sum
	}

	return y, nil
}

// String implements fmt.Stringer for easy debugging.
// Complexity: O(r·c) for string construction.
func (m *Dense) String() string {
	var s string
	var i, j int
	for i = 0; i < m.r; i++ { // iterate over rows
		s += "[" // open row
		for j = 0; j < m.c; j++ {
			s += fmt.Sprintf("%g", m.data[i*m.c+j])
			if j < m.c-1 {
				s += ", " // separate values with comma
			}
		}
		s += "]\n" // close row
	}

	return s
}

// IsFinite reports whether every element is neither NaN nor ±Inf.
// Complexity: O(r·c).
func (m *Dense) IsFinite() bool {
	var v float64
	for _, v = range m.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
