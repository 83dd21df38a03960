// Package trajectory: tabular export of extraction results.
//
// The persisted artifact is a three-column table (gene, trajectory,
// position) — the minimal surface a downstream plotting or reporting layer
// needs. WriteTable emits machine-readable CSV; RenderTable produces a
// human-readable terminal table.
package trajectory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

// unassignedIndex marks genes no trajectory admitted in the exported table.
const unassignedIndex = -1

// geneLabel renders a gene index through the optional name slice.
func geneLabel(g int, names []string) string {
	if names == nil {
		return strconv.Itoa(g)
	}

	return names[g]
}

// validateNames checks that a non-nil name slice covers every gene index in
// the result.
func (r *Result) validateNames(names []string) error {
	if names == nil {
		return nil
	}
	var t Trajectory
	var g int
	for _, t = range r.Trajectories {
		for _, g = range t.Genes {
			if g >= len(names) {
				return fmt.Errorf("%w: gene %d, %d names", ErrBadNames, g, len(names))
			}
		}
	}
	for _, g = range r.Unassigned {
		if g >= len(names) {
			return fmt.Errorf("%w: gene %d, %d names", ErrBadNames, g, len(names))
		}
	}

	return nil
}

// WriteTable writes the result as CSV with header gene,trajectory,position.
// Assigned genes appear in trajectory order with their pseudo-position;
// unassigned genes follow with trajectory −1 and an empty position, so the
// export loses nothing the extraction reported. names maps gene indices to
// identifiers; a nil slice falls back to the numeric index.
//
// Returns ErrBadNames when names does not cover every gene, or the
// underlying write error.
func (r *Result) WriteTable(w io.Writer, names []string) error {
	if err := r.validateNames(names); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"gene", "trajectory", "position"}); err != nil {
		return err
	}

	var (
		t    Trajectory
		i, g int
		err  error
	)
	for _, t = range r.Trajectories {
		for i, g = range t.Genes {
			err = cw.Write([]string{
				geneLabel(g, names),
				strconv.Itoa(t.Index),
				strconv.FormatFloat(t.Positions[i], 'g', -1, 64),
			})
			if err != nil {
				return err
			}
		}
	}
	for _, g = range r.Unassigned {
		if err = cw.Write([]string{geneLabel(g, names), strconv.Itoa(unassignedIndex), ""}); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

// RenderTable writes the result as a boxed terminal table in the same row
// order as WriteTable, with a footer counting assigned and unassigned
// genes. names follows the WriteTable contract.
func (r *Result) RenderTable(w io.Writer, names []string) error {
	if err := r.validateNames(names); err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"gene", "trajectory", "position"})

	var (
		t Trajectory
		i int
		g int
	)
	for _, t = range r.Trajectories {
		for i, g = range t.Genes {
			tw.AppendRow(table.Row{geneLabel(g, names), t.Index, strconv.FormatFloat(t.Positions[i], 'g', -1, 64)})
		}
	}
	for _, g = range r.Unassigned {
		tw.AppendRow(table.Row{geneLabel(g, names), unassignedIndex, ""})
	}
	tw.AppendFooter(table.Row{"assigned", r.Assigned(), fmt.Sprintf("unassigned %d", len(r.Unassigned))})
	tw.Render()

	return nil
}
