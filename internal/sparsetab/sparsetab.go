/*
Package sparsetab implements a sparse integer-valued matrix, used for the
parser's ACTION and GOTO tables. Cells are triplet/COO encoded, and a
populated cell may hold more than one value at once so a conflicting
ACTION cell can retain every candidate for the GLR runtime to fork on.
*/
package sparsetab

import "golang.org/x/exp/slices"

// DefaultNullValue is the default empty-cell marker.
const DefaultNullValue = int32(-2147483648)

type cell struct {
	row, col int
	values   []int32
}

// Table is a sparse matrix of int32, where every populated cell may carry
// more than one value (a conflict list).
type Table struct {
	cells   []cell
	index   map[[2]int]int // (row,col) -> index into cells
	rows    int
	cols    int
	nullval int32
}

// New creates an m-by-n table. nullValue marks an absent cell; use
// DefaultNullValue unless the value domain needs it.
func New(rows, cols int, nullValue int32) *Table {
	return &Table{
		index:   map[[2]int]int{},
		rows:    rows,
		cols:    cols,
		nullval: nullValue,
	}
}

// Rows returns the row count.
func (t *Table) Rows() int { return t.rows }

// Cols returns the column count.
func (t *Table) Cols() int { return t.cols }

// NullValue returns the marker used for absent cells.
func (t *Table) NullValue() int32 { return t.nullval }

// CellCount returns the number of populated cells (not the number of
// values: a conflict cell still counts once).
func (t *Table) CellCount() int { return len(t.cells) }

// Set overwrites cell (i,j) with a single value, discarding any
// previously stored conflict list.
func (t *Table) Set(i, j int, value int32) {
	k := [2]int{i, j}
	if idx, ok := t.index[k]; ok {
		t.cells[idx].values = []int32{value}
		return
	}
	t.index[k] = len(t.cells)
	t.cells = append(t.cells, cell{row: i, col: j, values: []int32{value}})
}

// Add appends value to cell (i,j)'s value list, creating a conflict
// entry if the cell is already populated with a different value. Adding
// a value already present is a no-op.
func (t *Table) Add(i, j int, value int32) {
	k := [2]int{i, j}
	idx, ok := t.index[k]
	if !ok {
		t.index[k] = len(t.cells)
		t.cells = append(t.cells, cell{row: i, col: j, values: []int32{value}})
		return
	}
	for _, v := range t.cells[idx].values {
		if v == value {
			return
		}
	}
	t.cells[idx].values = append(t.cells[idx].values, value)
}

// Value returns the first value stored at (i,j), or NullValue if the
// cell is empty.
func (t *Table) Value(i, j int) int32 {
	if idx, ok := t.index[[2]int{i, j}]; ok {
		return t.cells[idx].values[0]
	}
	return t.nullval
}

// Values returns every value stored at (i,j), in insertion order. A nil
// slice means the cell is empty.
func (t *Table) Values(i, j int) []int32 {
	if idx, ok := t.index[[2]int{i, j}]; ok {
		out := make([]int32, len(t.cells[idx].values))
		copy(out, t.cells[idx].values)
		return out
	}
	return nil
}

// Clear removes cell (i,j) entirely, leaving it absent. Used when
// conflict resolution must reject every candidate outright (a NonAssoc
// shift/reduce tie) rather than leave any of them for the GLR runtime to
// fork on.
func (t *Table) Clear(i, j int) {
	k := [2]int{i, j}
	idx, ok := t.index[k]
	if !ok {
		return
	}
	last := len(t.cells) - 1
	moved := t.cells[last]
	t.cells[idx] = moved
	t.cells = t.cells[:last]
	delete(t.index, k)
	if idx != last {
		t.index[[2]int{moved.row, moved.col}] = idx
	}
}

// HasConflict reports whether (i,j) holds more than one value.
func (t *Table) HasConflict(i, j int) bool {
	idx, ok := t.index[[2]int{i, j}]
	return ok && len(t.cells[idx].values) > 1
}

// Populated calls fn for every populated cell, in row-major, then
// column-major order, for reproducible iteration (e.g. for
// fingerprinting or explain dumps and, upstream in package table, for
// reproducible conflict reports keyed by state/terminal).
func (t *Table) Populated(fn func(i, j int, values []int32)) {
	cells := make([]cell, len(t.cells))
	copy(cells, t.cells)
	slices.SortFunc(cells, func(a, b cell) int {
		if a.row != b.row {
			return a.row - b.row
		}
		return a.col - b.col
	})
	for _, c := range cells {
		fn(c.row, c.col, c.values)
	}
}
