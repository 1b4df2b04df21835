package advisor

import (
	"fmt"
	"slices"
)

// Cell addresses one matrix entry.
type Cell[R, C comparable] struct {
	Row R
	Col C
}

// PivotMatrix is a sparse two-axis matrix with explicitly ordered axes. RowKeys and
// ColKeys contain exactly the keys that occur in at least one present cell.
type PivotMatrix[R, C comparable, V any] struct {
	RowKeys []R
	ColKeys []C
	cells   map[Cell[R, C]]V
}

// At returns the cell value and whether the cell is present.
func (m *PivotMatrix[R, C, V]) At(row R, col C) (V, bool) {
	v, ok := m.cells[Cell[R, C]{row, col}]
	return v, ok
}

// Len returns the number of present cells.
func (m *PivotMatrix[R, C, V]) Len() int { return len(m.cells) }

// Cells returns the present cells in row-major axis order.
func (m *PivotMatrix[R, C, V]) Cells() []Cell[R, C] {
	out := make([]Cell[R, C], 0, len(m.cells))
	for _, r := range m.RowKeys {
		for _, c := range m.ColKeys {
			if _, ok := m.cells[Cell[R, C]{r, c}]; ok {
				out = append(out, Cell[R, C]{r, c})
			}
		}
	}
	return out
}

// MergeFunc combines an existing cell value with a new one.
type MergeFunc[V any] func(existing, incoming V) V

// pivotBuilder accumulates cells. Without a merge function a second value for
// the same cell is a build error.
type pivotBuilder[R, C comparable, V any] struct {
	merge MergeFunc[V]
	cells map[Cell[R, C]]V
}

func newPivotBuilder[R, C comparable, V any](merge MergeFunc[V]) *pivotBuilder[R, C, V] {
	return &pivotBuilder[R, C, V]{merge: merge, cells: make(map[Cell[R, C]]V)}
}

func (b *pivotBuilder[R, C, V]) add(row R, col C, v V) error {
	k := Cell[R, C]{row, col}
	existing, ok := b.cells[k]
	if !ok {
		b.cells[k] = v
		return nil
	}
	if b.merge == nil {
		return fmt.Errorf("%w: cell (%v, %v) populated twice", ErrMalformedPivot, row, col)
	}
	b.cells[k] = b.merge(existing, v)
	return nil
}

// build derives both axes from the populated cells and orders them with the given
// comparison functions (negative when a sorts before b).
func (b *pivotBuilder[R, C, V]) build(rowCmp func(a, b R) int, colCmp func(a, b C) int) *PivotMatrix[R, C, V] {
	rows := make(map[R]bool)
	cols := make(map[C]bool)
	m := &PivotMatrix[R, C, V]{cells: b.cells}
	for k := range b.cells {
		if !rows[k.Row] {
			rows[k.Row] = true
			m.RowKeys = append(m.RowKeys, k.Row)
		}
		if !cols[k.Col] {
			cols[k.Col] = true
			m.ColKeys = append(m.ColKeys, k.Col)
		}
	}
	slices.SortFunc(m.RowKeys, rowCmp)
	slices.SortFunc(m.ColKeys, colCmp)
	return m
}

// SameShape checks that two matrices have identical axes and identical present
// cells. Paired matrices (a value matrix and its label overlay) must pass.
func SameShape[R, C comparable, V, W any](a *PivotMatrix[R, C, V], b *PivotMatrix[R, C, W]) error {
	if !slices.Equal(a.RowKeys, b.RowKeys) {
		return fmt.Errorf("%w: row keys differ (%d vs %d)", ErrMalformedPivot, len(a.RowKeys), len(b.RowKeys))
	}
	if !slices.Equal(a.ColKeys, b.ColKeys) {
		return fmt.Errorf("%w: column keys differ (%d vs %d)", ErrMalformedPivot, len(a.ColKeys), len(b.ColKeys))
	}
	if ac, bc := a.Cells(), b.Cells(); !slices.Equal(ac, bc) {
		return fmt.Errorf("%w: present cells differ (%d vs %d)", ErrMalformedPivot, len(ac), len(bc))
	}
	return nil
}
