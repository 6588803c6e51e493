// Package dataset provides the tabular data layer of the pipeline: SQL
// extraction into an in-memory columnar table, numeric coercion, and the
// positional train/test split.
package dataset

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tripml/core/parallel"
	"github.com/YuminosukeSato/tripml/pkg/errors"
)

// Table is an in-memory columnar table of float64 columns. Rows keep the
// order they were materialized in; the positional split depends on it.
type Table struct {
	names   []string
	columns [][]float64
	nRows   int
}

// NewTable creates a table from column names and column-major data.
// All columns must have equal length.
func NewTable(names []string, columns [][]float64) (*Table, error) {
	if len(names) == 0 || len(names) != len(columns) {
		return nil, errors.NewValueError("NewTable", "names and columns must be non-empty and of equal length")
	}

	nRows := len(columns[0])
	for i, col := range columns {
		if len(col) != nRows {
			return nil, errors.NewDimensionError(fmt.Sprintf("NewTable(column %q)", names[i]), nRows, len(col), 0)
		}
	}

	return &Table{names: names, columns: columns, nRows: nRows}, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.nRows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.names) }

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)
	return names
}

// Column returns the values of the named column. The returned slice is the
// table's backing storage; callers must not mutate it.
func (t *Table) Column(name string) ([]float64, error) {
	idx, err := t.columnIndex(name)
	if err != nil {
		return nil, err
	}
	return t.columns[idx], nil
}

// ColumnVec returns the named column as a gonum column vector.
func (t *Table) ColumnVec(name string) (*mat.VecDense, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	data := make([]float64, len(col))
	copy(data, col)
	return mat.NewVecDense(len(data), data), nil
}

// Matrix materializes the given columns (all columns when none are named)
// into a dense row-major matrix.
func (t *Table) Matrix(names ...string) (*mat.Dense, error) {
	if t.nRows == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Table.Matrix")
	}
	if len(names) == 0 {
		names = t.names
	}

	idxs := make([]int, len(names))
	for i, name := range names {
		idx, err := t.columnIndex(name)
		if err != nil {
			return nil, err
		}
		idxs[i] = idx
	}

	m := mat.NewDense(t.nRows, len(idxs), nil)
	for j, idx := range idxs {
		col := t.columns[idx]
		for i := 0; i < t.nRows; i++ {
			m.Set(i, j, col[i])
		}
	}
	return m, nil
}

// FeatureTargetSplit returns the feature matrix X (every column except
// target, in table order) and the target column vector y.
func (t *Table) FeatureTargetSplit(target string) (X *mat.Dense, y *mat.VecDense, err error) {
	targetIdx, err := t.columnIndex(target)
	if err != nil {
		return nil, nil, err
	}
	if len(t.names) < 2 {
		return nil, nil, errors.NewValueError("Table.FeatureTargetSplit", "table needs at least one feature column besides the target")
	}

	features := make([]string, 0, len(t.names)-1)
	for i, name := range t.names {
		if i != targetIdx {
			features = append(features, name)
		}
	}

	X, err = t.Matrix(features...)
	if err != nil {
		return nil, nil, err
	}
	y, err = t.ColumnVec(target)
	if err != nil {
		return nil, nil, err
	}
	return X, y, nil
}

// SplitAt slices the table by row position into [0, row) and [row, NumRows).
// No shuffling is performed.
func (t *Table) SplitAt(row int) (head, tail *Table, err error) {
	if t.nRows == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "Table.SplitAt")
	}
	if row <= 0 || row >= t.nRows {
		return nil, nil, errors.NewValidationError("row", fmt.Sprintf("must be in (0, %d)", t.nRows), row)
	}

	headCols := make([][]float64, len(t.columns))
	tailCols := make([][]float64, len(t.columns))
	for i, col := range t.columns {
		headCols[i] = col[:row:row]
		tailCols[i] = col[row:]
	}

	head = &Table{names: t.names, columns: headCols, nRows: row}
	tail = &Table{names: t.names, columns: tailCols, nRows: t.nRows - row}
	return head, tail, nil
}

// Split performs the crude positional train/test split: the first
// trainFrac of rows become the training set, the remainder the test set.
func (t *Table) Split(trainFrac float64) (train, test *Table, err error) {
	if trainFrac <= 0 || trainFrac >= 1 {
		return nil, nil, errors.NewValidationError("trainFrac", "must be in (0, 1)", trainFrac)
	}
	if t.nRows < 2 {
		return nil, nil, errors.NewValueError("Table.Split", "need at least 2 rows to split")
	}

	row := int(float64(t.nRows) * trainFrac)
	if row == 0 {
		row = 1
	}
	if row == t.nRows {
		row = t.nRows - 1
	}
	return t.SplitAt(row)
}

// Partition scatters the table into at most n contiguous row partitions of
// near-equal size. Partitions share the table's backing storage.
func (t *Table) Partition(n int) ([]*Table, error) {
	if t.nRows == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Table.Partition")
	}
	if n <= 0 {
		return nil, errors.NewValidationError("n", "must be positive", n)
	}

	ranges := parallel.Split(t.nRows, n)
	parts := make([]*Table, len(ranges))
	for k, r := range ranges {
		cols := make([][]float64, len(t.columns))
		for i, col := range t.columns {
			cols[i] = col[r.Start:r.End:r.End]
		}
		parts[k] = &Table{names: t.names, columns: cols, nRows: r.End - r.Start}
	}
	return parts, nil
}

// Head returns up to n rows rendered as an aligned text table, for terminal
// inspection of results.
func (t *Table) Head(n int) string {
	if n > t.nRows {
		n = t.nRows
	}

	var b strings.Builder
	for i, name := range t.names {
		if i > 0 {
			b.WriteString("\t")
		}
		b.WriteString(name)
	}
	b.WriteString("\n")

	for i := 0; i < n; i++ {
		for j := range t.names {
			if j > 0 {
				b.WriteString("\t")
			}
			fmt.Fprintf(&b, "%.4f", t.columns[j][i])
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (t *Table) columnIndex(name string) (int, error) {
	for i, n := range t.names {
		if n == name {
			return i, nil
		}
	}
	return 0, errors.NewValueError("Table", fmt.Sprintf("unknown column %q (have %v)", name, t.names))
}
