package core

import "fmt"

// ColumnRule applies a per-cell check to every cell of one column.
// It never adds, removes or reorders rows or columns.
type ColumnRule struct {
	name   string
	column string
	check  func(Cell) Outcome
}

// Name returns the rule name ("email", "name" or "phone").
func (r *ColumnRule) Name() string { return r.name }

// Column returns the column the rule targets.
func (r *ColumnRule) Column() string { return r.column }

// Apply returns a copy of ds with the rule's column rewritten.
func (r *ColumnRule) Apply(ds *Dataset) (*Dataset, PassReport, error) {
	cells, report, err := r.evaluate(ds)
	if err != nil {
		return ds, report, err
	}
	idx := ds.ColumnIndex(r.column)
	return ds.withColumn(idx, cells), report, nil
}

// evaluate computes the new column without building a dataset, so several
// rules can read one snapshot and be merged afterwards.
func (r *ColumnRule) evaluate(ds *Dataset) ([]Cell, PassReport, error) {
	report := PassReport{Pass: r.name, Column: r.column}

	idx := ds.ColumnIndex(r.column)
	if idx < 0 {
		return nil, report, fmt.Errorf("%s rule: %w: %q", r.name, ErrColumnNotFound, r.column)
	}

	cells := make([]Cell, len(ds.Rows))
	for i, row := range ds.Rows {
		out := r.check(row[idx])
		switch out.Status {
		case Repaired:
			report.Repaired++
		case Rejected:
			report.Rejected++
		}
		cells[i] = out.Value
	}
	return cells, report, nil
}
