package core

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// CellKind identifies the type of value held by a Cell.
type CellKind uint8

const (
	KindNull CellKind = iota
	KindString
	KindNumber
)

// Cell is a single (row, column) value: null, a string, or a number.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
}

// Null returns an empty (null) cell.
func Null() Cell { return Cell{Kind: KindNull} }

// Text returns a string cell.
func Text(s string) Cell { return Cell{Kind: KindString, Str: s} }

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{Kind: KindNumber, Num: f} }

// IsEmpty reports whether the cell is null or the empty string.
func (c Cell) IsEmpty() bool {
	return c.Kind == KindNull || (c.Kind == KindString && c.Str == "")
}

// AsText returns the string value and true if the cell holds a string.
func (c Cell) AsText() (string, bool) {
	if c.Kind != KindString {
		return "", false
	}
	return c.Str, true
}

// Equal compares two cells. Empty cells (null or "") are equal to each
// other, and so are two NaN numbers.
func (c Cell) Equal(o Cell) bool {
	if c.IsEmpty() || o.IsEmpty() {
		return c.IsEmpty() && o.IsEmpty()
	}
	if c.Kind != o.Kind {
		return false
	}
	if c.Kind == KindNumber {
		return c.Num == o.Num || (math.IsNaN(c.Num) && math.IsNaN(o.Num))
	}
	return c.Str == o.Str
}

// String renders the cell for output. Null renders as "", numbers without
// exponent or trailing zeros ("5551234567", not "5.551234567e+09").
func (c Cell) String() string {
	switch c.Kind {
	case KindString:
		return c.Str
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// Dataset is a rectangular table: ordered unique column names and ordered
// rows, each row holding exactly one cell per column in column order.
//
// Passes treat a Dataset as immutable input and return a new one.
type Dataset struct {
	Columns []string
	Rows    [][]Cell
}

// NewDataset builds a dataset, checking that column names are unique and
// every row has exactly len(columns) cells.
func NewDataset(columns []string, rows [][]Cell) (*Dataset, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidDataset, c)
		}
		seen[c] = struct{}{}
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidDataset, i, len(r), len(columns))
		}
	}
	if rows == nil {
		rows = [][]Cell{}
	}
	return &Dataset{Columns: columns, Rows: rows}, nil
}

// Empty returns a dataset with zero columns and zero rows.
func Empty() *Dataset {
	return &Dataset{Columns: []string{}, Rows: [][]Cell{}}
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// ColumnIndex returns the position of name, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column's cells.
func (d *Dataset) Column(name string) ([]Cell, bool) {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]Cell, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r[idx]
	}
	return out, true
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	cols := make([]string, len(d.Columns))
	copy(cols, d.Columns)
	rows := make([][]Cell, len(d.Rows))
	for i, r := range d.Rows {
		row := make([]Cell, len(r))
		copy(row, r)
		rows[i] = row
	}
	return &Dataset{Columns: cols, Rows: rows}
}

// Equal reports whether both datasets have the same columns and cells.
func (d *Dataset) Equal(o *Dataset) bool {
	if len(d.Columns) != len(o.Columns) || len(d.Rows) != len(o.Rows) {
		return false
	}
	for i := range d.Columns {
		if d.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range d.Rows {
		if !rowsEqual(d.Rows[i], o.Rows[i]) {
			return false
		}
	}
	return true
}

// withColumn returns a copy of d with column idx replaced by cells.
func (d *Dataset) withColumn(idx int, cells []Cell) *Dataset {
	out := d.Clone()
	for i := range out.Rows {
		out.Rows[i][idx] = cells[i]
	}
	return out
}

func rowsEqual(a, b []Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// OutcomeStatus is the result of applying a rule to one cell.
type OutcomeStatus uint8

const (
	Unchanged OutcomeStatus = iota
	Repaired
	Rejected
)

func (s OutcomeStatus) String() string {
	switch s {
	case Repaired:
		return "repaired"
	case Rejected:
		return "rejected"
	default:
		return "unchanged"
	}
}

// Outcome is the per-cell result of a rule. Value is the cell to store;
// Original is the input cell.
type Outcome struct {
	Status   OutcomeStatus
	Value    Cell
	Original Cell
}

func unchanged(c Cell) Outcome { return Outcome{Status: Unchanged, Value: c, Original: c} }

func rejected(c Cell) Outcome { return Outcome{Status: Rejected, Value: Text(""), Original: c} }

// accepted returns Unchanged when v equals the original string cell exactly,
// Repaired otherwise.
func accepted(orig Cell, v string) Outcome {
	if s, ok := orig.AsText(); ok && s == v {
		return unchanged(orig)
	}
	return Outcome{Status: Repaired, Value: Text(v), Original: orig}
}

// WarningCode classifies a non-fatal condition reported by a pass.
type WarningCode string

const (
	WarnNoColumnsMatched WarningCode = "no_columns_matched"
	WarnColumnsMissing   WarningCode = "columns_missing"
	WarnColumnCollision  WarningCode = "column_collision"
)

// Warning is a non-fatal condition reported by a pass.
type Warning struct {
	Code    WarningCode `json:"code"`
	Columns []string    `json:"columns,omitempty"`
	Message string      `json:"message"`
}

// PassReport summarizes what one pass changed.
type PassReport struct {
	Pass       string    `json:"pass"`
	Column     string    `json:"column,omitempty"`
	Repaired   int       `json:"repaired"`
	Rejected   int       `json:"rejected"`
	Removed    int       `json:"removed"`
	Warnings   []Warning `json:"warnings,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"durationMs"`
}

// Failed reports whether the pass was rolled back because of an error.
func (p PassReport) Failed() bool { return p.Error != "" }

// Report aggregates the pass reports of one pipeline run.
type Report struct {
	RunID      string       `json:"runId"`
	StartedAt  time.Time    `json:"startedAt"`
	DurationMs int64        `json:"durationMs"`
	RowsIn     int          `json:"rowsIn"`
	RowsOut    int          `json:"rowsOut"`
	ColumnsIn  int          `json:"columnsIn"`
	ColumnsOut int          `json:"columnsOut"`
	Passes     []PassReport `json:"passes"`
}

// Totals returns the summed repaired, rejected and removed counts.
func (r *Report) Totals() (repaired, rejected, removed int) {
	for _, p := range r.Passes {
		repaired += p.Repaired
		rejected += p.Rejected
		removed += p.Removed
	}
	return repaired, rejected, removed
}

// Warnings returns every warning raised during the run, in pass order.
func (r *Report) Warnings() []Warning {
	var out []Warning
	for _, p := range r.Passes {
		out = append(out, p.Warnings...)
	}
	return out
}

// Failures returns the reports of passes that were rolled back.
func (r *Report) Failures() []PassReport {
	var out []PassReport
	for _, p := range r.Passes {
		if p.Failed() {
			out = append(out, p)
		}
	}
	return out
}

// Pass is one transform over a dataset. Apply must not modify its input.
// The returned PassReport carries Pass and Column even when err != nil.
type Pass interface {
	Name() string
	Apply(ds *Dataset) (*Dataset, PassReport, error)
}
