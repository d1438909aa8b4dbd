package core

// columns.go provides the header-level passes:
//
//   - NormalizeColumns: lowercase names, drop spaces and underscores
//   - SelectColumns: project onto an allowlist, tolerating absent names
//   - RenameColumns: the shared rename primitive (also used for header translation)
//
// None of these touch cell values.

import (
	"fmt"
	"strings"
)

var columnNameReplacer = strings.NewReplacer(" ", "", "_", "")

// NormalizeColumnName lowercases name and removes spaces and underscores.
func NormalizeColumnName(name string) string {
	return columnNameReplacer.Replace(strings.ToLower(name))
}

// RenameColumns maps every column name through rename.
//
// When several columns map to the same name the later column's cells win
// (last-write-wins) and the merged column keeps the position of the first.
// Each collision is reported as a WarnColumnCollision warning listing the
// original names involved.
func RenameColumns(ds *Dataset, rename func(string) string) (*Dataset, []Warning) {
	var (
		names    []string
		position = make(map[string]int, len(ds.Columns))
		source   = make(map[string]int, len(ds.Columns))
		origins  = make(map[string][]string)
	)

	for i, col := range ds.Columns {
		name := rename(col)
		if _, ok := position[name]; !ok {
			position[name] = len(names)
			names = append(names, name)
		}
		source[name] = i
		origins[name] = append(origins[name], col)
	}

	out := &Dataset{Columns: names, Rows: make([][]Cell, len(ds.Rows))}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	for r, row := range ds.Rows {
		newRow := make([]Cell, len(names))
		for j, name := range names {
			newRow[j] = row[source[name]]
		}
		out.Rows[r] = newRow
	}

	var warnings []Warning
	for _, name := range names {
		if orig := origins[name]; len(orig) > 1 {
			warnings = append(warnings, Warning{
				Code:    WarnColumnCollision,
				Columns: orig,
				Message: fmt.Sprintf("columns %s collide as %q; keeping data from %q",
					strings.Join(orig, ", "), name, orig[len(orig)-1]),
			})
		}
	}
	return out, warnings
}

// NormalizeColumns returns a copy of ds with normalized column names.
func NormalizeColumns(ds *Dataset) (*Dataset, []Warning) {
	return RenameColumns(ds, NormalizeColumnName)
}

// SelectColumns keeps the columns named in want that exist in ds, in the
// order they appear in ds (not the order of want).
//
// Absent names produce a WarnColumnsMissing warning listing exactly those
// names; an empty intersection returns an empty dataset (zero columns,
// zero rows) with a WarnNoColumnsMatched warning.
func SelectColumns(ds *Dataset, want []string) (*Dataset, []Warning) {
	wanted := make(map[string]struct{}, len(want))
	for _, w := range want {
		wanted[w] = struct{}{}
	}

	var missing []string
	reported := make(map[string]struct{})
	for _, w := range want {
		if ds.ColumnIndex(w) >= 0 {
			continue
		}
		if _, dup := reported[w]; dup {
			continue
		}
		reported[w] = struct{}{}
		missing = append(missing, w)
	}

	var keep []int
	for i, col := range ds.Columns {
		if _, ok := wanted[col]; ok {
			keep = append(keep, i)
		}
	}

	var warnings []Warning
	if len(missing) > 0 {
		warnings = append(warnings, Warning{
			Code:    WarnColumnsMissing,
			Columns: missing,
			Message: fmt.Sprintf("requested columns not found: %s", strings.Join(missing, ", ")),
		})
	}
	if len(keep) == 0 {
		warnings = append(warnings, Warning{
			Code:    WarnNoColumnsMatched,
			Message: "none of the requested columns exist in the dataset",
		})
		return Empty(), warnings
	}

	out := &Dataset{Columns: make([]string, len(keep)), Rows: make([][]Cell, len(ds.Rows))}
	for j, idx := range keep {
		out.Columns[j] = ds.Columns[idx]
	}
	for r, row := range ds.Rows {
		newRow := make([]Cell, len(keep))
		for j, idx := range keep {
			newRow[j] = row[idx]
		}
		out.Rows[r] = newRow
	}
	return out, warnings
}

// normalizePass adapts NormalizeColumns to the Pass interface.
type normalizePass struct{}

func (normalizePass) Name() string { return "normalize_columns" }

func (p normalizePass) Apply(ds *Dataset) (*Dataset, PassReport, error) {
	out, warnings := NormalizeColumns(ds)
	return out, PassReport{Pass: p.Name(), Warnings: warnings}, nil
}

// selectPass adapts SelectColumns to the Pass interface.
type selectPass struct {
	columns []string
}

func (selectPass) Name() string { return "select_columns" }

func (p selectPass) Apply(ds *Dataset) (*Dataset, PassReport, error) {
	out, warnings := SelectColumns(ds, p.columns)
	return out, PassReport{Pass: p.Name(), Warnings: warnings}, nil
}
