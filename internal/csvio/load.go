// Package csvio loads delimited files and spreadsheets into core datasets
// and writes them back out.
//
// Loading never panics: every failure is returned wrapped around
// ErrNoDataset, with a nil dataset.
package csvio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvclean/internal/core"
)

var (
	// ErrNoDataset wraps every load failure.
	ErrNoDataset = errors.New("no dataset")

	// ErrFileTooLarge is returned when input exceeds LoadOptions.MaxBytes.
	ErrFileTooLarge = errors.New("file too large")
)

// Engine selects how forgiving the CSV parser is.
type Engine string

const (
	// EngineStrict rejects ragged rows and stray quotes.
	EngineStrict Engine = "strict"
	// EngineLenient pads short rows with nulls, truncates long ones and
	// accepts bare quotes.
	EngineLenient Engine = "lenient"
)

// DefaultNAValues are the tokens read as null cells.
var DefaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// LoadOptions controls parsing. The zero value reads comma-separated UTF-8
// with the header on the first line.
type LoadOptions struct {
	// Separator defaults to ','.
	Separator rune
	// HeaderRow is the zero-based record index of the header; earlier
	// records are skipped.
	HeaderRow int
	// Engine defaults to EngineStrict.
	Engine Engine
	// Encoding is a WHATWG label ("utf-8", "windows-1252", "shift_jis", ...).
	// Empty means UTF-8.
	Encoding string
	// NAValues overrides DefaultNAValues when non-nil.
	NAValues []string
	// NoInference keeps every non-null cell as text.
	NoInference bool
	// MaxBytes limits the raw input size. Zero means unlimited.
	MaxBytes int64
	// Sheet selects the spreadsheet sheet for .xlsx input. Empty means the first.
	Sheet string
}

func (o LoadOptions) withDefaults() (LoadOptions, error) {
	if o.Separator == 0 {
		o.Separator = ','
	}
	if o.Engine == "" {
		o.Engine = EngineStrict
	}
	if o.Engine != EngineStrict && o.Engine != EngineLenient {
		return o, fmt.Errorf("unknown engine %q", o.Engine)
	}
	if o.HeaderRow < 0 {
		return o, fmt.Errorf("header row %d is negative", o.HeaderRow)
	}
	if o.NAValues == nil {
		o.NAValues = DefaultNAValues
	}
	return o, nil
}

// Load reads the file at path. Files ending in .xlsx are read as
// spreadsheets; everything else as delimited text.
func Load(ctx context.Context, path string, opts LoadOptions) (*core.Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		ds, err := loadXLSX(ctx, path, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrNoDataset, path, err)
		}
		return ds, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDataset, err)
	}
	defer f.Close()

	ds, err := parse(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoDataset, path, err)
	}
	return ds, nil
}

// Parse reads delimited text from r.
func Parse(r io.Reader, opts LoadOptions) (*core.Dataset, error) {
	return ParseContext(context.Background(), r, opts)
}

// ParseContext is Parse with cancellation between records.
func ParseContext(ctx context.Context, r io.Reader, opts LoadOptions) (*core.Dataset, error) {
	ds, err := parse(ctx, r, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDataset, err)
	}
	return ds, nil
}

func parse(ctx context.Context, r io.Reader, opts LoadOptions) (*core.Dataset, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	src, err := WrapForLoading(r, opts.Encoding, opts.MaxBytes)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(src)
	cr.Comma = opts.Separator
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = opts.Engine == EngineLenient
	cr.ReuseRecord = false

	var records [][]string
	var lines []int
	for i := 0; ; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}

	return build(records, lines, opts)
}

// build turns raw records into a dataset: header selection, width checks,
// null tokens and numeric inference. lines may be nil.
func build(records [][]string, lines []int, opts LoadOptions) (*core.Dataset, error) {
	if len(records) == 0 {
		return nil, errors.New("empty file")
	}
	if opts.HeaderRow >= len(records) {
		return nil, fmt.Errorf("header row %d out of range (%d records)", opts.HeaderRow, len(records))
	}

	columns := headerNames(records[opts.HeaderRow])
	body := records[opts.HeaderRow+1:]

	na := make(map[string]struct{}, len(opts.NAValues))
	for _, v := range opts.NAValues {
		na[v] = struct{}{}
	}

	rows := make([][]core.Cell, len(body))
	for i, rec := range body {
		if len(rec) != len(columns) && opts.Engine == EngineStrict {
			line := 0
			if lines != nil {
				line = lines[opts.HeaderRow+1+i]
			}
			return nil, &csv.ParseError{StartLine: line, Line: line, Err: csv.ErrFieldCount}
		}
		row := make([]core.Cell, len(columns))
		for j := range columns {
			if j >= len(rec) {
				row[j] = core.Null()
				continue
			}
			if _, isNA := na[rec[j]]; isNA {
				row[j] = core.Null()
				continue
			}
			row[j] = core.Text(rec[j])
		}
		rows[i] = row
	}

	if !opts.NoInference {
		inferNumbers(rows, len(columns))
	}

	return core.NewDataset(columns, rows)
}

// headerNames fills blank names and suffixes repeats (".1", ".2") so the
// column set is unique.
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, name := range raw {
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for n := 1; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		used[candidate] = true
		names[i] = candidate
	}
	return names
}

// inferNumbers converts a column to numbers when every non-null cell
// parses as a finite float. All-null columns are left alone.
func inferNumbers(rows [][]core.Cell, width int) {
	for j := 0; j < width; j++ {
		values := make([]float64, len(rows))
		numeric, seen := true, false
		for i, row := range rows {
			c := row[j]
			if c.Kind == core.KindNull {
				continue
			}
			f, err := strconv.ParseFloat(c.Str, 64)
			if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
				numeric = false
				break
			}
			values[i] = f
			seen = true
		}
		if !numeric || !seen {
			continue
		}
		for i, row := range rows {
			if row[j].Kind != core.KindNull {
				row[j] = core.Number(values[i])
			}
		}
	}
}
