package csvio

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/csvclean/internal/core"
)

// Format is an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv", "xlsx"/"spreadsheet"/"excel" and "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv", "":
		return FormatCSV, nil
	case "xlsx", "spreadsheet", "excel":
		return FormatXLSX, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string { return "." + string(f) }

// ContentType returns the MIME type used by the HTTP API.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Write encodes ds to w in the given format.
func Write(w io.Writer, ds *core.Dataset, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, ds, ',')
	case FormatXLSX:
		return WriteXLSX(w, ds, "")
	case FormatJSON:
		return WriteJSON(w, ds)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// SaveFile writes ds to path, replacing any existing file.
func SaveFile(path string, ds *core.Dataset, format Format) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Write(bw, ds, format); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return bw.Flush()
}

// WriteCSV writes a header line followed by one line per row. Nulls are
// written as empty fields.
func WriteCSV(w io.Writer, ds *core.Dataset, sep rune) error {
	cw := csv.NewWriter(w)
	if sep != 0 {
		cw.Comma = sep
	}

	if err := cw.Write(ds.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for j, c := range row {
			record[j] = c.String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DefaultSheetName is used when WriteXLSX is given no sheet name.
const DefaultSheetName = "Cleaned"

// WriteXLSX writes ds as a single-sheet workbook with a styled header row.
// Number cells are stored as numbers.
func WriteXLSX(w io.Writer, ds *core.Dataset, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]any, len(ds.Columns))
	for i, name := range ds.Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	values := make([]any, len(ds.Columns))
	for r, row := range ds.Rows {
		for j, c := range row {
			switch c.Kind {
			case core.KindNumber:
				values[j] = c.Num
			case core.KindString:
				values[j] = c.Str
			default:
				values[j] = nil
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteJSON writes {"columns": [...], "rows": [[...], ...]}. Nulls encode
// as null, numbers as numbers.
func WriteJSON(w io.Writer, ds *core.Dataset) error {
	type payload struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}
	out := payload{Columns: ds.Columns, Rows: make([][]any, len(ds.Rows))}
	for i, row := range ds.Rows {
		vals := make([]any, len(row))
		for j, c := range row {
			switch c.Kind {
			case core.KindNumber:
				vals[j] = c.Num
			case core.KindString:
				vals[j] = c.Str
			}
		}
		out.Rows[i] = vals
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}
