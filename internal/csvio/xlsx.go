package csvio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/csvclean/internal/core"
)

// loadXLSX reads one sheet. Separator and Encoding do not apply.
func loadXLSX(ctx context.Context, path string, opts LoadOptions) (*core.Dataset, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	if opts.MaxBytes > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() > opts.MaxBytes {
			return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, info.Size(), opts.MaxBytes)
		}
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	return readSheet(ctx, f, opts)
}

// ParseXLSX reads one sheet of a spreadsheet from r, e.g. an uploaded file.
func ParseXLSX(ctx context.Context, r io.Reader, opts LoadOptions) (*core.Dataset, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDataset, err)
	}
	f, err := excelize.OpenReader(NewCountingReader(r, opts.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: open spreadsheet: %w", ErrNoDataset, err)
	}
	defer f.Close()

	ds, err := readSheet(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDataset, err)
	}
	return ds, nil
}

func readSheet(ctx context.Context, f *excelize.File, opts LoadOptions) (*core.Dataset, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, errors.New("empty file: no sheets")
		}
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	var records [][]string
	for i := 0; rows.Next(); i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", i+1, err)
		}
		records = append(records, cols)
	}
	if err := rows.Error(); err != nil {
		return nil, err
	}

	// Spreadsheets drop trailing empty cells, so width is never an error here.
	opts.Engine = EngineLenient
	return build(records, nil, opts)
}
