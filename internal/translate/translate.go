// Package translate renames dataset columns to English through an external
// text-translation service and writes the result.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/csvclean/internal/core"
	"github.com/JonMunkholm/csvclean/internal/csvio"
)

// ErrUnsupportedFileType is returned for any output type other than
// "csv" or "spreadsheet", before any I/O.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// TargetLanguage is the language column names are translated into.
const TargetLanguage = "en"

// Translator translates one piece of text into the target language.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// FileFormat maps "csv" and "spreadsheet" to an output format.
func FileFormat(fileType string) (csvio.Format, error) {
	switch strings.ToLower(fileType) {
	case "csv":
		return csvio.FormatCSV, nil
	case "spreadsheet":
		return csvio.FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q (want csv or spreadsheet)", ErrUnsupportedFileType, fileType)
	}
}

// Headers translates every column name of ds and renames the columns.
// Names that translate to the same text merge last-write-wins and are
// reported as column_collision warnings. Each distinct name is sent once.
func Headers(ctx context.Context, t Translator, ds *core.Dataset) (*core.Dataset, []core.Warning, error) {
	translated := make(map[string]string, len(ds.Columns))
	for _, col := range ds.Columns {
		if _, done := translated[col]; done {
			continue
		}
		if strings.TrimSpace(col) == "" {
			translated[col] = col
			continue
		}
		out, err := t.Translate(ctx, col, TargetLanguage)
		if err != nil {
			return nil, nil, fmt.Errorf("translate header %q: %w", col, err)
		}
		translated[col] = strings.TrimSpace(out)
	}

	out, warnings := core.RenameColumns(ds, func(name string) string {
		return translated[name]
	})
	return out, warnings, nil
}

// TranslateHeaders validates fileType, translates the column names of ds
// and writes the renamed dataset to dest.
func TranslateHeaders(ctx context.Context, t Translator, ds *core.Dataset, dest, fileType string, logger *slog.Logger) (*core.Dataset, error) {
	format, err := FileFormat(fileType)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	out, warnings, err := Headers(ctx, t, ds)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn(w.Message, "code", string(w.Code), "columns", w.Columns)
	}

	if err := csvio.SaveFile(dest, out, format); err != nil {
		return nil, err
	}
	logger.Info("headers translated", "columns", len(out.Columns), "dest", dest, "type", fileType)
	return out, nil
}
