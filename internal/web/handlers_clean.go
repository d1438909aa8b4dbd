package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/csvclean/internal/core"
	"github.com/JonMunkholm/csvclean/internal/csvio"
	"github.com/JonMunkholm/csvclean/internal/logging"
	mw "github.com/JonMunkholm/csvclean/internal/web/middleware"
)

// maxMemory is the part of a multipart form kept in memory; the rest spills
// to temporary files.
const maxMemory = 32 << 20

// formOverhead covers multipart boundaries and option fields on top of the
// file itself.
const formOverhead = 1 << 20

// CleanResponse is the JSON body returned by POST /api/clean when no file
// output is requested.
type CleanResponse struct {
	Run     core.RunRecord `json:"run"`
	Columns []string       `json:"columns"`
}

// handleClean loads the uploaded file, runs the pipeline and returns either
// the report (JSON) or the cleaned file.
//
// Output selection: a "format" field (csv, xlsx, json) returns the cleaned
// data as a file; otherwise "Accept: text/csv" returns CSV; otherwise the
// run record is returned as JSON. The run ID is always in X-Run-ID.
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context())
	r = r.WithContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Clean.MaxFileSize+formOverhead)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondError(w, r, fmt.Errorf("%w: %w", csvio.ErrFileTooLarge, err))
			return
		}
		respondError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	format, asFile, err := responseFormat(r)
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	loadOpts, err := s.parseLoadOptions(r)
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	opts, err := s.parseCleanOptions(r)
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	logger := logging.WithFields(ctx, "file", header.Filename, "size", header.Size)
	logger.Info("clean requested")

	ds, err := loadUpload(r, file, header.Filename, loadOpts)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out, rec, err := s.service.Clean(ctx, core.CleanRequest{
		FileName: header.Filename,
		Profile:  strings.TrimSpace(r.FormValue("profile")),
		Options:  opts,
		Dataset:  ds,
	})
	if rec.ID != "" {
		w.Header().Set("X-Run-ID", rec.ID)
		repaired, rejected, removed := rec.Report.Totals()
		mw.Annotate(ctx, "run_id", rec.ID,
			"rows_in", rec.Report.RowsIn,
			"rows_out", rec.Report.RowsOut,
			"repaired", repaired,
			"rejected", rejected,
			"removed", removed,
		)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	if !asFile {
		writeJSON(w, http.StatusOK, CleanResponse{Run: rec, Columns: out.Columns})
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cleanedName(header.Filename, format)))
	if err := csvio.Write(w, out, format); err != nil {
		// Headers are already sent
		logger.Error("failed to write cleaned file", "run_id", rec.ID, "error", err)
	}
}

// loadUpload parses the uploaded file as a spreadsheet or delimited text,
// chosen by file extension.
func loadUpload(r *http.Request, file io.Reader, name string, opts csvio.LoadOptions) (*core.Dataset, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return csvio.ParseXLSX(r.Context(), file, opts)
	}
	return csvio.ParseContext(r.Context(), file, opts)
}

// responseFormat reports the file format to return, if any.
func responseFormat(r *http.Request) (csvio.Format, bool, error) {
	if v := r.FormValue("format"); v != "" {
		f, err := csvio.ParseFormat(v)
		return f, err == nil, err
	}
	if strings.Contains(r.Header.Get("Accept"), "text/csv") {
		return csvio.FormatCSV, true, nil
	}
	return "", false, nil
}

// cleanedName derives the download name, e.g. "contacts.csv" -> "contacts_clean.xlsx".
func cleanedName(upload string, format csvio.Format) string {
	base := strings.TrimSuffix(filepath.Base(upload), filepath.Ext(upload))
	if base == "" || base == "." {
		base = "dataset"
	}
	return base + "_clean" + format.Extension()
}

// parseLoadOptions reads separator, header_row, engine, encoding, sheet and
// no_inference.
func (s *Server) parseLoadOptions(r *http.Request) (csvio.LoadOptions, error) {
	opts := csvio.LoadOptions{MaxBytes: s.cfg.Clean.MaxFileSize}

	if sep := r.FormValue("separator"); sep != "" {
		switch strings.ToLower(sep) {
		case "tab", `\t`:
			opts.Separator = '\t'
		default:
			if utf8.RuneCountInString(sep) != 1 {
				return opts, fmt.Errorf("separator must be a single character, got %q", sep)
			}
			opts.Separator, _ = utf8.DecodeRuneInString(sep)
		}
	}
	if v := r.FormValue("header_row"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("header_row must be a non-negative integer, got %q", v)
		}
		opts.HeaderRow = n
	}
	opts.Engine = csvio.Engine(strings.ToLower(r.FormValue("engine")))
	opts.Encoding = r.FormValue("encoding")
	opts.Sheet = r.FormValue("sheet")

	noInference, err := formBool(r, "no_inference", false)
	if err != nil {
		return opts, err
	}
	opts.NoInference = noInference
	return opts, nil
}

// parseCleanOptions starts from the server defaults and applies form
// overrides. A rule column field that is present but empty disables the rule.
func (s *Server) parseCleanOptions(r *http.Request) (core.Options, error) {
	opts := s.defaultOptions()

	if v := r.FormValue("select"); v != "" {
		opts.Select = splitList(v)
	}
	for field, dst := range map[string]*string{
		"email_column": &opts.EmailColumn,
		"name_column":  &opts.NameColumn,
		"phone_column": &opts.PhoneColumn,
	} {
		if vals, ok := r.Form[field]; ok && len(vals) > 0 {
			*dst = strings.TrimSpace(vals[0])
		}
	}
	if v := r.FormValue("domains"); v != "" {
		opts.KnownDomains = core.NewKnownDomains(splitList(v)...)
	}
	if v := r.FormValue("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("threshold must be a number, got %q", v)
		}
		opts.SimilarityThreshold = f
	}
	if v := r.FormValue("workers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("workers must be an integer, got %q", v)
		}
		opts.Workers = n
	}

	var err error
	if opts.Dedupe, err = formBool(r, "dedupe", opts.Dedupe); err != nil {
		return opts, err
	}
	if opts.StopOnError, err = formBool(r, "stop_on_error", opts.StopOnError); err != nil {
		return opts, err
	}
	return opts, nil
}

// defaultOptions applies the configured cleaning defaults.
func (s *Server) defaultOptions() core.Options {
	opts := core.DefaultOptions()
	if len(s.cfg.Clean.KnownDomains) > 0 {
		opts.KnownDomains = core.NewKnownDomains(s.cfg.Clean.KnownDomains...)
	}
	if s.cfg.Clean.SimilarityThreshold > 0 {
		opts.SimilarityThreshold = s.cfg.Clean.SimilarityThreshold
	}
	if s.cfg.Clean.Workers > 0 {
		opts.Workers = s.cfg.Clean.Workers
	}
	opts.StopOnError = s.cfg.Clean.StopOnError
	return opts
}

func formBool(r *http.Request, name string, def bool) (bool, error) {
	v := r.FormValue(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s must be true or false, got %q", name, v)
	}
	return b, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
