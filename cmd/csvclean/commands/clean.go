package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvclean/internal/core"
	"github.com/JonMunkholm/csvclean/internal/csvio"
)

// SourceCLI marks runs started from the command line.
const SourceCLI = "cli"

type cleanFlags struct {
	output     string
	format     string
	reportPath string

	profile     string
	selectCols  []string
	emailColumn string
	nameColumn  string
	phoneColumn string
	domains     []string
	threshold   float64
	workers     int
	noDedupe    bool
	stopOnError bool

	separator   string
	headerRow   int
	engine      string
	encoding    string
	sheet       string
	noInference bool
}

func cleanCmd() *cobra.Command {
	var f cleanFlags
	cmd := &cobra.Command{
		Use:   "clean INPUT",
		Short: "Clean a CSV or XLSX file",
		Long: `Normalize headers, keep the selected columns, repair or blank invalid
emails, names and phone numbers, drop duplicate rows, and write the result.

The output defaults to INPUT_clean.<format> next to the input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, args[0], f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "output path")
	fl.StringVarP(&f.format, "format", "f", "csv", "output format: csv, xlsx, json")
	fl.StringVar(&f.reportPath, "report", "", "write the run report as JSON to this path")

	fl.StringVar(&f.profile, "profile", "", "use a registered profile (see 'csvclean profiles')")
	fl.StringSliceVar(&f.selectCols, "select", nil, "keep only these columns (comma-separated)")
	fl.StringVar(&f.emailColumn, "email-column", "email", "email column; empty disables the rule")
	fl.StringVar(&f.nameColumn, "name-column", "firstname", "name column; empty disables the rule")
	fl.StringVar(&f.phoneColumn, "phone-column", "phone", "phone column; empty disables the rule")
	fl.StringSliceVar(&f.domains, "domains", nil, "known email domains for typo repair (default built-in list)")
	fl.Float64Var(&f.threshold, "threshold", 0, "minimum similarity for a domain repair (default from config)")
	fl.IntVar(&f.workers, "workers", 0, "rule passes to run concurrently (default from config)")
	fl.BoolVar(&f.noDedupe, "no-dedupe", false, "keep duplicate rows")
	fl.BoolVar(&f.stopOnError, "stop-on-error", false, "abort at the first failed pass")

	fl.StringVar(&f.separator, "sep", ",", `field separator; "tab" for TSV`)
	fl.IntVar(&f.headerRow, "header-row", 0, "zero-based index of the header record")
	fl.StringVar(&f.engine, "engine", string(csvio.EngineStrict), "parser: strict or lenient")
	fl.StringVar(&f.encoding, "encoding", "", "input text encoding, e.g. windows-1252 (default utf-8)")
	fl.StringVar(&f.sheet, "sheet", "", "sheet to read from .xlsx input (default first)")
	fl.BoolVar(&f.noInference, "no-inference", false, "keep every cell as text")
	return cmd
}

func runClean(cmd *cobra.Command, input string, f cleanFlags) error {
	log := loggerOrDefault()

	format, err := csvio.ParseFormat(f.format)
	if err != nil {
		return err
	}
	loadOpts, err := f.loadOptions()
	if err != nil {
		return err
	}
	opts := f.cleanOptions()

	ctx := commandContext(cmd)
	ctx = core.ContextWithSource(ctx, SourceCLI)

	ds, err := csvio.Load(ctx, input, loadOpts)
	if err != nil {
		return err
	}
	log.Info("loaded dataset", "file", input, "rows", ds.Len(), "columns", len(ds.Columns))

	svc := core.NewService(nil, nil, cfg.Clean.Timeout, log)
	out, rec, err := svc.Clean(ctx, core.CleanRequest{
		FileName: filepath.Base(input),
		Profile:  f.profile,
		Options:  opts,
		Dataset:  ds,
	})
	if err != nil {
		return err
	}

	dest := f.output
	if dest == "" {
		dest = strings.TrimSuffix(input, filepath.Ext(input)) + "_clean" + format.Extension()
	}
	if err := csvio.SaveFile(dest, out, format); err != nil {
		return err
	}
	if f.reportPath != "" {
		if err := writeReport(f.reportPath, rec); err != nil {
			return err
		}
	}

	repaired, rejected, removed := rec.Report.Totals()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows in, %d rows out (%d repaired, %d rejected, %d duplicates removed)\n",
		dest, rec.Report.RowsIn, rec.Report.RowsOut, repaired, rejected, removed)
	for _, w := range rec.Report.Warnings() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w.Message)
	}
	for _, p := range rec.Report.Failures() {
		fmt.Fprintf(cmd.ErrOrStderr(), "pass %s failed: %s\n", p.Pass, p.Error)
	}
	return nil
}

func (f cleanFlags) loadOptions() (csvio.LoadOptions, error) {
	opts := csvio.LoadOptions{
		HeaderRow:   f.headerRow,
		Engine:      csvio.Engine(strings.ToLower(f.engine)),
		Encoding:    f.encoding,
		Sheet:       f.sheet,
		NoInference: f.noInference,
		MaxBytes:    cfg.Clean.MaxFileSize,
	}
	switch strings.ToLower(f.separator) {
	case "tab", `\t`:
		opts.Separator = '\t'
	default:
		if utf8.RuneCountInString(f.separator) != 1 {
			return opts, fmt.Errorf("separator must be a single character, got %q", f.separator)
		}
		opts.Separator, _ = utf8.DecodeRuneInString(f.separator)
	}
	return opts, nil
}

func (f cleanFlags) cleanOptions() core.Options {
	opts := core.DefaultOptions()
	opts.Select = f.selectCols
	opts.EmailColumn = f.emailColumn
	opts.NameColumn = f.nameColumn
	opts.PhoneColumn = f.phoneColumn
	opts.Dedupe = !f.noDedupe
	opts.StopOnError = f.stopOnError || cfg.Clean.StopOnError

	switch {
	case len(f.domains) > 0:
		opts.KnownDomains = core.NewKnownDomains(f.domains...)
	case len(cfg.Clean.KnownDomains) > 0:
		opts.KnownDomains = core.NewKnownDomains(cfg.Clean.KnownDomains...)
	}
	opts.SimilarityThreshold = cfg.Clean.SimilarityThreshold
	if f.threshold != 0 {
		opts.SimilarityThreshold = f.threshold
	}
	opts.Workers = cfg.Clean.Workers
	if f.workers != 0 {
		opts.Workers = f.workers
	}
	return opts
}

func writeReport(path string, rec core.RunRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
