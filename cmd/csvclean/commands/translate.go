package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvclean/internal/csvio"
	"github.com/JonMunkholm/csvclean/internal/translate"
)

func translateHeadersCmd() *cobra.Command {
	var (
		fileType string
		url      string
		apiKey   string
		rps      float64
		sep      string
	)
	cmd := &cobra.Command{
		Use:   "translate-headers INPUT DEST",
		Short: "Translate column names to English and write DEST",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Checked before any I/O
			if _, err := translate.FileFormat(fileType); err != nil {
				return err
			}

			tcfg := translate.Config{
				URL:               cfg.Translate.URL,
				APIKey:            cfg.Translate.APIKey,
				RequestsPerSecond: cfg.Translate.RequestsPerSecond,
				Timeout:           cfg.Translate.Timeout,
			}
			if url != "" {
				tcfg.URL = url
			}
			if apiKey != "" {
				tcfg.APIKey = apiKey
			}
			if rps > 0 {
				tcfg.RequestsPerSecond = rps
			}

			loadOpts := csvio.LoadOptions{MaxBytes: cfg.Clean.MaxFileSize, NoInference: true}
			if sep != "" {
				loadOpts.Separator = []rune(sep)[0]
			}
			ctx := commandContext(cmd)
			ds, err := csvio.Load(ctx, args[0], loadOpts)
			if err != nil {
				return err
			}

			out, err := translate.TranslateHeaders(ctx, translate.NewHTTPTranslator(tcfg), ds, args[1], fileType, loggerOrDefault())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", args[1], out.Columns)
			return nil
		},
	}
	cmd.Flags().StringVar(&fileType, "file-type", "csv", "output type: csv or spreadsheet")
	cmd.Flags().StringVar(&url, "url", "", "translation service URL (default from TRANSLATE_URL)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "translation service API key")
	cmd.Flags().Float64Var(&rps, "rps", 0, "max requests per second (default from config)")
	cmd.Flags().StringVar(&sep, "sep", "", "input field separator (default ,)")
	return cmd
}
