// Package commands implements the csvclean command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvclean/internal/config"
	"github.com/JonMunkholm/csvclean/internal/core"
	_ "github.com/JonMunkholm/csvclean/internal/core/profiles" // Register built-in profiles
	"github.com/JonMunkholm/csvclean/internal/logging"
)

var (
	envFile  string
	logLevel string
	logFile  string

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

// Execute runs the root command and prints a coded message on failure.
func Execute() error {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		msg := err.Error()
		if core.IsUserFacing(err) {
			msg = core.FormatUserError(err)
		}
		fmt.Fprintln(root.ErrOrStderr(), "Error:", msg)
		if logger != nil {
			logger.Debug("command failed", "error", err)
		}
		return err
	}
	return nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "csvclean",
		Short:         "Clean contact lists: emails, names, phones and duplicates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load %s: %w", envFile, err)
				}
			} else {
				// A missing .env is fine
				_ = godotenv.Load()
			}

			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}

			opts := logging.Options{
				Level:     cfg.Logging.Level,
				Format:    cfg.Logging.Format,
				File:      cfg.Logging.File,
				FileLevel: cfg.Logging.FileLevel,
			}
			if logLevel != "" {
				opts.Level = logLevel
			}
			if logFile != "" {
				opts.File = logFile
			}
			logger, logCloser, err = logging.New(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env", "", "env file to load (default .env when present)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "console log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs (debug and up) to this file")

	root.AddCommand(cleanCmd(), chunkCmd(), combineCmd(), translateHeadersCmd(), profilesCmd())
	return root
}

func loggerOrDefault() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
