package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvclean/internal/chunk"
)

func chunkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chunk FILE.csv",
		Short: fmt.Sprintf("Split a file into %d line-aligned parts", chunk.Count),
		Long: fmt.Sprintf(`Write FILE_0.csv ... FILE_%d.csv next to FILE.csv. Lines are copied
byte for byte; the header is not repeated.`, chunk.Count-1),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := chunk.Chunk(args[0])
			if err != nil {
				return err
			}
			loggerOrDefault().Info("file chunked", "file", args[0], "chunks", len(paths))
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func combineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "combine FILE.csv",
		Short: "Concatenate FILE_0.csv ... FILE_9.csv back into FILE.csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := chunk.Combine(args[0]); err != nil {
				return err
			}
			loggerOrDefault().Info("chunks combined", "file", args[0])
			fmt.Fprintln(cmd.OutOrStdout(), args[0])
			return nil
		},
	}
}
