package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvclean/internal/core"
)

func profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List registered cleaning profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tGROUP\tDESCRIPTION")
			for _, p := range core.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Key, p.Group, p.Description)
			}
			return tw.Flush()
		},
	}
}
