package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/elastic/config"
	"github.com/sarchlab/elastic/elastic"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the scenarios and buffer kinds.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Scenarios:")
		for _, s := range config.Scenarios {
			fmt.Fprintf(out, "  %s\n", s)
		}

		fmt.Fprintln(out, "Buffer kinds:")
		for _, k := range []elastic.Kind{
			elastic.KindElastic, elastic.KindSkid, elastic.KindHalf,
		} {
			fmt.Fprintf(out, "  %s\n", k)
		}

		fmt.Fprintln(out, "Policies:")
		for _, p := range []string{"priority", "round-robin", "round-robin-rotate"} {
			fmt.Fprintf(out, "  %s\n", p)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
