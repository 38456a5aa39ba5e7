package cmd

import (
	"encoding/json"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sarchlab/elastic/testbench"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a testbench and report the result.",
	Long: "`run` builds the configured scenario, runs it until every word " +
		"arrived or the cycle limit is hit, and fails if any word was lost, " +
		"reordered or corrupted.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger := newLogger(cfg)

		bench, err := testbench.MakeBuilder().
			WithConfig(cfg).
			WithLogger(logger).
			Build("Bench")
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		report, err := bench.Run(ctx)
		if err != nil {
			return err
		}

		report.Log(logger)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			err = enc.Encode(report)
			if err != nil {
				return err
			}
		}

		return report.Err()
	},
}

func init() {
	addScenarioFlags(runCmd)
	runCmd.Flags().Bool("json", false, "print the report as JSON")
	rootCmd.AddCommand(runCmd)
}
