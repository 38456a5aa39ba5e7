// Package cmd provides the command-line interface of elasticsim.
package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/elastic/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "elasticsim",
	Short: "Elasticsim runs testbenches of elastic handshake circuits.",
	Long: `Elasticsim builds a circuit of elastic buffers, joins, forks, ` +
		`merges and credit gates, drives it with randomised traffic, and ` +
		`checks every word that comes out.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "",
		"TOML file with the testbench configuration")
	rootCmd.PersistentFlags().StringSlice("env-file", nil,
		"env files to load (default .env if present)")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func envFiles(cmd *cobra.Command) []string {
	files, _ := cmd.Flags().GetStringSlice("env-file")
	if len(files) > 0 {
		return files
	}

	if _, err := os.Stat(".env"); err == nil {
		return []string{".env"}
	}

	return nil
}

// loadConfig reads the configuration file and env files, then applies the
// flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path, envFiles(cmd)...)
	if err != nil {
		return config.Config{}, err
	}

	cfg, err = applyFlags(cmd, cfg)
	if err != nil {
		return config.Config{}, err
	}

	return cfg, errors.Wrap(cfg.Validate(), "flags")
}

func newLogger(cfg config.Config) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(cfg.Level()).
		With().
		Timestamp().
		Logger()
}
