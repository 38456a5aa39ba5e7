package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sarchlab/elastic/monitoring"
	"github.com/sarchlab/elastic/sim"
	"github.com/sarchlab/elastic/testbench"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a testbench behind the monitoring server.",
	Long: "`serve` starts the monitoring server before running the " +
		"testbench, so that the run can be paused, stepped and inspected " +
		"from a browser. The server keeps running after the testbench " +
		"finishes until interrupted.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("port") {
			cfg.MonitorPort, _ = cmd.Flags().GetInt("port")
		}

		logger := newLogger(cfg)

		bench, err := testbench.MakeBuilder().
			WithConfig(cfg).
			WithLogger(logger).
			Build("Bench")
		if err != nil {
			return err
		}

		monitor := monitoring.NewMonitor(bench.Simulation()).
			WithLogger(logger).
			WithPortNumber(cfg.MonitorPort)

		url, err := monitor.StartServer()
		if err != nil {
			return err
		}

		openBrowser, _ := cmd.Flags().GetBool("open")
		if openBrowser {
			err = monitor.OpenBrowser(url)
			if err != nil {
				logger.Warn().Err(err).Msg("cannot open browser")
			}
		}

		paused, _ := cmd.Flags().GetBool("paused")
		if paused {
			bench.Engine().Pause()
		}

		bar := monitor.CreateProgressBar("Words received", expectedWords(bench))
		bench.Engine().AcceptHook(&progressHook{bench: bench, bar: bar})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		report, err := bench.Run(ctx)
		if err != nil {
			return err
		}

		report.Log(logger)
		monitor.CompleteProgressBar(bar)

		logger.Info().Str("url", url).Msg("testbench done, serving until interrupted")
		<-ctx.Done()

		return report.Err()
	},
}

func init() {
	addScenarioFlags(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "port of the monitoring server")
	serveCmd.Flags().Bool("open", false, "open the monitor in a browser")
	serveCmd.Flags().Bool("paused", false,
		"start paused; resume from the monitor")
	rootCmd.AddCommand(serveCmd)
}

func expectedWords(bench *testbench.Bench) uint64 {
	var n uint64
	for _, s := range bench.Scoreboards() {
		n += uint64(s.Pending())
	}

	return n
}

// progressHook moves the progress bar along with the scoreboards.
type progressHook struct {
	bench    *testbench.Bench
	bar      *monitoring.ProgressBar
	reported uint64
}

func (h *progressHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterTick {
		return
	}

	var received uint64
	for _, s := range h.bench.Scoreboards() {
		received += s.Received()
	}

	if received > h.reported {
		h.bar.IncrementFinished(received - h.reported)
		h.reported = received
	}
}
