package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/elastic/config"
)

func addScenarioFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	f.StringP("scenario", "s", "", "scenario to run, see elasticsim list")
	f.String("buffer-kind", "", "buffer kind: elastic, skid or half")
	f.String("policy", "", "arbitration policy of round-robin merges")
	f.String("op", "", "combine operator of one-hot merges: or, and, xor")
	f.Int("width", 0, "word width in bits")
	f.Int("ports", 0, "number of join inputs, fork outputs or merge inputs")
	f.Int("stages", 0, "number of pipeline stages")
	f.Uint64("credits", 0, "credits of the credit gate")
	f.Int("words", 0, "words sent by every source")
	f.Uint64("max-cycles", 0, "cycle limit")
	f.Int64("seed", 0, "random seed")
	f.Float64("source-prob", 0, "probability that a source offers a word")
	f.Float64("sink-prob", 0, "probability that a sink is ready")
	f.Float64("clock-mhz", 0, "clock frequency used to convert cycles to time")
	f.String("log-level", "", "log level: trace, debug, info, warn, error")
	f.String("record", "", "record transfers into this SQLite file (no suffix)")
	f.Bool("trace-stalls", false, "also trace stalls")
}

// applyFlags overrides the configuration with the flags the user set.
func applyFlags(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	f := cmd.Flags()

	var err error

	set := func(name string, apply func()) {
		if err == nil && f.Changed(name) {
			apply()
		}
	}

	set("scenario", func() { cfg.Scenario, err = f.GetString("scenario") })
	set("buffer-kind", func() { cfg.BufferKind, err = f.GetString("buffer-kind") })
	set("policy", func() { cfg.Policy, err = f.GetString("policy") })
	set("op", func() { cfg.Op, err = f.GetString("op") })
	set("width", func() { cfg.Width, err = f.GetInt("width") })
	set("ports", func() { cfg.NumPorts, err = f.GetInt("ports") })
	set("stages", func() { cfg.NumStage, err = f.GetInt("stages") })
	set("credits", func() { cfg.MaxCredit, err = f.GetUint64("credits") })
	set("words", func() { cfg.Words, err = f.GetInt("words") })
	set("max-cycles", func() { cfg.MaxCycles, err = f.GetUint64("max-cycles") })
	set("seed", func() { cfg.Seed, err = f.GetInt64("seed") })
	set("source-prob", func() {
		cfg.SourceProbability, err = f.GetFloat64("source-prob")
	})
	set("sink-prob", func() { cfg.SinkProbability, err = f.GetFloat64("sink-prob") })
	set("clock-mhz", func() { cfg.ClockMHz, err = f.GetFloat64("clock-mhz") })
	set("log-level", func() { cfg.LogLevel, err = f.GetString("log-level") })
	set("record", func() { cfg.RecordPath, err = f.GetString("record") })
	set("trace-stalls", func() { cfg.TraceStalls, err = f.GetBool("trace-stalls") })

	return cfg, err
}
