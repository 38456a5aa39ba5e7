package testbench

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sarchlab/elastic/sim/bottleneckanalysis"
)

// ErrFailed is the cause of the error a failed report returns.
var ErrFailed = errors.New("testbench failed")

// ChannelReport summarizes the traffic on one output channel.
type ChannelReport struct {
	Name         string  `json:"name"`
	Transfers    uint64  `json:"transfers"`
	Stalls       uint64  `json:"stalls"`
	Throughput   float64 `json:"throughput"`
	LongestStall uint64  `json:"longest_stall"`
}

// A Report is the outcome of one testbench run.
type Report struct {
	Scenario    string              `json:"scenario"`
	Cycles      uint64              `json:"cycles"`
	Sent        uint64              `json:"sent"`
	Received    uint64              `json:"received"`
	Throughput  float64             `json:"throughput"`
	Seconds     float64             `json:"seconds"`
	WordsPerSec float64             `json:"words_per_sec"`
	Completed   bool                `json:"completed"`
	Mismatches  []string            `json:"mismatches,omitempty"`
	Violations  []string            `json:"violations,omitempty"`
	Outputs     []ChannelReport     `json:"outputs"`
	Grants      map[string][]uint64 `json:"grants,omitempty"`

	// Bottleneck is the storage with the highest average occupancy
	// relative to its capacity.
	Bottleneck *bottleneckanalysis.StorageStats `json:"bottleneck,omitempty"`
}

// Err returns nil if the run completed without mismatches or violations.
func (r Report) Err() error {
	var problems []string

	if !r.Completed {
		problems = append(problems, "did not complete")
	}

	problems = append(problems, r.Mismatches...)
	problems = append(problems, r.Violations...)

	if len(problems) == 0 {
		return nil
	}

	return errors.Wrapf(ErrFailed, "%s: %s",
		r.Scenario, strings.Join(problems, "; "))
}

// Log writes the report to a logger.
func (r Report) Log(logger zerolog.Logger) {
	event := logger.Info()
	if r.Err() != nil {
		event = logger.Error().Err(r.Err())
	}

	event.
		Str("scenario", r.Scenario).
		Uint64("cycles", r.Cycles).
		Uint64("sent", r.Sent).
		Uint64("received", r.Received).
		Float64("throughput", r.Throughput).
		Float64("words_per_sec", r.WordsPerSec).
		Bool("completed", r.Completed).
		Msg("testbench finished")

	for _, o := range r.Outputs {
		logger.Debug().
			Str("channel", o.Name).
			Uint64("transfers", o.Transfers).
			Uint64("stalls", o.Stalls).
			Float64("throughput", o.Throughput).
			Uint64("longest_stall", o.LongestStall).
			Msg("output")
	}

	if r.Bottleneck != nil {
		logger.Debug().
			Str("storage", r.Bottleneck.Name).
			Float64("average", r.Bottleneck.Average).
			Float64("full_fraction", r.Bottleneck.FullFraction).
			Msg("bottleneck")
	}

	for arbiter, grants := range r.Grants {
		logger.Debug().
			Str("arbiter", arbiter).
			Interface("grants", grants).
			Msg("arbitration")
	}
}
