// Package bottleneckanalysis finds the stages of a circuit that hold words
// for the longest time.
package bottleneckanalysis

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/elastic/sim"
)

// A Storage is a component that holds words.
type Storage interface {
	Name() string
	Occupancy() int
	Capacity() int
}

// StorageStats summarizes the occupancy of one storage.
type StorageStats struct {
	Name         string  `json:"name"`
	Capacity     int     `json:"capacity"`
	Current      int     `json:"current"`
	Average      float64 `json:"average"`
	FullFraction float64 `json:"full_fraction"`
}

// Utilization returns the average occupancy relative to the capacity.
func (e StorageStats) Utilization() float64 {
	if e.Capacity == 0 {
		return 0
	}

	return e.Average / float64(e.Capacity)
}

type storageInfo struct {
	storage Storage

	cycles     uint64
	levelSum   uint64
	fullCycles uint64

	periodCycles   uint64
	periodLevelSum uint64
}

func (s *storageInfo) sample() {
	level := s.storage.Occupancy()

	s.cycles++
	s.levelSum += uint64(level)
	s.periodCycles++
	s.periodLevelSum += uint64(level)

	if level >= s.storage.Capacity() {
		s.fullCycles++
	}
}

func (s *storageInfo) stats() StorageStats {
	e := StorageStats{
		Name:     s.storage.Name(),
		Capacity: s.storage.Capacity(),
		Current:  s.storage.Occupancy(),
	}

	if s.cycles > 0 {
		e.Average = float64(s.levelSum) / float64(s.cycles)
		e.FullFraction = float64(s.fullCycles) / float64(s.cycles)
	}

	return e
}

func (s *storageInfo) periodAverage() float64 {
	if s.periodCycles == 0 {
		return 0
	}

	return float64(s.periodLevelSum) / float64(s.periodCycles)
}

// An OccupancyAnalyzer samples the occupancy of storages after every cycle.
// Attach it to an engine.
type OccupancyAnalyzer struct {
	logger   zerolog.Logger
	period   uint64
	storages []*storageInfo
	byName   map[string]*storageInfo
}

// OccupancyAnalyzerBuilder can build OccupancyAnalyzers.
type OccupancyAnalyzerBuilder struct {
	logger       zerolog.Logger
	period       uint64
	reportAtExit bool
}

// MakeOccupancyAnalyzerBuilder creates an OccupancyAnalyzerBuilder.
func MakeOccupancyAnalyzerBuilder() OccupancyAnalyzerBuilder {
	return OccupancyAnalyzerBuilder{
		logger: zerolog.Nop(),
	}
}

// WithLogger sets the logger that receives the reports.
func (b OccupancyAnalyzerBuilder) WithLogger(
	logger zerolog.Logger,
) OccupancyAnalyzerBuilder {
	b.logger = logger
	return b
}

// WithPeriod reports the average occupancy of the last period cycles every
// period cycles. Zero disables periodic reports.
func (b OccupancyAnalyzerBuilder) WithPeriod(
	period uint64,
) OccupancyAnalyzerBuilder {
	b.period = period
	return b
}

// WithReportAtExit logs the final report when the program exits.
func (b OccupancyAnalyzerBuilder) WithReportAtExit() OccupancyAnalyzerBuilder {
	b.reportAtExit = true
	return b
}

// Build creates the OccupancyAnalyzer.
func (b OccupancyAnalyzerBuilder) Build() *OccupancyAnalyzer {
	a := &OccupancyAnalyzer{
		logger: b.logger,
		period: b.period,
		byName: make(map[string]*storageInfo),
	}

	if b.reportAtExit {
		atexit.Register(a.Report)
	}

	return a
}

// Watch starts sampling a storage. Watching the same storage twice has no
// effect.
func (a *OccupancyAnalyzer) Watch(s Storage) {
	if _, found := a.byName[s.Name()]; found {
		return
	}

	info := &storageInfo{storage: s}
	a.storages = append(a.storages, info)
	a.byName[s.Name()] = info
}

// WatchComponents watches every component that is a Storage and returns how
// many were found.
func (a *OccupancyAnalyzer) WatchComponents(components []sim.Component) int {
	n := 0

	for _, c := range components {
		if s, ok := c.(Storage); ok {
			a.Watch(s)
			n++
		}
	}

	return n
}

// Func samples the storages after each tick.
func (a *OccupancyAnalyzer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterTick {
		return
	}

	for _, s := range a.storages {
		s.sample()
	}

	cycle, ok := ctx.Item.(sim.VTimeInCycle)
	if !ok || a.period == 0 || uint64(cycle)%a.period != 0 {
		return
	}

	for _, s := range a.storages {
		a.logger.Debug().
			Str("storage", s.storage.Name()).
			Uint64("cycle", uint64(cycle)).
			Float64("period_average", s.periodAverage()).
			Msg("occupancy")

		s.periodCycles = 0
		s.periodLevelSum = 0
	}
}

// Stats returns the summary of the named storage.
func (a *OccupancyAnalyzer) Stats(name string) (StorageStats, bool) {
	info, found := a.byName[name]
	if !found {
		return StorageStats{}, false
	}

	return info.stats(), true
}

// Entries returns the summaries of all storages, the most utilized first.
func (a *OccupancyAnalyzer) Entries() []StorageStats {
	entries := make([]StorageStats, 0, len(a.storages))
	for _, s := range a.storages {
		entries = append(entries, s.stats())
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ui, uj := entries[i].Utilization(), entries[j].Utilization()
		if ui != uj {
			return ui > uj
		}

		return entries[i].Name < entries[j].Name
	})

	return entries
}

// Bottleneck returns the most utilized storage. The second result is false
// if nothing is watched.
func (a *OccupancyAnalyzer) Bottleneck() (StorageStats, bool) {
	entries := a.Entries()
	if len(entries) == 0 {
		return StorageStats{}, false
	}

	return entries[0], true
}

// Report logs the summary of every storage.
func (a *OccupancyAnalyzer) Report() {
	for _, e := range a.Entries() {
		a.logger.Info().
			Str("storage", e.Name).
			Int("capacity", e.Capacity).
			Int("current", e.Current).
			Float64("average", e.Average).
			Float64("full_fraction", e.FullFraction).
			Msg("occupancy")
	}
}
