// Package config loads the parameters of a testbench run from a TOML file,
// an optional .env file and the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sarchlab/elastic/arbitration"
	"github.com/sarchlab/elastic/elastic"
	"github.com/sarchlab/elastic/merge"
	"github.com/sarchlab/elastic/sim"
)

// ErrInvalid is the cause of every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Scenario names.
const (
	ScenarioPipeline        = "pipeline"
	ScenarioJoin            = "join"
	ScenarioForkEager       = "fork-eager"
	ScenarioForkLazy        = "fork-lazy"
	ScenarioMergePriority   = "merge-priority"
	ScenarioMergeRoundRobin = "merge-roundrobin"
	ScenarioMergeOneHot     = "merge-onehot"
	ScenarioCredit          = "credit"
)

// Scenarios lists every scenario the testbench can build.
var Scenarios = []string{
	ScenarioPipeline,
	ScenarioJoin,
	ScenarioForkEager,
	ScenarioForkLazy,
	ScenarioMergePriority,
	ScenarioMergeRoundRobin,
	ScenarioMergeOneHot,
	ScenarioCredit,
}

// MaxWidth is the widest word a testbench source can generate.
const MaxWidth = 64

// Environment keys that override file values.
const (
	EnvMonitorPort = "ELASTIC_MONITOR_PORT"
	EnvRecordPath  = "ELASTIC_RECORD_PATH"
	EnvSeed        = "ELASTIC_SEED"
	EnvLogLevel    = "ELASTIC_LOG_LEVEL"
)

// Config holds the parameters of one testbench run.
type Config struct {
	Scenario   string
	Width      int
	NumPorts   int
	NumStage   int
	BufferKind string
	Policy     string
	Op         string
	MaxCredit  uint64

	Words             int
	MaxCycles         uint64
	Seed              int64
	SourceProbability float64
	SinkProbability   float64

	// ClockMHz converts cycle counts in reports into time and rates.
	ClockMHz float64

	LogLevel    string
	MonitorPort int
	RecordPath  string
	TraceStalls bool
}

// Default returns the configuration used when nothing else is given.
func Default() Config {
	return Config{
		Scenario:          ScenarioPipeline,
		Width:             16,
		NumPorts:          2,
		NumStage:          5,
		BufferKind:        elastic.KindElastic.String(),
		Policy:            "round-robin",
		Op:                merge.OpOr.String(),
		MaxCredit:         2,
		Words:             1000,
		MaxCycles:         1000000,
		Seed:              1,
		SourceProbability: 1,
		SinkProbability:   1,
		ClockMHz:          100,
		LogLevel:          zerolog.InfoLevel.String(),
	}
}

type fileConfig struct {
	Scenario          string  `toml:"scenario"`
	Width             int     `toml:"width"`
	NumPorts          int     `toml:"num_ports"`
	NumStage          int     `toml:"num_stage"`
	BufferKind        string  `toml:"buffer_kind"`
	Policy            string  `toml:"policy"`
	Op                string  `toml:"op"`
	MaxCredit         uint64  `toml:"max_credit"`
	Words             int     `toml:"words"`
	MaxCycles         uint64  `toml:"max_cycles"`
	Seed              int64   `toml:"seed"`
	SourceProbability float64 `toml:"source_probability"`
	SinkProbability   float64 `toml:"sink_probability"`
	ClockMHz          float64 `toml:"clock_mhz"`
	LogLevel          string  `toml:"log_level"`
	MonitorPort       int     `toml:"monitor_port"`
	RecordPath        string  `toml:"record_path"`
	TraceStalls       bool    `toml:"trace_stalls"`
}

// Decode overlays the keys defined in a TOML document onto base.
func Decode(data string, base Config) (Config, error) {
	var raw fileConfig

	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}

	return overlay(base, raw, meta)
}

// DecodeFile overlays the keys defined in a TOML file onto base.
func DecodeFile(path string, base Config) (Config, error) {
	var raw fileConfig

	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load config %s", path)
	}

	return overlay(base, raw, meta)
}

func overlay(cfg Config, raw fileConfig, meta toml.MetaData) (Config, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Wrapf(ErrInvalid, "unknown key %s", undecoded[0])
	}

	if meta.IsDefined("scenario") {
		cfg.Scenario = strings.TrimSpace(raw.Scenario)
	}

	if meta.IsDefined("width") {
		cfg.Width = raw.Width
	}

	if meta.IsDefined("num_ports") {
		cfg.NumPorts = raw.NumPorts
	}

	if meta.IsDefined("num_stage") {
		cfg.NumStage = raw.NumStage
	}

	if meta.IsDefined("buffer_kind") {
		cfg.BufferKind = strings.TrimSpace(raw.BufferKind)
	}

	if meta.IsDefined("policy") {
		cfg.Policy = strings.TrimSpace(raw.Policy)
	}

	if meta.IsDefined("op") {
		cfg.Op = strings.TrimSpace(raw.Op)
	}

	if meta.IsDefined("max_credit") {
		cfg.MaxCredit = raw.MaxCredit
	}

	if meta.IsDefined("words") {
		cfg.Words = raw.Words
	}

	if meta.IsDefined("max_cycles") {
		cfg.MaxCycles = raw.MaxCycles
	}

	if meta.IsDefined("seed") {
		cfg.Seed = raw.Seed
	}

	if meta.IsDefined("source_probability") {
		cfg.SourceProbability = raw.SourceProbability
	}

	if meta.IsDefined("sink_probability") {
		cfg.SinkProbability = raw.SinkProbability
	}

	if meta.IsDefined("clock_mhz") {
		cfg.ClockMHz = raw.ClockMHz
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if meta.IsDefined("monitor_port") {
		cfg.MonitorPort = raw.MonitorPort
	}

	if meta.IsDefined("record_path") {
		cfg.RecordPath = strings.TrimSpace(raw.RecordPath)
	}

	if meta.IsDefined("trace_stalls") {
		cfg.TraceStalls = raw.TraceStalls
	}

	return cfg, nil
}

// ApplyEnv overrides the configuration with the environment variables that
// lookup finds.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	if v, ok := lookup(EnvMonitorPort); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, errors.Wrapf(err, "parse %s", EnvMonitorPort)
		}

		cfg.MonitorPort = port
	}

	if v, ok := lookup(EnvRecordPath); ok {
		cfg.RecordPath = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvSeed); ok {
		seed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return Config{}, errors.Wrapf(err, "parse %s", EnvSeed)
		}

		cfg.Seed = seed
	}

	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = strings.TrimSpace(v)
	}

	return cfg, nil
}

// Load builds the configuration from the defaults, the TOML file at path (if
// path is not empty), the given .env files and the environment, and then
// validates it. Variables already set in the environment win over the .env
// files.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	var err error

	if path != "" {
		cfg, err = DecodeFile(path, cfg)
		if err != nil {
			return Config{}, err
		}
	}

	if len(envFiles) > 0 {
		err = godotenv.Load(envFiles...)
		if err != nil {
			return Config{}, errors.Wrap(err, "load env files")
		}
	}

	cfg, err = ApplyEnv(cfg, os.LookupEnv)
	if err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

func isScenario(name string) bool {
	for _, s := range Scenarios {
		if s == name {
			return true
		}
	}

	return false
}

func invalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalid, format, args...)
}

// Validate checks the configuration for values no scenario can run with.
func (c Config) Validate() error {
	if !isScenario(c.Scenario) {
		return invalid("unknown scenario %q", c.Scenario)
	}

	if c.Width <= 0 || c.Width > MaxWidth {
		return invalid("width %d is outside [1, %d]", c.Width, MaxWidth)
	}

	if c.NumPorts <= 0 {
		return invalid("num_ports must be positive")
	}

	if c.NumStage <= 0 {
		return invalid("num_stage must be positive")
	}

	if c.MaxCredit == 0 {
		return invalid("max_credit must be positive")
	}

	if c.Words <= 0 {
		return invalid("words must be positive")
	}

	if c.MaxCycles == 0 {
		return invalid("max_cycles must be positive")
	}

	if err := checkProbability("source_probability", c.SourceProbability); err != nil {
		return err
	}

	if err := checkProbability("sink_probability", c.SinkProbability); err != nil {
		return err
	}

	if !(c.ClockMHz > 0) {
		return invalid("clock_mhz must be positive")
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		return invalid("monitor_port %d is not a port", c.MonitorPort)
	}

	return c.checkNames()
}

func checkProbability(key string, p float64) error {
	if p < 0 || p > 1 {
		return invalid("%s %g is outside [0, 1]", key, p)
	}

	return nil
}

func (c Config) checkNames() error {
	if _, err := elastic.ParseKind(c.BufferKind); err != nil {
		return invalid("%s", err)
	}

	if _, err := arbitration.ParsePolicy(c.Policy); err != nil {
		return invalid("%s", err)
	}

	if _, err := merge.ParseBoolOp(c.Op); err != nil {
		return invalid("%s", err)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return invalid("%s", err)
	}

	return nil
}

// Kind returns the parsed buffer kind. It panics if the configuration was
// not validated.
func (c Config) Kind() elastic.Kind {
	kind, err := elastic.ParseKind(c.BufferKind)
	if err != nil {
		panic(err)
	}

	return kind
}

// BoolOp returns the parsed combine operator.
func (c Config) BoolOp() merge.BoolOp {
	op, err := merge.ParseBoolOp(c.Op)
	if err != nil {
		panic(err)
	}

	return op
}

// NewPolicy creates a fresh arbitration policy for the configured name.
func (c Config) NewPolicy() arbitration.Policy {
	p, err := arbitration.ParsePolicy(c.Policy)
	if err != nil {
		panic(err)
	}

	return p
}

// Freq returns the clock frequency.
func (c Config) Freq() sim.Freq {
	return sim.Freq(c.ClockMHz) * sim.MHz
}

// Level returns the parsed log level.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		panic(err)
	}

	return level
}
