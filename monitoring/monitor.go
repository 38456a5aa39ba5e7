// Package monitoring turns a running simulation into an HTTP server that can
// pause, resume and inspect the circuit.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"reflect"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unsafe"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/elastic/monitoring/web"
	"github.com/sarchlab/elastic/sim"
)

// Monitor can turn a simulation into a server and allows external monitoring
// and controlling of the simulation.
type Monitor struct {
	simulation *sim.Simulation
	portNumber int
	logger     zerolog.Logger

	runLock sync.Mutex
	running bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor for a simulation.
func NewMonitor(simulation *sim.Simulation) *Monitor {
	return &Monitor{
		simulation: simulation,
		logger:     zerolog.Nop(),
	}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// replaced by a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		m.logger.Warn().
			Int("port", portNumber).
			Msg("port not allowed for the monitoring server, using a random port")

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger of the monitor.
func (m *Monitor) WithLogger(logger zerolog.Logger) *Monitor {
	m.logger = logger
	return m
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		id:        sim.GetIDGenerator().Generate(),
		name:      name,
		startTime: time.Now(),
		total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the list of shown bars.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the HTTP routes of the monitor.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/step", m.step)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/wires", m.listWires)
	r.HandleFunc("/api/wire/{name}", m.wireValue)
	r.HandleFunc("/api/hangdetector/buffers", m.hangDetectorBuffers)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.portNumber))
	if err != nil {
		return "", errors.Wrap(err, "start monitoring server")
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	m.logger.Info().Str("url", url).Msg("monitoring simulation")

	go func() {
		err := http.Serve(listener, m.Handler())
		if err != nil {
			m.logger.Error().Err(err).Msg("monitoring server stopped")
		}
	}()

	return url, nil
}

// OpenBrowser opens the monitor page in the default browser.
func (m *Monitor) OpenBrowser(url string) error {
	browser.Stdout = os.Stderr

	return errors.Wrap(browser.OpenURL(url), "open browser")
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.simulation.Engine().Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.simulation.Engine().Continue()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.simulation.Engine().CurrentTime()
	fmt.Fprintf(w, "{\"now\":%d}", now)
}

func cyclesParam(r *http.Request, def uint64) (uint64, error) {
	str := r.URL.Query().Get("cycles")
	if str == "" {
		return def, nil
	}

	return strconv.ParseUint(str, 10, 64)
}

func (m *Monitor) run(w http.ResponseWriter, r *http.Request) {
	cycles, err := cyclesParam(r, 1000)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.runLock.Lock()
	if m.running {
		m.runLock.Unlock()
		http.Error(w, "simulation is already running", http.StatusConflict)

		return
	}

	m.running = true
	m.runLock.Unlock()

	go func() {
		defer func() {
			m.runLock.Lock()
			m.running = false
			m.runLock.Unlock()
		}()

		err := m.simulation.Engine().Run(context.Background(), cycles)
		if err != nil {
			m.logger.Error().Err(err).Msg("run failed")
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

func (m *Monitor) step(w http.ResponseWriter, r *http.Request) {
	cycles, err := cyclesParam(r, 1)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.runLock.Lock()
	defer m.runLock.Unlock()

	if m.running {
		http.Error(w, "simulation is already running", http.StatusConflict)
		return
	}

	for i := uint64(0); i < cycles; i++ {
		_, err := m.simulation.Engine().Step()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	m.now(w, r)
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	m.simulation.IndexEngineComponents()

	names := make([]string, 0)
	for _, c := range m.simulation.Components() {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	var err error
	m.simulation.Engine().Inspect(func() { err = serializer.Serialize(w) })
	if err != nil {
		m.logger.Error().Err(err).Str("component", name).Msg("serialize")
	}
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.simulation.Engine().Inspect(func() { err = serializer.Serialize(w) })
	if err != nil {
		m.logger.Error().Err(err).Str("component", req.CompName).Msg("serialize")
	}
}

type wireRsp struct {
	Name  string `json:"name"`
	Width int    `json:"width"`
	Value string `json:"value"`
}

func makeWireRsp(wire *sim.Wire) wireRsp {
	return wireRsp{
		Name:  wire.Name(),
		Width: wire.Width(),
		Value: wire.Get().String(),
	}
}

func (m *Monitor) listWires(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	engine := m.simulation.Engine()
	rsp := make([]wireRsp, 0)

	engine.Inspect(func() {
		for _, wire := range engine.Net().Wires() {
			if strings.HasPrefix(wire.Name(), prefix) {
				rsp = append(rsp, makeWireRsp(wire))
			}
		}
	})

	writeJSON(w, rsp)
}

func (m *Monitor) wireValue(w http.ResponseWriter, r *http.Request) {
	wire := m.simulation.GetWireByName(mux.Vars(r)["name"])
	if wire == nil {
		http.Error(w, "Wire not found", http.StatusNotFound)
		return
	}

	var rsp wireRsp
	m.simulation.Engine().Inspect(func() { rsp = makeWireRsp(wire) })

	writeJSON(w, rsp)
}

// A storageLevel is anything that holds words and can tell how many.
type storageLevel struct {
	Name     string `json:"buffer"`
	Level    int    `json:"level"`
	Capacity int    `json:"cap"`
}

func (l storageLevel) percent() float64 {
	if l.Capacity == 0 {
		return 0
	}

	return float64(l.Level) / float64(l.Capacity)
}

type occupancyReporter interface {
	Name() string
	Occupancy() int
	Capacity() int
}

func (m *Monitor) collectLevels() []storageLevel {
	m.simulation.IndexEngineComponents()

	var levels []storageLevel

	m.simulation.Engine().Inspect(func() {
		for _, c := range m.simulation.Components() {
			if o, ok := c.(occupancyReporter); ok {
				levels = append(levels,
					storageLevel{o.Name(), o.Occupancy(), o.Capacity()})
			}

			for _, b := range componentBuffers(c) {
				levels = append(levels,
					storageLevel{b.Name(), b.Size(), b.Capacity()})
			}
		}

		for _, p := range m.simulation.Elements() {
			if b, ok := p.(sim.Buffer); ok {
				levels = append(levels,
					storageLevel{b.Name(), b.Size(), b.Capacity()})
			}
		}
	})

	return levels
}

// componentBuffers finds the sim.Buffer fields of a component, exported or
// not.
func componentBuffers(c any) []sim.Buffer {
	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil
	}

	v = v.Elem()
	bufferType := reflect.TypeOf((*sim.Buffer)(nil)).Elem()

	var buffers []sim.Buffer

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Type() != bufferType || field.IsNil() {
			continue
		}

		buf := reflect.NewAt(
			field.Type(),
			unsafe.Pointer(field.UnsafeAddr()),
		).Elem().Interface().(sim.Buffer)
		buffers = append(buffers, buf)
	}

	return buffers
}

func (m *Monitor) hangDetectorBuffers(w http.ResponseWriter, r *http.Request) {
	sortMethod, limit, offset, err := buffersParseParams(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error: %s", err), http.StatusBadRequest)
		return
	}

	writeJSON(w, sortAndSelectLevels(m.collectLevels(), sortMethod, limit, offset))
}

func buffersParseParams(
	r *http.Request,
) (sortMethod string, limit, offset int, err error) {
	sortMethod = r.URL.Query().Get("sort")
	if sortMethod == "" {
		sortMethod = "percent"
	}

	if sortMethod != "level" && sortMethod != "percent" {
		return "", 0, 0, errors.Errorf(
			"invalid sort method: %s. Allowed values are `level` and `percent`",
			sortMethod)
	}

	limit, err = intParam(r, "limit")
	if err != nil {
		return "", 0, 0, err
	}

	offset, err = intParam(r, "offset")
	if err != nil {
		return "", 0, 0, err
	}

	return sortMethod, limit, offset, nil
}

func intParam(r *http.Request, key string) (int, error) {
	str := r.URL.Query().Get(key)
	if str == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(str)
	if err != nil || n < 0 {
		return 0, errors.Errorf("invalid %s: %q", key, str)
	}

	return n, nil
}

// sortAndSelectLevels orders the levels, fullest first, and returns a page.
// A zero limit returns everything after the offset.
func sortAndSelectLevels(
	levels []storageLevel,
	sortMethod string,
	limit, offset int,
) []storageLevel {
	sorted := make([]storageLevel, len(levels))
	copy(sorted, levels)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]

		if sortMethod == "level" {
			if a.Level != b.Level {
				return a.Level > b.Level
			}

			return a.percent() > b.percent()
		}

		if a.percent() != b.percent() {
			return a.percent() > b.percent()
		}

		return a.Level > b.Level
	})

	if offset > len(sorted) {
		offset = len(sorted)
	}

	end := len(sorted)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return sorted[offset:end]
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) sim.Component {
	m.simulation.IndexEngineComponents()

	component := m.simulation.GetComponentByName(name)
	if component == nil {
		http.Error(w, "Component not found", http.StatusNotFound)
	}

	return component
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	now := time.Now()
	rsps := make([]progressRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		rsps = append(rsps, b.snapshot(now))
	}

	writeJSON(w, rsps)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	_, _ = w.Write(data)
}
