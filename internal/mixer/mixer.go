package mixer

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/config"
)

var (
	// ErrBusExists is returned when declaring a bus twice.
	ErrBusExists = errors.New("mixer: bus already declared")
	// ErrEmptyName is returned for a bus or parameter without a name.
	ErrEmptyName = errors.New("mixer: empty name")
)

// Logger is the logging dependency.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Publisher is told about every parameter change. It runs on the caller's
// goroutine and must not block.
type Publisher func(bus, param string, value float64)

type param struct {
	value float64
	def   float64
}

// Mixer stores the exposed parameters of every declared bus. Only declared
// parameters can be read or written; anything else reports false, which
// the sound manager surfaces as MixerNotExposed.
//
// Mixer is safe for concurrent use.
type Mixer struct {
	mu        sync.RWMutex
	buses     map[string]map[string]*param
	publisher Publisher
	logger    Logger
}

// New returns an empty mixer.
func New() *Mixer {
	return &Mixer{
		buses:  make(map[string]map[string]*param),
		logger: noopLogger{},
	}
}

// FromConfig declares every bus in the mixer section.
func FromConfig(cfg config.MixerConfig) (*Mixer, error) {
	m := New()
	for _, b := range cfg.Buses {
		if err := m.Declare(b.Name, b.Params); err != nil {
			return nil, fmt.Errorf("declaring bus %q: %w", b.Name, err)
		}
	}
	return m, nil
}

// SetLogger replaces the logger.
func (m *Mixer) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	m.mu.Lock()
	m.logger = l
	m.mu.Unlock()
}

// SetPublisher installs the change hook. Pass nil to remove it.
func (m *Mixer) SetPublisher(p Publisher) {
	m.mu.Lock()
	m.publisher = p
	m.mu.Unlock()
}

// Declare adds a bus exposing params, each starting at its default.
func (m *Mixer) Declare(bus string, params map[string]float64) error {
	if bus == "" {
		return ErrEmptyName
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.buses[bus]; ok {
		return ErrBusExists
	}
	exposed := make(map[string]*param, len(params))
	for name, def := range params {
		if name == "" {
			return ErrEmptyName
		}
		exposed[name] = &param{value: def, def: def}
	}
	m.buses[bus] = exposed
	return nil
}

func (m *Mixer) lookup(bus, name string) *param {
	if params, ok := m.buses[bus]; ok {
		return params[name]
	}
	return nil
}

// Get returns the current value of an exposed parameter.
func (m *Mixer) Get(bus, name string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p := m.lookup(bus, name)
	if p == nil {
		return 0, false
	}
	return p.value, true
}

// Set writes an exposed parameter.
func (m *Mixer) Set(bus, name string, v float64) bool {
	return m.write(bus, name, func(p *param) { p.value = v })
}

// Clear restores an exposed parameter to its default.
func (m *Mixer) Clear(bus, name string) bool {
	return m.write(bus, name, func(p *param) { p.value = p.def })
}

func (m *Mixer) write(bus, name string, fn func(*param)) bool {
	m.mu.Lock()
	p := m.lookup(bus, name)
	if p == nil {
		logger := m.logger
		m.mu.Unlock()
		logger.Warn("bus parameter not exposed", "bus", bus, "param", name)
		return false
	}
	before := p.value
	fn(p)
	after := p.value
	pub, logger := m.publisher, m.logger
	m.mu.Unlock()

	if after != before {
		logger.Debug("bus parameter changed", "bus", bus, "param", name, "value", after)
		if pub != nil {
			pub(bus, name, after)
		}
	}
	return true
}

// BusState is a read-only view of one bus.
type BusState struct {
	Name   string             `json:"name"`
	Params map[string]float64 `json:"params"`
}

// Buses returns every bus sorted by name.
func (m *Mixer) Buses() []BusState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]BusState, 0, len(m.buses))
	for name, params := range m.buses {
		st := BusState{Name: name, Params: make(map[string]float64, len(params))}
		for pname, p := range params {
			st.Params[pname] = p.value
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
