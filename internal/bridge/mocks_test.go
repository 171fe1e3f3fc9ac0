package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-audio/internal/catalog"
	"github.com/nerrad567/gray-logic-audio/internal/host"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-audio/internal/playback"
	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

type message struct {
	topic    string
	payload  []byte
	retained bool
}

type mockPublisher struct {
	mu       sync.Mutex
	messages []message
	handlers map[string]mqtt.MessageHandler
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{handlers: make(map[string]mqtt.MessageHandler)}
}

func (p *mockPublisher) Publish(topic string, payload []byte, _ byte, retained bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message{topic, payload, retained})
	return nil
}

func (p *mockPublisher) PublishJSON(topic string, v any, retained bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.Publish(topic, data, 1, retained)
}

func (p *mockPublisher) Subscribe(topic string, _ byte, h mqtt.MessageHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[topic] = h
	return nil
}

func (p *mockPublisher) Unsubscribe(topic string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.handlers, topic)
	return nil
}

func (p *mockPublisher) on(topic string) []message {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []message
	for _, m := range p.messages {
		if m.topic == topic {
			out = append(out, m)
		}
	}
	return out
}

type broadcast struct {
	channel string
	payload any
}

type mockHub struct {
	mu   sync.Mutex
	sent []broadcast
}

func (h *mockHub) Broadcast(channel string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, broadcast{channel, payload})
}

func (h *mockHub) count(channel string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, b := range h.sent {
		if b.channel == channel {
			n++
		}
	}
	return n
}

type mockTelemetry struct {
	playback []influxdb.PlaybackEvent
	bus      int
	engine   []influxdb.EngineStats
}

func (m *mockTelemetry) WritePlayback(e influxdb.PlaybackEvent)  { m.playback = append(m.playback, e) }
func (m *mockTelemetry) WriteBusValue(string, string, float64)   { m.bus++ }
func (m *mockTelemetry) WriteEngineStats(s influxdb.EngineStats) { m.engine = append(m.engine, s) }

type mockHistory struct {
	mu     sync.Mutex
	events []catalog.Event
	prunes int
}

func (h *mockHistory) Record(_ context.Context, e *catalog.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, *e)
	return nil
}

func (h *mockHistory) List(context.Context, string, int) ([]catalog.Event, error) {
	return nil, nil
}

func (h *mockHistory) Prune(context.Context, time.Time) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.prunes++
	return 0, nil
}

func (h *mockHistory) kinds() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.Kind + ":" + e.Detail
	}
	return out
}

// inlineExec runs commands on the calling goroutine, standing in for the
// loop.
type inlineExec struct{}

func (inlineExec) Do(_ context.Context, fn func()) error {
	fn()
	return nil
}

type fixture struct {
	mgr       *sound.Manager
	bridge    *Bridge
	pub       *mockPublisher
	hub       *mockHub
	telemetry *mockTelemetry
	history   *mockHistory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mgr := sound.NewManager(sound.Options{Host: host.NewScene(nil)})
	dev := playback.New()
	dev.SetAsset(&sound.Asset{Path: "sfx/door.wav", Length: 2})
	if code := mgr.AddSound("door", dev); code != sound.OK {
		t.Fatalf("AddSound() = %v", code)
	}

	f := &fixture{
		mgr:       mgr,
		pub:       newMockPublisher(),
		hub:       &mockHub{},
		telemetry: &mockTelemetry{},
		history:   &mockHistory{},
	}
	f.bridge = New(Options{
		Commands:      mgr,
		Executor:      inlineExec{},
		Stats:         mgr.Stats,
		Publisher:     f.pub,
		Hub:           f.hub,
		Telemetry:     f.telemetry,
		History:       f.history,
		StatsInterval: time.Second,
	})
	return f
}
