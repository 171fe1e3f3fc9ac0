package bridge

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-audio/internal/catalog"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

// WebSocket channels the bridge broadcasts on.
const (
	ChannelChanged  = "sound.changed"
	ChannelProgress = "sound.progress"
	ChannelAdded    = "sound.added"
	ChannelRemoved  = "sound.removed"
	ChannelBus      = "bus.changed"
	ChannelStats    = "engine.stats"
)

const (
	defaultBuffer        = 1024
	defaultStatsInterval = 10 * time.Second
	pruneInterval        = time.Hour
	sinkTimeout          = 5 * time.Second
)

// Logger is the logging dependency.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Publisher is the MQTT client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishJSON(topic string, v any, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Broadcaster is the WebSocket hub.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// Telemetry is the InfluxDB client.
type Telemetry interface {
	WritePlayback(e influxdb.PlaybackEvent)
	WriteBusValue(bus, param string, value float64)
	WriteEngineStats(s influxdb.EngineStats)
}

// Executor runs functions on the loop goroutine.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

// Options configures a Bridge. Commands and Executor are required; every
// sink may be nil.
type Options struct {
	Commands  sound.Commands
	Executor  Executor
	Stats     func() sound.Stats
	Publisher Publisher
	Hub       Broadcaster
	Telemetry Telemetry
	History   catalog.History
	Logger    Logger
	// Retention is how long history is kept. Zero disables pruning.
	Retention time.Duration
	// StatsInterval is the engine stats sampling period.
	StatsInterval time.Duration
	// Buffer bounds the outbound queue.
	Buffer int
}

type eventKind int

const (
	evState eventKind = iota
	evProgress
	evBus
	evStats
	evAdded
	evRemoved
)

type event struct {
	kind      eventKind
	sound     string
	sel       sound.Selector
	state     sound.SoundState
	threshold float64
	bus       string
	param     string
	value     float64
	stats     sound.Stats
	at        time.Time
}

// StatePayload is published after every change.
type StatePayload struct {
	Sound     string           `json:"sound"`
	Selector  string           `json:"selector"`
	State     sound.SoundState `json:"state"`
	Timestamp time.Time        `json:"timestamp"`
}

// ProgressPayload is published when a progress watch fires.
type ProgressPayload struct {
	Sound     string    `json:"sound"`
	Selector  string    `json:"selector"`
	Threshold float64   `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
}

// BusPayload is published when a bus parameter changes.
type BusPayload struct {
	Bus       string    `json:"bus"`
	Param     string    `json:"param"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Bridge relays manager events to the configured sinks and runs inbound
// commands.
type Bridge struct {
	cmds      sound.Commands
	exec      Executor
	stats     func() sound.Stats
	pub       Publisher
	hub       Broadcaster
	telemetry Telemetry
	history   catalog.History
	logger    Logger

	retention     time.Duration
	statsInterval time.Duration

	events  chan event
	dropped atomic.Uint64

	// Loop goroutine only.
	listeners  map[string]string
	sinceStats time.Duration

	// Run goroutine only.
	playing map[string]bool
}

// New creates a Bridge. Call Run to start delivering events.
func New(opts Options) *Bridge {
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Buffer < 1 {
		opts.Buffer = defaultBuffer
	}
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = defaultStatsInterval
	}
	return &Bridge{
		cmds:          opts.Commands,
		exec:          opts.Executor,
		stats:         opts.Stats,
		pub:           opts.Publisher,
		hub:           opts.Hub,
		telemetry:     opts.Telemetry,
		history:       opts.History,
		logger:        opts.Logger,
		retention:     opts.Retention,
		statsInterval: opts.StatsInterval,
		events:        make(chan event, opts.Buffer),
		listeners:     make(map[string]string),
		playing:       make(map[string]bool),
	}
}

// Dropped returns how many events were discarded because the queue was
// full.
func (b *Bridge) Dropped() uint64 {
	return b.dropped.Load()
}

// Track subscribes to change notifications for name and queues its
// current state. Loop goroutine only.
func (b *Bridge) Track(name string) sound.Code {
	if _, ok := b.listeners[name]; ok {
		return sound.AlreadySubscribed
	}
	id, code := b.cmds.SubscribeChanged(name, b.onChange)
	if code != sound.OK {
		return code
	}
	b.listeners[name] = id
	b.enqueue(event{kind: evAdded, sound: name})
	if st, code := b.cmds.Snapshot(name); code == sound.OK {
		b.enqueue(event{kind: evState, sound: name, sel: sound.Parent, state: st})
	}
	return sound.OK
}

// Untrack drops the change subscription for name. Call it before
// RemoveSound. Loop goroutine only.
func (b *Bridge) Untrack(name string) {
	id, ok := b.listeners[name]
	if !ok {
		return
	}
	delete(b.listeners, name)
	b.cmds.UnsubscribeChanged(name, id)
	b.enqueue(event{kind: evRemoved, sound: name})
}

// Tracked reports whether name has a change subscription. Loop goroutine
// only.
func (b *Bridge) Tracked(name string) bool {
	_, ok := b.listeners[name]
	return ok
}

func (b *Bridge) onChange(name string, sel sound.Selector) {
	st, code := b.cmds.Snapshot(name)
	if code != sound.OK {
		return
	}
	b.enqueue(event{kind: evState, sound: name, sel: sel, state: st})
}

// Progress returns a progress callback that relays the firing and answers
// resp.
func (b *Bridge) Progress(resp sound.Response) sound.ProgressFunc {
	return func(name string, threshold float64, sel sound.Selector) sound.Response {
		b.enqueue(event{kind: evProgress, sound: name, sel: sel, threshold: threshold})
		return resp
	}
}

// BusChanged is the mixer publisher.
func (b *Bridge) BusChanged(bus, param string, value float64) {
	b.enqueue(event{kind: evBus, bus: bus, param: param, value: value})
}

// Tick samples engine stats every StatsInterval. Register it with
// Loop.OnTick.
func (b *Bridge) Tick(dt time.Duration) {
	if b.stats == nil {
		return
	}
	b.sinceStats += dt
	if b.sinceStats < b.statsInterval {
		return
	}
	b.sinceStats = 0
	b.enqueue(event{kind: evStats, stats: b.stats()})
}

func (b *Bridge) enqueue(e event) {
	e.at = time.Now().UTC()
	select {
	case b.events <- e:
	default:
		if n := b.dropped.Add(1); n == 1 || n%100 == 0 {
			b.logger.Warn("bridge queue full, events dropped", "dropped", n)
		}
	}
}

// Run delivers queued events and prunes history until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	var prune <-chan time.Time
	if b.history != nil && b.retention > 0 {
		b.prune(ctx)
		t := time.NewTicker(pruneInterval)
		defer t.Stop()
		prune = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-b.events:
			b.deliver(ctx, e)
		case <-prune:
			b.prune(ctx)
		}
	}
}

// Drain delivers everything already queued. Tests and shutdown use it.
func (b *Bridge) Drain(ctx context.Context) {
	for {
		select {
		case e := <-b.events:
			b.deliver(ctx, e)
		default:
			return
		}
	}
}

func (b *Bridge) deliver(ctx context.Context, e event) {
	switch e.kind {
	case evState:
		b.deliverState(ctx, e)
	case evProgress:
		b.deliverProgress(ctx, e)
	case evBus:
		b.deliverBus(e)
	case evStats:
		b.deliverStats(e)
	case evAdded:
		b.broadcast(ChannelAdded, map[string]string{"sound": e.sound})
		b.record(ctx, catalog.Event{Sound: e.sound, Selector: sound.Parent.String(), Kind: catalog.EventAdded, RecordedAt: e.at})
	case evRemoved:
		for key := range b.playing {
			if soundOf(key) == e.sound {
				delete(b.playing, key)
			}
		}
		if b.pub != nil {
			// An empty retained message clears the broker's copy.
			if err := b.pub.Publish(mqtt.Topics{}.State(e.sound), nil, 1, true); err != nil {
				b.logger.Debug("clearing retained state failed", "sound", e.sound, "error", err)
			}
		}
		b.broadcast(ChannelRemoved, map[string]string{"sound": e.sound})
		b.record(ctx, catalog.Event{Sound: e.sound, Selector: sound.Parent.String(), Kind: catalog.EventRemoved, RecordedAt: e.at})
	}
}

func (b *Bridge) deliverState(ctx context.Context, e event) {
	payload := StatePayload{Sound: e.sound, Selector: e.sel.String(), State: e.state, Timestamp: e.at}
	b.publishJSON(mqtt.Topics{}.State(e.sound), payload, true)
	b.broadcast(ChannelChanged, payload)

	for sel, dev := range devicesFor(e.state, e.sel) {
		key := e.sound + "/" + sel
		was, seen := b.playing[key]
		if seen && was == dev.Playing {
			continue
		}
		b.playing[key] = dev.Playing
		if !seen && !dev.Playing {
			continue
		}
		kind := "stop"
		if dev.Playing {
			kind = "play"
		}
		if b.telemetry != nil {
			b.telemetry.WritePlayback(influxdb.PlaybackEvent{
				Sound: e.sound, Selector: sel, Event: kind, Value: dev.Position, At: e.at,
			})
		}
		b.record(ctx, catalog.Event{Sound: e.sound, Selector: sel, Kind: catalog.EventChanged, Detail: kind, RecordedAt: e.at})
	}
}

// devicesFor returns the device states a change on sel touched, keyed by
// selector name. A removed child reports as stopped.
func devicesFor(st sound.SoundState, sel sound.Selector) map[string]sound.DeviceState {
	out := make(map[string]sound.DeviceState)
	switch sel {
	case sound.Parent:
		out[sel.String()] = st.Parent
	case sound.All:
		out[sound.Parent.String()] = st.Parent
		for k, d := range st.Children {
			out[k] = d
		}
	default:
		out[sel.String()] = st.Children[sel.String()]
	}
	return out
}

func soundOf(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			return key[:i]
		}
	}
	return key
}

func (b *Bridge) deliverProgress(ctx context.Context, e event) {
	payload := ProgressPayload{Sound: e.sound, Selector: e.sel.String(), Threshold: e.threshold, Timestamp: e.at}
	b.publishJSON(mqtt.Topics{}.Progress(e.sound), payload, false)
	b.broadcast(ChannelProgress, payload)
	if b.telemetry != nil {
		b.telemetry.WritePlayback(influxdb.PlaybackEvent{
			Sound: e.sound, Selector: e.sel.String(), Event: catalog.EventProgress, Value: e.threshold, At: e.at,
		})
	}
	b.record(ctx, catalog.Event{
		Sound:      e.sound,
		Selector:   e.sel.String(),
		Kind:       catalog.EventProgress,
		Detail:     strconv.FormatFloat(e.threshold, 'f', -1, 64),
		RecordedAt: e.at,
	})
}

func (b *Bridge) deliverBus(e event) {
	payload := BusPayload{Bus: e.bus, Param: e.param, Value: e.value, Timestamp: e.at}
	b.publishJSON(mqtt.Topics{}.Bus(e.bus, e.param), payload, true)
	b.broadcast(ChannelBus, payload)
	if b.telemetry != nil {
		b.telemetry.WriteBusValue(e.bus, e.param, e.value)
	}
}

func (b *Bridge) deliverStats(e event) {
	b.broadcast(ChannelStats, e.stats)
	if b.telemetry != nil {
		b.telemetry.WriteEngineStats(influxdb.EngineStats{
			Sounds:  e.stats.Sounds,
			Watches: e.stats.Watches,
			Lerps:   e.stats.Lerps,
			Timers:  e.stats.Timers,
			At:      e.at,
		})
	}
}

func (b *Bridge) publishJSON(topic string, v any, retained bool) {
	if b.pub == nil {
		return
	}
	if err := b.pub.PublishJSON(topic, v, retained); err != nil {
		b.logger.Debug("mqtt publish failed", "topic", topic, "error", err)
	}
}

func (b *Bridge) broadcast(channel string, payload any) {
	if b.hub != nil {
		b.hub.Broadcast(channel, payload)
	}
}

func (b *Bridge) record(ctx context.Context, ev catalog.Event) {
	if b.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, sinkTimeout)
	defer cancel()
	if err := b.history.Record(ctx, &ev); err != nil {
		b.logger.Warn("recording playback history failed", "sound", ev.Sound, "error", err)
	}
}

func (b *Bridge) prune(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, sinkTimeout)
	defer cancel()
	n, err := b.history.Prune(ctx, time.Now().Add(-b.retention))
	if err != nil {
		b.logger.Warn("pruning playback history failed", "error", err)
		return
	}
	if n > 0 {
		b.logger.Info("pruned playback history", "deleted", n)
	}
}
