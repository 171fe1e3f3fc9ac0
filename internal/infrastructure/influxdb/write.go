package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementPlayback = "audio_playback"
	MeasurementBus      = "audio_bus"
	MeasurementEngine   = "audio_engine"
)

// PlaybackEvent is one relayed core event: a play/stop, a fired progress
// watch, a finished fade.
type PlaybackEvent struct {
	Sound    string
	Selector string
	Event    string
	// Value is event specific: the threshold for progress, the end value
	// for a fade, the position for play/stop.
	Value float64
	At    time.Time
}

// EngineStats is a periodic sample of the engine's bookkeeping.
type EngineStats struct {
	Sounds  int
	Watches int
	Lerps   int
	Timers  int
	At      time.Time
}

func playbackPoint(e PlaybackEvent) *write.Point {
	return write.NewPoint(MeasurementPlayback,
		map[string]string{"sound": e.Sound, "selector": e.Selector, "event": e.Event},
		map[string]any{"value": e.Value},
		stamp(e.At))
}

func busPoint(bus, param string, value float64, at time.Time) *write.Point {
	return write.NewPoint(MeasurementBus,
		map[string]string{"bus": bus, "param": param},
		map[string]any{"value": value},
		stamp(at))
}

func enginePoint(s EngineStats) *write.Point {
	return write.NewPoint(MeasurementEngine,
		nil,
		map[string]any{
			"sounds":  s.Sounds,
			"watches": s.Watches,
			"lerps":   s.Lerps,
			"timers":  s.Timers,
		},
		stamp(s.At))
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

// WritePlayback queues a playback event. Dropped while disconnected.
func (c *Client) WritePlayback(e PlaybackEvent) {
	c.writePoint(playbackPoint(e))
}

// WriteBusValue queues a bus parameter sample.
func (c *Client) WriteBusValue(bus, param string, value float64) {
	c.writePoint(busPoint(bus, param, value, time.Time{}))
}

// WriteEngineStats queues an engine sample.
func (c *Client) WriteEngineStats(s EngineStats) {
	c.writePoint(enginePoint(s))
}

func (c *Client) writePoint(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}
