package sound

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ─── Mock Dependencies ──────────────────────────────────────────────────────

// fakeDevice is an in-memory Device whose playback only moves when
// advance is called.
type fakeDevice struct {
	asset   *Asset
	volume  float64
	pitch   float64
	muted   bool
	looping bool
	playing bool
	paused  bool
	pos     float64
	spatial Spatial
	bus     *Bus
}

func newFakeDevice(length float64) *fakeDevice {
	d := &fakeDevice{volume: 1, pitch: 1}
	if length > 0 {
		d.asset = &Asset{Path: "clip.mp3", Length: length, SampleRate: 44100, Samples: int64(length * 44100)}
	}
	return d
}

func (d *fakeDevice) Asset() *Asset         { return d.asset }
func (d *fakeDevice) SetAsset(a *Asset)     { d.asset = a }
func (d *fakeDevice) Volume() float64       { return d.volume }
func (d *fakeDevice) SetVolume(v float64)   { d.volume = v }
func (d *fakeDevice) Pitch() float64        { return d.pitch }
func (d *fakeDevice) SetPitch(p float64)    { d.pitch = p }
func (d *fakeDevice) Muted() bool           { return d.muted }
func (d *fakeDevice) SetMuted(m bool)       { d.muted = m }
func (d *fakeDevice) Looping() bool         { return d.looping }
func (d *fakeDevice) SetLooping(l bool)     { d.looping = l }
func (d *fakeDevice) Playing() bool         { return d.playing }
func (d *fakeDevice) Paused() bool          { return d.paused }
func (d *fakeDevice) Position() float64     { return d.pos }
func (d *fakeDevice) SetPosition(t float64) { d.pos = t }
func (d *fakeDevice) Spatial() Spatial      { return d.spatial }
func (d *fakeDevice) SetSpatial(s Spatial)  { d.spatial = s }
func (d *fakeDevice) Bus() *Bus             { return d.bus }
func (d *fakeDevice) SetBus(b *Bus)         { d.bus = b }

func (d *fakeDevice) Play() {
	d.playing = true
	d.paused = false
}

func (d *fakeDevice) Pause() {
	if d.playing {
		d.playing = false
		d.paused = true
	}
}

func (d *fakeDevice) Unpause() {
	if d.paused {
		d.paused = false
		d.playing = true
	}
}

func (d *fakeDevice) Stop() {
	d.playing = false
	d.paused = false
	d.pos = 0
}

func (d *fakeDevice) advance(dt time.Duration) {
	if !d.playing || d.asset == nil {
		return
	}
	length := d.asset.Length
	d.pos += dt.Seconds() * d.pitch
	switch {
	case d.pitch > 0 && d.pos >= length:
		if d.looping {
			d.pos = math.Mod(d.pos, length)
			return
		}
		d.pos = length
		d.playing = false
	case d.pitch < 0 && d.pos <= 0:
		if d.looping {
			d.pos = math.Mod(d.pos, length) + length
			return
		}
		d.pos = 0
		d.playing = false
	}
}

// fakeHost records node operations.
type fakeHost struct {
	nodes    map[NodeID]Placement
	devices  []*fakeDevice
	next     int
	spawned  int
	moved    int
	released int
	failMove bool
	// nilDevices makes NewDevice and Spawn hand out typed nil devices.
	nilDevices bool
}

func newFakeHost() *fakeHost {
	return &fakeHost{nodes: map[NodeID]Placement{"player": {}}}
}

func (h *fakeHost) NewDevice() Device {
	if h.nilDevices {
		return (*fakeDevice)(nil)
	}
	d := newFakeDevice(0)
	h.devices = append(h.devices, d)
	return d
}

func (h *fakeHost) Spawn(p Placement) (NodeID, Device, error) {
	if p.Target != "" {
		if _, ok := h.nodes[p.Target]; !ok {
			return "", nil, errors.New("host: unknown target")
		}
	}
	h.next++
	h.spawned++
	id := NodeID(fmt.Sprintf("node-%d", h.next))
	h.nodes[id] = p
	if h.nilDevices {
		return id, (*fakeDevice)(nil), nil
	}
	d := newFakeDevice(0)
	h.devices = append(h.devices, d)
	return id, d, nil
}

func (h *fakeHost) Move(node NodeID, p Placement) error {
	if h.failMove {
		return errors.New("host: move failed")
	}
	if _, ok := h.nodes[node]; !ok {
		return errors.New("host: unknown node")
	}
	h.moved++
	h.nodes[node] = p
	return nil
}

func (h *fakeHost) Release(node NodeID) {
	if _, ok := h.nodes[node]; ok {
		h.released++
		delete(h.nodes, node)
	}
}

func (h *fakeHost) HasNode(id NodeID) bool {
	_, ok := h.nodes[id]
	return ok
}

// advanceAll moves every device the host created plus extra.
func (h *fakeHost) advanceAll(dt time.Duration, extra ...*fakeDevice) {
	for _, d := range h.devices {
		d.advance(dt)
	}
	for _, d := range extra {
		d.advance(dt)
	}
}

// fakeLoader resolves a fixed set of paths.
type fakeLoader map[string]float64

func (l fakeLoader) Load(path string) (*Asset, error) {
	length, ok := l[path]
	if !ok {
		return nil, errors.New("media: not found")
	}
	return &Asset{Path: path, Length: length, SampleRate: 44100}, nil
}

// fakeBuses exposes parameters per bus with defaults.
type fakeBuses struct {
	values   map[string]float64
	defaults map[string]float64
}

func newFakeBuses() *fakeBuses {
	return &fakeBuses{
		values:   map[string]float64{"sfx/volume": 0},
		defaults: map[string]float64{"sfx/volume": 0},
	}
}

func (b *fakeBuses) Get(bus, param string) (float64, bool) {
	v, ok := b.values[bus+"/"+param]
	return v, ok
}

func (b *fakeBuses) Set(bus, param string, v float64) bool {
	key := bus + "/" + param
	if _, ok := b.values[key]; !ok {
		return false
	}
	b.values[key] = v
	return true
}

func (b *fakeBuses) Clear(bus, param string) bool {
	key := bus + "/" + param
	def, ok := b.defaults[key]
	if !ok {
		return false
	}
	b.values[key] = def
	return true
}

// recordingLogger captures log calls by level.
type recordingLogger struct {
	debug, info, warn, errs []string
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.debug = append(l.debug, msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.info = append(l.info, msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.warn = append(l.warn, msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.errs = append(l.errs, msg) }

// ─── Helpers ────────────────────────────────────────────────────────────────

const frame = 250 * time.Millisecond

// setupManager returns a manager with a host, loader and buses plus a
// registered one-second clip named "door".
func setupManager() (*Manager, *fakeHost, *fakeDevice) {
	host := newFakeHost()
	mgr := NewManager(Options{
		Host:   host,
		Loader: fakeLoader{"sfx/door.mp3": 1, "sfx/bell.wav": 2},
		Buses:  newFakeBuses(),
	})
	dev := newFakeDevice(1)
	dev.spatial.Blend = 1
	mgr.AddSound("door", dev)
	return mgr, host, dev
}

// step advances devices then the manager by one frame.
func step(mgr *Manager, host *fakeHost, dev *fakeDevice, n int) {
	for i := 0; i < n; i++ {
		host.advanceAll(frame, dev)
		mgr.Tick(frame)
	}
}
