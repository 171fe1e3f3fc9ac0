package sound

import (
	"math"
	"time"
)

// Options configures a Manager. Every field is optional; commands that need
// a missing collaborator fail with the matching code.
type Options struct {
	// Host spawns child nodes and devices. Without it, child, delayed and
	// progress commands report MissingParent.
	Host Host
	// Loader resolves media paths for ChangeClip and AddSoundFromPath.
	Loader Loader
	// Buses backs the mixer group commands.
	Buses BusBackend
	// MaxProgress overrides the exclusive progress threshold bound.
	MaxProgress float64
}

// Manager is the command façade over the registry. All methods must be
// called from the goroutine that calls Tick.
type Manager struct {
	registry    *Registry
	host        Host
	loader      Loader
	buses       BusBackend
	maxProgress float64

	watches *watchScheduler
	lerps   *interpolator
	timers  *timerQueue
	clock   time.Duration
}

// Stats summarises the manager's live state.
type Stats struct {
	Sounds  int           `json:"sounds"`
	Watches int           `json:"watches"`
	Lerps   int           `json:"lerps"`
	Timers  int           `json:"timers"`
	Clock   time.Duration `json:"clock"`
}

// NewManager creates a Manager with an empty registry.
func NewManager(opts Options) *Manager {
	maxProgress := opts.MaxProgress
	if maxProgress <= 0 || maxProgress > MaxProgress {
		maxProgress = MaxProgress
	}
	return &Manager{
		registry:    NewRegistry(),
		host:        opts.Host,
		loader:      opts.Loader,
		buses:       opts.Buses,
		maxProgress: maxProgress,
		watches:     newWatchScheduler(),
		lerps:       newInterpolator(),
		timers:      newTimerQueue(),
	}
}

// Tick advances timers, interpolation jobs and progress watches by dt.
// Devices should already have advanced their own playback for this frame.
func (m *Manager) Tick(dt time.Duration) {
	m.clock += dt
	m.timers.advance(dt)
	m.lerps.advance(dt)
	m.watches.advance(m.registry)
}

// Stats returns counts of registered sounds and pending jobs.
func (m *Manager) Stats() Stats {
	return Stats{
		Sounds:  m.registry.Len(),
		Watches: m.watches.len(),
		Lerps:   m.lerps.len(),
		Timers:  m.timers.len(),
		Clock:   m.clock,
	}
}

// AddSound registers dev under name.
func (m *Manager) AddSound(name string, dev Device) Code {
	return m.registry.Add(name, dev)
}

// AddSoundFromPath builds a device through the host, binds the asset at
// path and registers it under name.
func (m *Manager) AddSoundFromPath(name, path string, s Settings) Code {
	if m.host == nil {
		return MissingParent
	}
	asset, ok := m.load(path)
	if !ok {
		return InvalidPath
	}
	if _, exists := m.registry.entries[name]; exists {
		return AlreadyExists
	}

	dev := m.host.NewDevice()
	if isNilDevice(dev) {
		return MissingSource
	}
	dev.SetAsset(asset)
	dev.SetVolume(s.Volume)
	dev.SetPitch(s.Pitch)
	dev.SetLooping(s.Loop)
	dev.SetMuted(s.Mute)
	dev.SetSpatial(s.Spatial)
	if s.Bus != "" {
		dev.SetBus(&Bus{Name: s.Bus})
	}
	return m.registry.Add(name, dev)
}

// RemoveSound unregisters name and tears down its children, watches,
// interpolation jobs, timers and change subscriptions.
func (m *Manager) RemoveSound(name string) Code {
	h, code := m.registry.Lookup(name)
	if code == DoesNotExist {
		return code
	}
	if h != nil {
		for kind, c := range h.children {
			c.device.Stop()
			if m.host != nil {
				m.host.Release(c.node)
			}
			delete(h.children, kind)
		}
		h.listeners = nil
	}
	m.watches.dropName(name)
	m.lerps.dropName(name)
	m.timers.dropName(name)
	return m.registry.Remove(name)
}

// Names returns registered sound names in insertion order.
func (m *Manager) Names() []string {
	return m.registry.Names()
}

// Registry exposes the underlying registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

func (m *Manager) load(path string) (*Asset, bool) {
	if m.loader == nil || path == "" {
		return nil, false
	}
	a, err := m.loader.Load(path)
	if err != nil || a == nil {
		return nil, false
	}
	return a, true
}

// apply runs fn on every resolved target and notifies listeners.
func (m *Manager) apply(req *request, fn func(dev Device)) Code {
	for _, t := range req.targets {
		fn(t.dev)
	}
	for _, t := range req.targets {
		req.handle.notify(t.sel)
	}
	return OK
}

// Play starts playback on the selected devices.
func (m *Manager) Play(name string, sel Selector) Code {
	req, code := m.validate(name, sel, resolveTargets)
	if code != OK {
		return code
	}
	return m.apply(req, Device.Play)
}

// PlayFrom seeks to start and plays. Once the remainder of the clip has
// elapsed, a stopped non-looping device is rewound to its natural start.
func (m *Manager) PlayFrom(name string, sel Selector, start float64) Code {
	req, code := m.validate(name, sel, timeWithin(start, false), resolveTargets, targetsCover(start))
	if code != OK {
		return code
	}

	for _, t := range req.targets {
		t.dev.SetPosition(start)
		t.dev.Play()
		m.scheduleReset(name, t, start, clipLength(t.dev, req.handle.parent))
	}
	for _, t := range req.targets {
		req.handle.notify(t.sel)
	}
	return OK
}

func (m *Manager) scheduleReset(name string, t target, start, length float64) {
	pitch := t.dev.Pitch()
	var remaining float64
	switch {
	case pitch > 0:
		remaining = (length - start) / pitch
	case pitch < 0:
		remaining = start / -pitch
	default:
		return
	}

	dev := t.dev
	m.timers.schedule(timerKey{name: name, kind: "reset", sel: t.sel}, seconds(remaining), func() {
		if dev.Playing() || dev.Looping() {
			return
		}
		if dev.Pitch() < 0 {
			if a := dev.Asset(); a != nil {
				dev.SetPosition(a.Length)
			}
			return
		}
		dev.SetPosition(0)
	})
}

// PlayDelayed plays the selected devices after delay.
func (m *Manager) PlayDelayed(name string, sel Selector, delay time.Duration) Code {
	_, code := m.validate(name, sel, needsHost, nonNegativeDelay(delay), resolveTargets)
	if code != OK {
		return code
	}

	m.timers.schedule(timerKey{name: name, kind: "delay", sel: sel}, delay, func() {
		h, code := m.registry.Lookup(name)
		if code != OK {
			return
		}
		targets, ok := h.resolve(sel)
		if !ok {
			return
		}
		for _, t := range targets {
			t.dev.Play()
		}
		for _, t := range targets {
			h.notify(t.sel)
		}
	})
	return OK
}

// PlayAtPosition registers (or refreshes) the positional child at pos and
// plays it.
func (m *Manager) PlayAtPosition(name string, pos Vec3) Code {
	if code := m.RegisterChildAt(name, AtPosition, Placement{Position: pos}); code != OK {
		return code
	}
	return m.Play(name, AtPosition)
}

// PlayAttached registers (or refreshes) the child attached to node and
// plays it.
func (m *Manager) PlayAttached(name string, node NodeID) Code {
	if code := m.RegisterChildAt(name, Attached, Placement{Target: node}); code != OK {
		return code
	}
	return m.Play(name, Attached)
}

// Stop stops the selected devices and cancels their pending delayed play.
func (m *Manager) Stop(name string, sel Selector) Code {
	req, code := m.validate(name, sel, resolveTargets)
	if code != OK {
		return code
	}
	m.timers.cancel(timerKey{name: name, kind: "delay", sel: sel})
	return m.apply(req, Device.Stop)
}

// TogglePause pauses playing devices and resumes paused ones.
func (m *Manager) TogglePause(name string, sel Selector) Code {
	req, code := m.validate(name, sel, resolveTargets)
	if code != OK {
		return code
	}
	return m.apply(req, func(dev Device) {
		switch {
		case dev.Playing():
			dev.Pause()
		case dev.Paused():
			dev.Unpause()
		}
	})
}

// ToggleMute flips the mute flag of the selected devices.
func (m *Manager) ToggleMute(name string, sel Selector) Code {
	req, code := m.validate(name, sel, resolveTargets)
	if code != OK {
		return code
	}
	return m.apply(req, func(dev Device) {
		dev.SetMuted(!dev.Muted())
	})
}

// SetLoop sets the loop flag of the selected devices.
func (m *Manager) SetLoop(name string, sel Selector, loop bool) Code {
	req, code := m.validate(name, sel, resolveTargets)
	if code != OK {
		return code
	}
	return m.apply(req, func(dev Device) {
		dev.SetLooping(loop)
	})
}

// IsPlaying reports whether any selected device is playing.
func (m *Manager) IsPlaying(name string, sel Selector) (bool, Code) {
	req, code := m.validate(name, sel, resolveTargets)
	if code != OK {
		return false, code
	}
	for _, t := range req.targets {
		if t.dev.Playing() {
			return true, OK
		}
	}
	return false, OK
}

// GetPosition returns the playback time of the first selected device.
func (m *Manager) GetPosition(name string, sel Selector) (float64, Code) {
	req, code := m.validate(name, sel, resolveTargets)
	if code != OK {
		return math.NaN(), code
	}
	return req.targets[0].dev.Position(), OK
}

// SetPosition seeks the selected devices to t seconds.
func (m *Manager) SetPosition(name string, sel Selector, t float64) Code {
	req, code := m.validate(name, sel, timeWithin(t, true), resolveTargets)
	if code != OK {
		return code
	}
	return m.apply(req, func(dev Device) {
		dev.SetPosition(t)
	})
}

// ChangeClip binds the asset at path to the selected devices. A sound
// registered without a clip can be given one this way.
func (m *Manager) ChangeClip(name string, sel Selector, path string) Code {
	req, code := m.validateClip(name, sel, false, resolveTargets)
	if code != OK {
		return code
	}
	asset, ok := m.load(path)
	if !ok {
		return InvalidPath
	}
	return m.apply(req, func(dev Device) {
		dev.SetAsset(asset)
	})
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
