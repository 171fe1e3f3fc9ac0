package playback

import (
	"math"
	"time"

	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

// Device is a simulated playback device. It keeps the scalar state the
// core orchestrates and moves the playhead when Advance is called; no
// samples are decoded or mixed.
//
// Device is not safe for concurrent use. The host loop owns every device.
type Device struct {
	asset   *sound.Asset
	volume  float64
	pitch   float64
	muted   bool
	looping bool
	playing bool
	paused  bool
	pos     float64
	spatial sound.Spatial
	bus     *sound.Bus

	// finished counts natural ends of a non-looping clip.
	finished int
	// wraps counts loop wrap-arounds.
	wraps int
}

// New returns a stopped device at full volume and normal pitch.
func New() *Device {
	return &Device{volume: 1, pitch: 1}
}

func (d *Device) Asset() *sound.Asset { return d.asset }

// SetAsset swaps the clip and clamps the playhead into it.
func (d *Device) SetAsset(a *sound.Asset) {
	d.asset = a
	d.pos = d.clamp(d.pos)
}

func (d *Device) Volume() float64            { return d.volume }
func (d *Device) SetVolume(v float64)        { d.volume = v }
func (d *Device) Pitch() float64             { return d.pitch }
func (d *Device) SetPitch(p float64)         { d.pitch = p }
func (d *Device) Muted() bool                { return d.muted }
func (d *Device) SetMuted(m bool)            { d.muted = m }
func (d *Device) Looping() bool              { return d.looping }
func (d *Device) SetLooping(l bool)          { d.looping = l }
func (d *Device) Playing() bool              { return d.playing }
func (d *Device) Paused() bool               { return d.paused }
func (d *Device) Position() float64          { return d.pos }
func (d *Device) SetPosition(t float64)      { d.pos = d.clamp(t) }
func (d *Device) Spatial() sound.Spatial     { return d.spatial }
func (d *Device) SetSpatial(s sound.Spatial) { d.spatial = s }
func (d *Device) Bus() *sound.Bus            { return d.bus }
func (d *Device) SetBus(b *sound.Bus)        { d.bus = b }

// Play starts from the current position. A device without a clip stays
// stopped.
func (d *Device) Play() {
	if d.asset == nil {
		return
	}
	d.playing = true
	d.paused = false
}

func (d *Device) Pause() {
	if d.playing {
		d.playing = false
		d.paused = true
	}
}

func (d *Device) Unpause() {
	if d.paused {
		d.paused = false
		d.playing = true
	}
}

// Stop halts playback and rewinds to the start for the current direction.
func (d *Device) Stop() {
	d.playing = false
	d.paused = false
	d.pos = 0
	if d.pitch < 0 && d.asset != nil {
		d.pos = d.asset.Length
	}
}

// Gain is the effective output level: zero while muted.
func (d *Device) Gain() float64 {
	if d.muted {
		return 0
	}
	return d.volume
}

// Finished returns how many times a non-looping clip ran to its end.
func (d *Device) Finished() int { return d.finished }

// Wraps returns how many times a looping clip wrapped.
func (d *Device) Wraps() int { return d.wraps }

// Advance moves the playhead by dt scaled by pitch. At either end a
// looping clip wraps and a non-looping clip stops at the boundary.
func (d *Device) Advance(dt time.Duration) {
	if !d.playing || d.asset == nil || d.pitch == 0 {
		return
	}
	length := d.asset.Length
	if length <= 0 {
		d.playing = false
		return
	}

	d.pos += dt.Seconds() * d.pitch
	switch {
	case d.pitch > 0 && d.pos >= length:
		if d.looping {
			d.pos = math.Mod(d.pos, length)
			d.wraps++
			return
		}
		d.pos = length
		d.playing = false
		d.finished++
	case d.pitch < 0 && d.pos <= 0:
		if d.looping {
			d.pos = math.Mod(d.pos, length) + length
			d.wraps++
			return
		}
		d.pos = 0
		d.playing = false
		d.finished++
	}
}

func (d *Device) clamp(t float64) float64 {
	if t < 0 || math.IsNaN(t) {
		return 0
	}
	if d.asset != nil && t > d.asset.Length {
		return d.asset.Length
	}
	return t
}
