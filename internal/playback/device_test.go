package playback

import (
	"math"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

var _ sound.Device = (*Device)(nil)

func clip(length float64) *sound.Asset {
	return &sound.Asset{Path: "sfx/door.mp3", Length: length, SampleRate: 44100}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNewDefaults(t *testing.T) {
	d := New()
	if d.Volume() != 1 || d.Pitch() != 1 {
		t.Errorf("New() volume=%v pitch=%v, want 1 and 1", d.Volume(), d.Pitch())
	}
	if d.Playing() || d.Paused() || d.Asset() != nil {
		t.Error("New() should be stopped without a clip")
	}
}

func TestPlayWithoutClip(t *testing.T) {
	d := New()
	d.Play()
	if d.Playing() {
		t.Error("Play() without a clip started playback")
	}
}

func TestPauseUnpause(t *testing.T) {
	d := New()
	d.SetAsset(clip(1))

	d.Pause()
	if d.Paused() {
		t.Error("Pause() on a stopped device marked it paused")
	}

	d.Play()
	d.Pause()
	if d.Playing() || !d.Paused() {
		t.Errorf("after Pause: playing=%v paused=%v", d.Playing(), d.Paused())
	}
	d.Unpause()
	if !d.Playing() || d.Paused() {
		t.Errorf("after Unpause: playing=%v paused=%v", d.Playing(), d.Paused())
	}
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name     string
		pitch    float64
		loop     bool
		start    float64
		steps    int
		dt       time.Duration
		wantPos  float64
		playing  bool
		finished int
		wraps    int
	}{
		{"forward", 1, false, 0, 2, 250 * time.Millisecond, 0.5, true, 0, 0},
		{"double speed", 2, false, 0, 1, 250 * time.Millisecond, 0.5, true, 0, 0},
		{"forward end stops", 1, false, 0, 5, 250 * time.Millisecond, 1, false, 1, 0},
		{"forward loop wraps", 1, true, 0.75, 2, 250 * time.Millisecond, 0.25, true, 0, 1},
		{"reverse", -1, false, 1, 2, 250 * time.Millisecond, 0.5, true, 0, 0},
		{"reverse end stops", -1, false, 0.5, 2, 250 * time.Millisecond, 0, false, 1, 0},
		{"reverse loop wraps", -1, true, 0.25, 2, 250 * time.Millisecond, 0.75, true, 0, 1},
		{"zero pitch holds", 0, false, 0.3, 4, 250 * time.Millisecond, 0.3, true, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			d.SetAsset(clip(1))
			d.SetPitch(tt.pitch)
			d.SetLooping(tt.loop)
			d.SetPosition(tt.start)
			d.Play()

			for range tt.steps {
				d.Advance(tt.dt)
			}

			if !near(d.Position(), tt.wantPos) {
				t.Errorf("Position() = %v, want %v", d.Position(), tt.wantPos)
			}
			if d.Playing() != tt.playing {
				t.Errorf("Playing() = %v, want %v", d.Playing(), tt.playing)
			}
			if d.Finished() != tt.finished || d.Wraps() != tt.wraps {
				t.Errorf("finished=%d wraps=%d, want %d and %d", d.Finished(), d.Wraps(), tt.finished, tt.wraps)
			}
		})
	}
}

func TestAdvanceWhilePausedHolds(t *testing.T) {
	d := New()
	d.SetAsset(clip(1))
	d.Play()
	d.Advance(100 * time.Millisecond)
	d.Pause()
	d.Advance(500 * time.Millisecond)
	if !near(d.Position(), 0.1) {
		t.Errorf("Position() = %v, want 0.1", d.Position())
	}
}

func TestStopRewinds(t *testing.T) {
	d := New()
	d.SetAsset(clip(2))
	d.SetPosition(1.5)
	d.Play()
	d.Stop()
	if d.Position() != 0 || d.Playing() {
		t.Errorf("Stop() forward: pos=%v playing=%v", d.Position(), d.Playing())
	}

	d.SetPitch(-1)
	d.Stop()
	if d.Position() != 2 {
		t.Errorf("Stop() reverse: pos=%v, want 2", d.Position())
	}
}

func TestSetPositionClamps(t *testing.T) {
	d := New()
	d.SetAsset(clip(1))
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0.5, 0.5},
		{3, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		d.SetPosition(tt.in)
		if d.Position() != tt.want {
			t.Errorf("SetPosition(%v) -> %v, want %v", tt.in, d.Position(), tt.want)
		}
	}

	d.SetPosition(0.9)
	d.SetAsset(clip(0.5))
	if d.Position() != 0.5 {
		t.Errorf("shorter clip left pos at %v, want 0.5", d.Position())
	}
}

func TestGain(t *testing.T) {
	d := New()
	d.SetVolume(0.4)
	if d.Gain() != 0.4 {
		t.Errorf("Gain() = %v, want 0.4", d.Gain())
	}
	d.SetMuted(true)
	if d.Gain() != 0 {
		t.Errorf("Gain() muted = %v, want 0", d.Gain())
	}
}
