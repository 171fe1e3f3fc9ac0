package sound

import (
	"math"
	"testing"
	"time"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLerpScalarValidation(t *testing.T) {
	tests := []struct {
		name   string
		noHost bool
		sel    Selector
		end    float64
		g      int
		d      time.Duration
		want   Code
	}{
		{"parent ok", false, Parent, 0.5, 5, time.Second, OK},
		{"parent without host ok", true, Parent, 0.5, 5, time.Second, OK},
		{"end equals current", false, Parent, 1, 5, time.Second, InvalidEndValue},
		{"NaN end", false, Parent, math.NaN(), 5, time.Second, InvalidEndValue},
		{"zero granularity", false, Parent, 0.5, 0, time.Second, InvalidGranularity},
		{"end value checked before granularity", false, Parent, 1, 0, time.Second, InvalidEndValue},
		{"child without host", true, AtPosition, 0.5, 5, time.Second, MissingParent},
		{"all without host", true, All, 0.5, 5, time.Second, MissingParent},
		{"missing child", false, Attached, 0.5, 5, time.Second, InvalidChild},
		{"all with no children", false, All, 0.5, 5, time.Second, OK},
		{"zero duration", false, Parent, 0.5, 5, 0, OK},
		{"negative duration", false, Parent, 0.5, 5, -time.Second, InvalidTime},
		{"granularity checked before duration", false, Parent, 0.5, 0, -time.Second, InvalidGranularity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{}
			if !tt.noHost {
				opts.Host = newFakeHost()
			}
			mgr := NewManager(opts)
			mgr.AddSound("door", newFakeDevice(1))

			if got := mgr.LerpScalar("door", tt.sel, Volume, tt.end, tt.d, tt.g); got != tt.want {
				t.Errorf("LerpScalar() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLerpVolumeReachesEnd(t *testing.T) {
	mgr, host, dev := setupManager()

	if code := mgr.LerpVolume("door", Parent, 0.5, time.Second, 5); code != OK {
		t.Fatalf("LerpVolume() = %v, want OK", code)
	}
	if dev.volume != 1 {
		t.Errorf("volume changed before first tick: %v", dev.volume)
	}

	prev := dev.volume
	for i := 0; i < 5; i++ {
		step(mgr, host, dev, 1)
		if dev.volume >= prev {
			t.Errorf("tick %d: volume %v did not decrease from %v", i+1, dev.volume, prev)
		}
		prev = dev.volume
	}
	if !approx(dev.volume, 0.5) || dev.volume != 0.5 {
		t.Errorf("final volume = %v, want exactly 0.5", dev.volume)
	}
	if mgr.lerps.len() != 0 {
		t.Errorf("lerp jobs = %d, want 0", mgr.lerps.len())
	}

	step(mgr, host, dev, 3)
	if dev.volume != 0.5 {
		t.Errorf("volume drifted to %v after job ended", dev.volume)
	}
}

func TestLerpStepsAreSpacedByInterval(t *testing.T) {
	mgr, host, dev := setupManager()

	// Two steps over two seconds: one step per second.
	mgr.LerpPitch("door", Parent, 2, 2*time.Second, 2)

	step(mgr, host, dev, 1)
	if !approx(dev.pitch, 1.5) {
		t.Fatalf("pitch after first tick = %v, want 1.5", dev.pitch)
	}
	step(mgr, host, dev, 2)
	if !approx(dev.pitch, 1.5) {
		t.Errorf("pitch before interval elapsed = %v, want 1.5", dev.pitch)
	}
	step(mgr, host, dev, 1)
	if dev.pitch != 2 {
		t.Errorf("pitch after interval = %v, want 2", dev.pitch)
	}
}

func TestLerpZeroDurationStepsEveryTick(t *testing.T) {
	mgr, _, dev := setupManager()

	mgr.LerpVolume("door", Parent, 0, 0, 3)
	for i := 0; i < 3; i++ {
		mgr.Tick(time.Millisecond)
	}
	if dev.volume != 0 {
		t.Errorf("volume = %v, want 0", dev.volume)
	}
	if mgr.lerps.len() != 0 {
		t.Errorf("lerp jobs = %d, want 0", mgr.lerps.len())
	}
}

func TestLerpRoundsFinalValue(t *testing.T) {
	mgr, _, dev := setupManager()

	mgr.LerpVolume("door", Parent, 1.0/3.0, 0, 3)
	mgr.Tick(frame)
	mgr.Tick(frame)
	mgr.Tick(frame)

	if dev.volume != 0.33 {
		t.Errorf("volume = %v, want 0.33", dev.volume)
	}
}

func TestLerpSameKeyReplaces(t *testing.T) {
	mgr, _, dev := setupManager()

	mgr.LerpVolume("door", Parent, 0, 0, 4)
	mgr.Tick(frame)
	if !approx(dev.volume, 0.75) {
		t.Fatalf("volume = %v, want 0.75", dev.volume)
	}

	mgr.LerpVolume("door", Parent, 0.5, 0, 1)
	if mgr.lerps.len() != 1 {
		t.Errorf("lerp jobs = %d, want 1", mgr.lerps.len())
	}
	for i := 0; i < 4; i++ {
		mgr.Tick(frame)
	}
	if dev.volume != 0.5 {
		t.Errorf("volume = %v, want 0.5 (replaced job kept running?)", dev.volume)
	}
}

func TestLerpAllFreezesTargets(t *testing.T) {
	mgr, host, dev := setupManager()
	mgr.RegisterChildAt("door", AtPosition, Placement{})

	mgr.LerpVolume("door", All, 0, 0, 2)
	mgr.RegisterChildAt("door", Attached, Placement{Target: "player"})

	mgr.Tick(frame)
	mgr.Tick(frame)

	if dev.volume != 0 {
		t.Errorf("parent volume = %v, want 0", dev.volume)
	}
	at, attached := host.devices[0], host.devices[1]
	if at.volume != 0 {
		t.Errorf("positional child volume = %v, want 0", at.volume)
	}
	if attached.volume != 1 {
		t.Errorf("child added after job creation volume = %v, want 1", attached.volume)
	}
}

func TestDeregisterChildCancelsLerp(t *testing.T) {
	mgr, host, _ := setupManager()
	mgr.RegisterChildAt("door", AtPosition, Placement{})

	mgr.LerpVolume("door", AtPosition, 0, 0, 4)
	mgr.DeregisterChild("door", AtPosition)
	mgr.Tick(frame)

	if mgr.lerps.len() != 0 {
		t.Errorf("lerp jobs = %d, want 0", mgr.lerps.len())
	}
	if host.devices[0].volume != 1 {
		t.Errorf("released child volume = %v, want untouched 1", host.devices[0].volume)
	}
}

func TestGroupValues(t *testing.T) {
	mgr, _, dev := setupManager()

	if code := mgr.ChangeGroupValue("door", "volume", -10); code != MissingMixerGroup {
		t.Errorf("ChangeGroupValue() without bus = %v, want MISSING_MIXER_GROUP", code)
	}
	dev.bus = &Bus{Name: "music"}
	if code := mgr.ChangeGroupValue("door", "volume", -10); code != MixerNotExposed {
		t.Errorf("ChangeGroupValue() unexposed = %v, want MIXER_NOT_EXPOSED", code)
	}

	dev.bus = &Bus{Name: "sfx"}
	if code := mgr.ChangeGroupValue("door", "volume", -10); code != OK {
		t.Fatalf("ChangeGroupValue() = %v, want OK", code)
	}
	if v, code := mgr.GetGroupValue("door", "volume"); code != OK || v != -10 {
		t.Errorf("GetGroupValue() = %v, %v, want -10, OK", v, code)
	}
	if code := mgr.ResetGroupValue("door", "volume"); code != OK {
		t.Errorf("ResetGroupValue() = %v, want OK", code)
	}
	if v, _ := mgr.GetGroupValue("door", "volume"); v != 0 {
		t.Errorf("GetGroupValue() after reset = %v, want 0", v)
	}
	if v, code := mgr.GetGroupValue("door", "pitch"); code != MixerNotExposed || !math.IsNaN(v) {
		t.Errorf("GetGroupValue(pitch) = %v, %v, want NaN, MIXER_NOT_EXPOSED", v, code)
	}
}

func TestLerpGroupValue(t *testing.T) {
	mgr, _, dev := setupManager()
	dev.bus = &Bus{Name: "sfx"}

	if code := mgr.LerpGroupValue("door", "volume", 0, time.Second, 4); code != InvalidEndValue {
		t.Errorf("LerpGroupValue(current) = %v, want INVALID_END_VALUE", code)
	}
	if code := mgr.LerpGroupValue("door", "volume", -80, 0, 0); code != InvalidGranularity {
		t.Errorf("LerpGroupValue(g=0) = %v, want INVALID_GRANULARITY", code)
	}
	if code := mgr.LerpGroupValue("door", "volume", -80, -time.Second, 4); code != InvalidTime {
		t.Errorf("LerpGroupValue(d<0) = %v, want INVALID_TIME", code)
	}
	if code := mgr.LerpGroupValue("door", "volume", -80, 0, 4); code != OK {
		t.Fatalf("LerpGroupValue() = %v, want OK", code)
	}
	for i := 0; i < 4; i++ {
		mgr.Tick(frame)
	}
	if v, _ := mgr.GetGroupValue("door", "volume"); v != -80 {
		t.Errorf("bus volume = %v, want -80", v)
	}
}
