package sound

import "testing"

func TestSubscribeProgressValidation(t *testing.T) {
	t.Run("no host", func(t *testing.T) {
		mgr := NewManager(Options{})
		mgr.AddSound("door", newFakeDevice(1))
		if code := mgr.SubscribeProgress("door", 0.99, nil); code != MissingParent {
			t.Errorf("SubscribeProgress() = %v, want MISSING_PARENT", code)
		}
	})

	mgr, _, _ := setupManager()
	noop := func(string, float64, Selector) Response { return Unsub }

	tests := []struct {
		name      string
		threshold float64
		want      Code
	}{
		{"at max", MaxProgress, InvalidProgress},
		{"above max", 1, InvalidProgress},
		{"negative", -0.1, InvalidProgress},
		{"zero", 0, OK},
		{"just below max", 0.98, OK},
		{"duplicate", 0.98, AlreadySubscribed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mgr.SubscribeProgress("door", tt.threshold, noop); got != tt.want {
				t.Errorf("SubscribeProgress(%v) = %v, want %v", tt.threshold, got, tt.want)
			}
		})
	}

	if code := mgr.UnsubscribeProgress("door", 0.5); code != NotSubscribed {
		t.Errorf("UnsubscribeProgress(0.5) = %v, want NOT_SUBSCRIBED", code)
	}
	if code := mgr.UnsubscribeProgress("door", 0.98); code != OK {
		t.Errorf("UnsubscribeProgress(0.98) = %v, want OK", code)
	}
	if code := mgr.SubscribeProgress("door", 0.98, noop); code != OK {
		t.Errorf("SubscribeProgress() after unsubscribe = %v, want OK", code)
	}
}

func TestProgressResubInLoopFiresPerLoop(t *testing.T) {
	mgr, host, dev := setupManager()
	dev.looping = true

	fired := 0
	mgr.SubscribeProgress("door", 0, func(name string, threshold float64, sel Selector) Response {
		if name != "door" || threshold != 0 || sel != Parent {
			t.Errorf("callback(%q, %v, %v), want (door, 0, parent)", name, threshold, sel)
		}
		fired++
		return ResubInLoop
	})
	mgr.Play("door", Parent)

	// Six frames of 250ms play 1.5 loops of a one-second clip.
	step(mgr, host, dev, 6)

	if fired != 2 {
		t.Errorf("fired = %d, want 2", fired)
	}
}

func TestProgressResubImmediate(t *testing.T) {
	mgr, host, dev := setupManager()

	fired := 0
	mgr.SubscribeProgress("door", 0.5, func(string, float64, Selector) Response {
		fired++
		return ResubImmediate
	})
	mgr.Play("door", Parent)
	step(mgr, host, dev, 4)
	if fired != 1 {
		t.Fatalf("fired = %d after first pass, want 1", fired)
	}

	mgr.Stop("door", Parent)
	mgr.Play("door", Parent)
	step(mgr, host, dev, 2)
	if fired != 2 {
		t.Errorf("fired = %d after replay, want 2", fired)
	}
}

func TestProgressResubInLoopIgnoresReplay(t *testing.T) {
	mgr, host, dev := setupManager()

	fired := 0
	mgr.SubscribeProgress("door", 0.5, func(string, float64, Selector) Response {
		fired++
		return ResubInLoop
	})
	mgr.Play("door", Parent)
	step(mgr, host, dev, 4)

	mgr.Stop("door", Parent)
	mgr.Play("door", Parent)
	step(mgr, host, dev, 3)

	if fired != 1 {
		t.Errorf("fired = %d, want 1 (clip never looped)", fired)
	}
	if mgr.watches.len() != 1 {
		t.Errorf("watches = %d, want 1", mgr.watches.len())
	}
}

func TestProgressUnsubRemovesWatch(t *testing.T) {
	responses := []struct {
		name string
		resp Response
	}{
		{"unsub", Unsub},
		{"unrecognised", Response(42)},
	}

	for _, tt := range responses {
		t.Run(tt.name, func(t *testing.T) {
			mgr, host, dev := setupManager()
			dev.looping = true

			fired := 0
			mgr.SubscribeProgress("door", 0.25, func(string, float64, Selector) Response {
				fired++
				return tt.resp
			})
			mgr.Play("door", Parent)
			step(mgr, host, dev, 8)

			if fired != 1 {
				t.Errorf("fired = %d, want 1", fired)
			}
			if mgr.watches.len() != 0 {
				t.Errorf("watches = %d, want 0", mgr.watches.len())
			}
			if code := mgr.UnsubscribeProgress("door", 0.25); code != NotSubscribed {
				t.Errorf("UnsubscribeProgress() = %v, want NOT_SUBSCRIBED", code)
			}
		})
	}
}

func TestProgressFiresForChild(t *testing.T) {
	mgr, host, dev := setupManager()

	var got []Selector
	mgr.SubscribeProgress("door", 0.5, func(_ string, _ float64, sel Selector) Response {
		got = append(got, sel)
		return ResubImmediate
	})
	mgr.PlayAtPosition("door", Vec3{})
	step(mgr, host, dev, 2)

	if len(got) != 1 || got[0] != AtPosition {
		t.Errorf("fired for %v, want [at_position]", got)
	}
}

func TestProgressCallbackMutatesSubscriptions(t *testing.T) {
	mgr, host, dev := setupManager()
	dev.looping = true

	late := 0
	mgr.SubscribeProgress("door", 0, func(string, float64, Selector) Response {
		// Unsubscribing inside the callback wins over the returned policy.
		mgr.UnsubscribeProgress("door", 0)
		mgr.SubscribeProgress("door", 0.5, func(string, float64, Selector) Response {
			late++
			return Unsub
		})
		return ResubInLoop
	})
	mgr.Play("door", Parent)
	step(mgr, host, dev, 3)

	if late != 1 {
		t.Errorf("watch added during callback fired %d times, want 1", late)
	}
	if mgr.watches.len() != 0 {
		t.Errorf("watches = %d, want 0", mgr.watches.len())
	}
}

func TestProgressWatchSurvivesRemoveSound(t *testing.T) {
	mgr, host, dev := setupManager()

	mgr.SubscribeProgress("door", 0.1, func(string, float64, Selector) Response {
		mgr.RemoveSound("door")
		return ResubImmediate
	})
	mgr.Play("door", Parent)
	step(mgr, host, dev, 2)

	if mgr.watches.len() != 0 {
		t.Errorf("watches = %d after RemoveSound in callback, want 0", mgr.watches.len())
	}
}
