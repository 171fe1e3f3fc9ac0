package sound

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestRegistryKeysStayUnique(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := NewRegistry()
		model := map[string]Device{}

		ops := rapid.IntRange(1, 50).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			name := rapid.SampledFrom([]string{"a", "b", "c", "d"}).Draw(t, "name")

			if rapid.Bool().Draw(t, "remove") {
				want := DoesNotExist
				if _, ok := model[name]; ok {
					want = OK
					delete(model, name)
				}
				if got := r.Remove(name); got != want {
					t.Fatalf("Remove(%q) = %v, want %v", name, got, want)
				}
				continue
			}

			var dev Device
			if !rapid.Bool().Draw(t, "nil") {
				dev = newFakeDevice(1)
			}
			want := OK
			switch {
			case dev == nil:
				want = MissingSource
			case model[name] != nil:
				want = AlreadyExists
			default:
				model[name] = dev
			}
			if got := r.Add(name, dev); got != want {
				t.Fatalf("Add(%q) = %v, want %v", name, got, want)
			}
		}

		if r.Len() != len(model) {
			t.Fatalf("Len() = %d, want %d", r.Len(), len(model))
		}
		seen := map[string]bool{}
		for _, name := range r.Names() {
			if seen[name] {
				t.Fatalf("Names() repeats %q", name)
			}
			seen[name] = true
			h, _ := r.Lookup(name)
			if h.Parent() != model[name] {
				t.Fatalf("Lookup(%q) returned a different device", name)
			}
		}
	})
}

func TestLerpAlwaysLandsOnEnd(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mgr, _, dev := setupManager()

		start := float64(rapid.IntRange(-300, 300).Draw(t, "start")) / 100
		end := float64(rapid.IntRange(-300, 300).Draw(t, "end")) / 100
		if start == end {
			end += 0.01
		}
		g := rapid.IntRange(1, 30).Draw(t, "granularity")
		d := time.Duration(rapid.IntRange(0, 3000).Draw(t, "durationMs")) * time.Millisecond
		dt := time.Duration(rapid.IntRange(1, 400).Draw(t, "frameMs")) * time.Millisecond

		dev.pitch = start
		if code := mgr.LerpPitch("door", Parent, end, d, g); code != OK {
			t.Fatalf("LerpPitch() = %v, want OK", code)
		}

		prev := start
		for i := 0; i < 100000 && mgr.lerps.len() > 0; i++ {
			mgr.Tick(dt)
			if end > start && dev.pitch < prev-1e-9 || end < start && dev.pitch > prev+1e-9 {
				t.Fatalf("pitch moved away from end: %v -> %v", prev, dev.pitch)
			}
			prev = dev.pitch
		}
		if mgr.lerps.len() != 0 {
			t.Fatal("lerp job never finished")
		}
		if dev.pitch != end {
			t.Fatalf("final pitch = %v, want %v", dev.pitch, end)
		}
	})
}

func TestAtMostOneChildPerKind(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mgr, host, _ := setupManager()

		ops := rapid.IntRange(1, 40).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			kind := rapid.SampledFrom([]Selector{AtPosition, Attached}).Draw(t, "kind")
			if rapid.Bool().Draw(t, "deregister") {
				if code := mgr.DeregisterChild("door", kind); code != OK {
					t.Fatalf("DeregisterChild(%v) = %v, want OK", kind, code)
				}
				continue
			}
			p := Placement{Position: Vec3{X: float64(i)}, Target: "player"}
			if code := mgr.RegisterChildAt("door", kind, p); code != OK {
				t.Fatalf("RegisterChildAt(%v) = %v, want OK", kind, code)
			}
		}

		h, _ := mgr.registry.Lookup("door")
		children := len(h.Children())
		if children > 2 {
			t.Fatalf("children = %d, want at most 2", children)
		}
		// The host keeps one node for the player plus one per live child.
		if len(host.nodes) != children+1 {
			t.Fatalf("live nodes = %d, want %d", len(host.nodes), children+1)
		}
	})
}
