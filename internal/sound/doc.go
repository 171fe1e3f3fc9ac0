// Package sound provides the named sound registry for Gray Logic Audio.
//
// A host application addresses playback devices by string name instead of
// by handle. On top of the raw device the package layers three behaviours:
// derived child devices for positional and attached playback, progress
// watches that fire once playback crosses a fraction of the clip, and
// tick-driven linear interpolation of scalar parameters.
//
// # Architecture
//
//	┌────────────────────────────────────────────────────────────────┐
//	│                     Manager (manager.go)                        │
//	│   one method per command, every method returns a Code           │
//	│                                                                 │
//	│  ┌─────────────┐   ┌──────────────────┐   ┌─────────────────┐   │
//	│  │  Registry   │──▶│    Validation    │──▶│ Child           │   │
//	│  │(registry.go)│   │ (validation.go)  │   │ instantiator    │   │
//	│  │  + Handle   │   │ fixed check order│   │ (child.go)      │   │
//	│  └─────────────┘   └──────────────────┘   └─────────────────┘   │
//	│                            │                                    │
//	│          ┌─────────────────┼──────────────────┐                 │
//	│          ▼                 ▼                  ▼                 │
//	│  ┌──────────────┐  ┌───────────────┐  ┌──────────────┐          │
//	│  │ Progress     │  │ Interpolator  │  │ Timers       │          │
//	│  │ watches      │  │ (lerp.go)     │  │ (timers.go)  │          │
//	│  │ (watch.go)   │  │               │  │              │          │
//	│  └──────────────┘  └───────────────┘  └──────────────┘          │
//	│          ▲                 ▲                  ▲                 │
//	│          └──────── Manager.Tick(dt) ──────────┘                 │
//	└────────────────────────────────────────────────────────────────┘
//
// # Validation Order
//
// Every command except AddSound and RemoveSound runs the same checks and
// stops at the first failure:
//
//  1. DoesNotExist   - name not in the registry
//  2. MissingWrapper - registry holds a hole instead of a handle
//  3. MissingSource  - handle has no parent device
//  4. MissingClip    - parent device has no asset bound
//  5. operation checks (selector, 3D, host, numeric, mixer)
//
// # Concurrency
//
// Nothing in this package locks. Commands and Tick must be called from a
// single goroutine; see internal/host for the loop that serialises callers.
//
// # Usage
//
//	mgr := sound.NewManager(sound.Options{Host: scene, Loader: loader, Buses: buses})
//	mgr.AddSound("door", dev)
//	mgr.SubscribeProgress("door", 0.5, func(name string, p float64, sel sound.Selector) sound.Response {
//	    return sound.Unsub
//	})
//	mgr.LerpScalar("door", sound.All, sound.Volume, 0, 2*time.Second, 20)
//	for range ticker.C {
//	    mgr.Tick(frame)
//	}
package sound
