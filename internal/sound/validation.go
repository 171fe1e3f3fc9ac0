package sound

import (
	"math"
	"time"
)

// request carries what the validation pipeline resolved for one command.
type request struct {
	handle  *Handle
	sel     Selector
	targets []target
}

// check is one operation-specific validation step.
type check func(m *Manager, req *request) Code

// validate runs the lookup checks followed by checks, in order, and stops at
// the first failure.
func (m *Manager) validate(name string, sel Selector, checks ...check) (*request, Code) {
	return m.validateClip(name, sel, true, checks...)
}

// validateClip is validate with the MissingClip step optional, for
// operations that bind or inspect the clip itself.
func (m *Manager) validateClip(name string, sel Selector, needClip bool, checks ...check) (*request, Code) {
	h, code := m.registry.Lookup(name)
	if code != OK {
		return nil, code
	}
	if isNilDevice(h.parent) {
		return nil, MissingSource
	}
	if needClip && h.parent.Asset() == nil {
		return nil, MissingClip
	}

	req := &request{handle: h, sel: sel}
	for _, c := range checks {
		if code := c(m, req); code != OK {
			return nil, code
		}
	}
	return req, OK
}

// resolveTargets expands the selector into devices.
func resolveTargets(_ *Manager, req *request) Code {
	targets, ok := req.handle.resolve(req.sel)
	if !ok {
		return InvalidChild
	}
	req.targets = targets
	return OK
}

// childKind rejects selectors that are not registrable child kinds.
func childKind(_ *Manager, req *request) Code {
	if !req.sel.isChild() {
		return InvalidChild
	}
	return OK
}

func needsHost(m *Manager, _ *request) Code {
	if m.host == nil {
		return MissingParent
	}
	return OK
}

// needsHostBeyondParent only lets the bare parent run without a host.
func needsHostBeyondParent(m *Manager, req *request) Code {
	if req.sel != Parent && m.host == nil {
		return MissingParent
	}
	return OK
}

// spatialParent rejects children of a parent with no 3D blend.
func spatialParent(_ *Manager, req *request) Code {
	if req.handle.parent.Spatial().Blend <= 0 {
		return CanNotBe3D
	}
	return OK
}

// attachTarget requires a live target node for attached children.
func attachTarget(p Placement) check {
	return func(m *Manager, req *request) Code {
		if req.sel != Attached {
			return OK
		}
		if p.Target == "" || !m.host.HasNode(p.Target) {
			return InvalidParent
		}
		return OK
	}
}

// timeWithin requires lo <= t < hi, or lo <= t <= hi when inclusive.
func timeWithin(t float64, inclusive bool) check {
	return func(_ *Manager, req *request) Code {
		length := req.handle.parent.Asset().Length
		if math.IsNaN(t) || t < 0 {
			return InvalidTime
		}
		if t > length || (!inclusive && t == length) {
			return InvalidTime
		}
		return OK
	}
}

// targetsCover requires start to fall inside every selected device's own
// clip, since children can be given a different clip than the parent.
func targetsCover(start float64) check {
	return func(_ *Manager, req *request) Code {
		for _, t := range req.targets {
			if start >= clipLength(t.dev, req.handle.parent) {
				return InvalidTime
			}
		}
		return OK
	}
}

// clipLength is dev's clip length, falling back to the parent's clip.
func clipLength(dev, parent Device) float64 {
	if a := dev.Asset(); a != nil {
		return a.Length
	}
	return parent.Asset().Length
}

func nonNegativeDelay(d time.Duration) check {
	return func(_ *Manager, _ *request) Code {
		if d < 0 {
			return InvalidTime
		}
		return OK
	}
}

// positiveSteps requires at least one interpolation step.
func positiveSteps(g int) check {
	return func(_ *Manager, _ *request) Code {
		if g <= 0 {
			return InvalidGranularity
		}
		return OK
	}
}

// endValue rejects an interpolation whose end equals the current value.
func endValue(end float64, current func(req *request) float64) check {
	return func(_ *Manager, req *request) Code {
		if math.IsNaN(end) || end == current(req) {
			return InvalidEndValue
		}
		return OK
	}
}

func progressThreshold(t, limit float64) check {
	return func(_ *Manager, _ *request) Code {
		if math.IsNaN(t) || t < 0 || t >= limit {
			return InvalidProgress
		}
		return OK
	}
}

// mixerParam requires a routed bus exposing param.
func mixerParam(param string) check {
	return func(m *Manager, req *request) Code {
		bus := req.handle.parent.Bus()
		if bus == nil || bus.Name == "" || m.buses == nil {
			return MissingMixerGroup
		}
		if _, ok := m.buses.Get(bus.Name, param); !ok {
			return MixerNotExposed
		}
		return OK
	}
}

// spatialOptions rejects 2D options for child devices.
func spatialOptions(s Spatial) check {
	return func(_ *Manager, req *request) Code {
		if s.Blend > 0 {
			return OK
		}
		for _, t := range req.targets {
			if t.sel != Parent {
				return CanNotBe3D
			}
		}
		return OK
	}
}
