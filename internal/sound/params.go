package sound

import (
	"math"
	"time"
)

// GetVolume returns the volume of the first selected device.
func (m *Manager) GetVolume(name string, sel Selector) (float64, Code) {
	return m.getScalar(name, sel, Volume)
}

// SetVolume sets the volume of the selected devices.
func (m *Manager) SetVolume(name string, sel Selector, v float64) Code {
	return m.setScalar(name, sel, Volume, v)
}

// GetPitch returns the pitch of the first selected device.
func (m *Manager) GetPitch(name string, sel Selector) (float64, Code) {
	return m.getScalar(name, sel, Pitch)
}

// SetPitch sets the pitch of the selected devices. Negative pitch plays
// in reverse.
func (m *Manager) SetPitch(name string, sel Selector, p float64) Code {
	return m.setScalar(name, sel, Pitch, p)
}

func (m *Manager) getScalar(name string, sel Selector, p Param) (float64, Code) {
	req, code := m.validate(name, sel, resolveTargets)
	if code != OK {
		return math.NaN(), code
	}
	return deviceScalar{dev: req.targets[0].dev, param: p}.get(), OK
}

func (m *Manager) setScalar(name string, sel Selector, p Param, v float64) Code {
	req, code := m.validate(name, sel, resolveTargets)
	if code != OK {
		return code
	}
	return m.apply(req, func(dev Device) {
		deviceScalar{dev: dev, param: p}.set(v)
	})
}

// LerpVolume interpolates volume to end. See LerpScalar.
func (m *Manager) LerpVolume(name string, sel Selector, end float64, d time.Duration, granularity int) Code {
	return m.LerpScalar(name, sel, Volume, end, d, granularity)
}

// LerpPitch interpolates pitch to end. See LerpScalar.
func (m *Manager) LerpPitch(name string, sel Selector, end float64, d time.Duration, granularity int) Code {
	return m.LerpScalar(name, sel, Pitch, end, d, granularity)
}

// LerpScalar moves param of the selected devices to end in granularity
// equal steps spread over d. The first step lands on the next Tick; the
// final value is rounded to two decimals. A job for the same name,
// selector and param replaces any running one.
func (m *Manager) LerpScalar(name string, sel Selector, p Param, end float64, d time.Duration, granularity int) Code {
	req, code := m.validate(name, sel,
		endValue(end, currentScalar(p)),
		positiveSteps(granularity),
		nonNegativeDelay(d),
		needsHostBeyondParent,
		resolveTargets,
	)
	if code != OK {
		return code
	}

	targets := make([]lerpTarget, len(req.targets))
	for i, t := range req.targets {
		targets[i] = lerpTarget{sel: t.sel, s: deviceScalar{dev: t.dev, param: p}}
	}
	job := newLerpJob(lerpKey{name: name, sel: sel, param: p.String()}, req.handle, targets, end, d, granularity)
	job.device = true
	m.lerps.put(job)
	return OK
}

// currentScalar reads the concrete child when it exists, else the parent.
func currentScalar(p Param) func(req *request) float64 {
	return func(req *request) float64 {
		dev := req.handle.parent
		if req.sel.isChild() {
			if c, ok := req.handle.Child(req.sel); ok {
				dev = c
			}
		}
		return deviceScalar{dev: dev, param: p}.get()
	}
}

// ChangeGroupValue sets an exposed parameter on the parent's mix bus.
func (m *Manager) ChangeGroupValue(name, param string, v float64) Code {
	req, code := m.validate(name, Parent, mixerParam(param))
	if code != OK {
		return code
	}
	m.buses.Set(req.handle.parent.Bus().Name, param, v)
	return OK
}

// GetGroupValue reads an exposed parameter from the parent's mix bus.
func (m *Manager) GetGroupValue(name, param string) (float64, Code) {
	req, code := m.validate(name, Parent, mixerParam(param))
	if code != OK {
		return math.NaN(), code
	}
	v, _ := m.buses.Get(req.handle.parent.Bus().Name, param)
	return v, OK
}

// ResetGroupValue restores the default of an exposed bus parameter.
func (m *Manager) ResetGroupValue(name, param string) Code {
	req, code := m.validate(name, Parent, mixerParam(param))
	if code != OK {
		return code
	}
	if !m.buses.Clear(req.handle.parent.Bus().Name, param) {
		return MixerNotExposed
	}
	return OK
}

// LerpGroupValue interpolates an exposed bus parameter to end.
func (m *Manager) LerpGroupValue(name, param string, end float64, d time.Duration, granularity int) Code {
	req, code := m.validate(name, Parent,
		mixerParam(param),
		endValue(end, func(req *request) float64 {
			v, _ := m.buses.Get(req.handle.parent.Bus().Name, param)
			return v
		}),
		positiveSteps(granularity),
		nonNegativeDelay(d),
	)
	if code != OK {
		return code
	}

	s := busScalar{buses: m.buses, bus: req.handle.parent.Bus().Name, param: param}
	job := newLerpJob(lerpKey{name: name, sel: Parent, param: "bus:" + param}, req.handle,
		[]lerpTarget{{sel: Parent, s: s}}, end, d, granularity)
	m.lerps.put(job)
	return OK
}

func nan() float64 { return math.NaN() }
