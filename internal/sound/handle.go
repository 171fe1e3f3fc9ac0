package sound

import "github.com/google/uuid"

// Handle is the registry entry for one name: the parent device, at most one
// child per kind, and the change listeners.
type Handle struct {
	name      string
	parent    Device
	children  map[Selector]*child
	listeners []listener
}

type child struct {
	node   NodeID
	device Device
}

type listener struct {
	id string
	fn ChangeFunc
}

// target pairs a device with the selector it was resolved from.
type target struct {
	sel Selector
	dev Device
}

func newHandle(name string, dev Device) *Handle {
	return &Handle{
		name:     name,
		parent:   dev,
		children: make(map[Selector]*child, len(childKinds)),
	}
}

// Name returns the registry key of the handle.
func (h *Handle) Name() string { return h.name }

// Parent returns the handle's own device.
func (h *Handle) Parent() Device { return h.parent }

// Child returns the child device of the given kind, if registered.
func (h *Handle) Child(kind Selector) (Device, bool) {
	c, ok := h.children[kind]
	if !ok {
		return nil, false
	}
	return c.device, true
}

// Children returns the registered child kinds in fan-out order.
func (h *Handle) Children() []Selector {
	out := make([]Selector, 0, len(h.children))
	for _, kind := range childKinds {
		if _, ok := h.children[kind]; ok {
			out = append(out, kind)
		}
	}
	return out
}

// Devices resolves sel into devices. It reports false when sel names a
// child that does not exist or is not a selector at all.
func (h *Handle) Devices(sel Selector) ([]Device, bool) {
	targets, ok := h.resolve(sel)
	if !ok {
		return nil, false
	}
	out := make([]Device, len(targets))
	for i, t := range targets {
		out[i] = t.dev
	}
	return out, true
}

func (h *Handle) resolve(sel Selector) ([]target, bool) {
	switch sel {
	case Parent:
		return []target{{sel: Parent, dev: h.parent}}, true
	case AtPosition, Attached:
		c, ok := h.children[sel]
		if !ok {
			return nil, false
		}
		return []target{{sel: sel, dev: c.device}}, true
	case All:
		out := []target{{sel: Parent, dev: h.parent}}
		for _, kind := range childKinds {
			if c, ok := h.children[kind]; ok {
				out = append(out, target{sel: kind, dev: c.device})
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// OnChange adds a change listener and returns its subscription id.
func (h *Handle) OnChange(fn ChangeFunc) string {
	id := uuid.NewString()
	h.listeners = append(h.listeners, listener{id: id, fn: fn})
	return id
}

// RemoveListener drops the listener with the given id.
func (h *Handle) RemoveListener(id string) bool {
	for i, l := range h.listeners {
		if l.id == id {
			h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
			return true
		}
	}
	return false
}

func (h *Handle) notify(sel Selector) {
	if len(h.listeners) == 0 {
		return
	}
	// Listeners may unsubscribe while being notified.
	snapshot := make([]listener, len(h.listeners))
	copy(snapshot, h.listeners)
	for _, l := range snapshot {
		l.fn(h.name, sel)
	}
}
