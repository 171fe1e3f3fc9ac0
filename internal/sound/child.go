package sound

// RegisterChildAt creates the child of the given kind, or refreshes it in
// place when one already exists. The child copies the parent's asset,
// routing, loop flag, volume, pitch and 3D options.
//
// AtPosition children ignore p.Target. Attached children need p.Target to
// name a live node in the host.
func (m *Manager) RegisterChildAt(name string, kind Selector, p Placement) Code {
	req, code := m.validate(name, kind,
		childKind,
		spatialParent,
		needsHost,
		attachTarget(p),
	)
	if code != OK {
		return code
	}
	if kind == AtPosition {
		p.Target = ""
	}

	h := req.handle
	if c, ok := h.children[kind]; ok {
		if m.host.HasNode(c.node) {
			copyConfig(c.device, h.parent)
			if err := m.host.Move(c.node, p); err != nil {
				return InvalidParent
			}
			h.notify(kind)
			return OK
		}
		// The node went away with its host subtree; spawn a replacement.
		m.dropChild(h, kind, c)
	}

	node, dev, err := m.host.Spawn(p)
	if err != nil {
		return InvalidParent
	}
	if isNilDevice(dev) {
		m.host.Release(node)
		return MissingSource
	}
	copyConfig(dev, h.parent)
	h.children[kind] = &child{node: node, device: dev}
	h.notify(kind)
	return OK
}

// DeregisterChild stops and releases the child of the given kind. A missing
// child is not an error.
func (m *Manager) DeregisterChild(name string, kind Selector) Code {
	req, code := m.validate(name, kind, childKind)
	if code != OK {
		return code
	}

	h := req.handle
	c, ok := h.children[kind]
	if !ok {
		return OK
	}
	m.dropChild(h, kind, c)
	h.notify(kind)
	return OK
}

// dropChild stops and releases a child and forgets every job addressing it.
func (m *Manager) dropChild(h *Handle, kind Selector, c *child) {
	c.device.Stop()
	if m.host != nil {
		m.host.Release(c.node)
	}
	delete(h.children, kind)

	m.lerps.dropSelector(h.name, kind)
	m.watches.forget(h.name, kind)
	m.timers.cancel(timerKey{name: h.name, kind: "delay", sel: kind})
	m.timers.cancel(timerKey{name: h.name, kind: "reset", sel: kind})
}

// Set3DOptions applies spatial options to the selected devices. Children
// cannot be made 2D.
func (m *Manager) Set3DOptions(name string, sel Selector, s Spatial) Code {
	req, code := m.validate(name, sel, resolveTargets, spatialOptions(s))
	if code != OK {
		return code
	}
	return m.apply(req, func(dev Device) {
		dev.SetSpatial(s)
	})
}

// Get3DOptions returns the spatial options of the first selected device.
func (m *Manager) Get3DOptions(name string, sel Selector) (Spatial, Code) {
	req, code := m.validate(name, sel, resolveTargets)
	if code != OK {
		return Spatial{}, code
	}
	return req.targets[0].dev.Spatial(), OK
}

// ChildNode returns the host node backing a child, for callers that need to
// attach other nodes beneath it.
func (m *Manager) ChildNode(name string, kind Selector) (NodeID, Code) {
	req, code := m.validate(name, kind, childKind)
	if code != OK {
		return "", code
	}
	c, ok := req.handle.children[kind]
	if !ok {
		return "", InvalidChild
	}
	return c.node, OK
}
