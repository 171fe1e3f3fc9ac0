package sound

// DeviceState is a point-in-time copy of a device's observable state.
type DeviceState struct {
	Clip     string  `json:"clip,omitempty"`
	Length   float64 `json:"length"`
	Position float64 `json:"position"`
	Volume   float64 `json:"volume"`
	Pitch    float64 `json:"pitch"`
	Muted    bool    `json:"muted"`
	Looping  bool    `json:"looping"`
	Playing  bool    `json:"playing"`
	Paused   bool    `json:"paused"`
	Bus      string  `json:"bus,omitempty"`
	Spatial  Spatial `json:"spatial"`
}

// SoundState is the state of a sound and its children.
type SoundState struct {
	Name     string                 `json:"name"`
	Parent   DeviceState            `json:"parent"`
	Children map[string]DeviceState `json:"children,omitempty"`
}

// Snapshot copies the state of name. It only runs the registry lookup so
// sounds without a clip can still be inspected.
func (m *Manager) Snapshot(name string) (SoundState, Code) {
	h, code := m.registry.Lookup(name)
	if code != OK {
		return SoundState{}, code
	}
	if isNilDevice(h.parent) {
		return SoundState{}, MissingSource
	}

	state := SoundState{Name: name, Parent: captureDevice(h.parent)}
	for _, kind := range h.Children() {
		if state.Children == nil {
			state.Children = make(map[string]DeviceState, len(h.children))
		}
		state.Children[kind.String()] = captureDevice(h.children[kind].device)
	}
	return state, OK
}

func captureDevice(dev Device) DeviceState {
	s := DeviceState{
		Position: dev.Position(),
		Volume:   dev.Volume(),
		Pitch:    dev.Pitch(),
		Muted:    dev.Muted(),
		Looping:  dev.Looping(),
		Playing:  dev.Playing(),
		Paused:   dev.Paused(),
		Spatial:  dev.Spatial(),
	}
	if a := dev.Asset(); a != nil {
		s.Clip = a.Path
		s.Length = a.Length
	}
	if b := dev.Bus(); b != nil {
		s.Bus = b.Name
	}
	return s
}
