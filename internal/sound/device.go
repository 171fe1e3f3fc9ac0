package sound

// Device is a playback device. Implementations own the playback state;
// this package only reads and writes it.
type Device interface {
	Asset() *Asset
	SetAsset(a *Asset)

	Volume() float64
	SetVolume(v float64)
	Pitch() float64
	SetPitch(p float64)
	Muted() bool
	SetMuted(m bool)
	Looping() bool
	SetLooping(l bool)

	Playing() bool
	Paused() bool
	Play()
	Pause()
	Unpause()
	Stop()

	// Position is the playback time in seconds.
	Position() float64
	SetPosition(t float64)

	Spatial() Spatial
	SetSpatial(s Spatial)

	Bus() *Bus
	SetBus(b *Bus)
}

// Host is the container that owns scene nodes. Child devices and devices
// built from a path are created through it.
type Host interface {
	// NewDevice returns an unplaced device.
	NewDevice() Device
	// Spawn creates a node for the placement and a device living on it.
	Spawn(p Placement) (NodeID, Device, error)
	// Move re-places an existing node.
	Move(node NodeID, p Placement) error
	// Release destroys a node and its device.
	Release(node NodeID)
	// HasNode reports whether id names a live node.
	HasNode(id NodeID) bool
}

// Loader resolves a media path to an asset. Any error means the path
// could not be resolved.
type Loader interface {
	Load(path string) (*Asset, error)
}

// BusBackend stores exposed mix bus parameters.
type BusBackend interface {
	// Get returns the value of an exposed parameter.
	Get(bus, param string) (float64, bool)
	// Set writes an exposed parameter. It reports false when the parameter
	// is not exposed on the bus.
	Set(bus, param string, v float64) bool
	// Clear restores the parameter's default.
	Clear(bus, param string) bool
}

// copyConfig copies the parent configuration a child inherits.
func copyConfig(dst, src Device) {
	dst.SetAsset(src.Asset())
	dst.SetBus(src.Bus())
	dst.SetLooping(src.Looping())
	dst.SetVolume(src.Volume())
	dst.SetPitch(src.Pitch())
	dst.SetSpatial(src.Spatial())
}
