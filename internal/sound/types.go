package sound

import "strings"

// MaxProgress is the exclusive upper bound for progress thresholds.
// Devices that do not loop may never report a position of exactly 1.0,
// so thresholds at or above this value would never fire.
const MaxProgress = 0.99

// Selector names which device of a handle a command addresses.
type Selector int

// Selector values.
const (
	// Parent is the handle's own device.
	Parent Selector = iota
	// AtPosition is the child placed at a fixed point in the scene.
	AtPosition
	// Attached is the child that follows a target node.
	Attached
	// All fans out to the parent and every existing child. It is never
	// stored; jobs expand it when they are created.
	All
)

var selectorNames = [...]string{
	Parent:     "parent",
	AtPosition: "at_position",
	Attached:   "attached",
	All:        "all",
}

func (s Selector) String() string {
	if s < 0 || int(s) >= len(selectorNames) {
		return "invalid"
	}
	return selectorNames[s]
}

// ParseSelector converts a wire name back into a Selector.
func ParseSelector(s string) (Selector, bool) {
	for i, name := range selectorNames {
		if strings.EqualFold(s, name) {
			return Selector(i), true
		}
	}
	return Parent, false
}

// isChild reports whether s names a child kind that can be registered.
func (s Selector) isChild() bool {
	return s == AtPosition || s == Attached
}

// childKinds lists the child kinds in fan-out order.
var childKinds = [...]Selector{AtPosition, Attached}

// Response is what a progress callback returns to decide the fate of its
// watch.
type Response int

// Response values. Anything else is treated as Unsub.
const (
	// Unsub removes the watch.
	Unsub Response = iota
	// ResubInLoop re-arms the watch once the clip wraps while playing.
	ResubInLoop
	// ResubImmediate re-arms the watch as soon as the condition stops holding.
	ResubImmediate
)

func (r Response) String() string {
	switch r {
	case Unsub:
		return "unsub"
	case ResubInLoop:
		return "resub_in_loop"
	case ResubImmediate:
		return "resub_immediate"
	default:
		return "unknown"
	}
}

// ParseResponse converts a wire name back into a Response.
func ParseResponse(s string) (Response, bool) {
	for _, r := range [...]Response{Unsub, ResubInLoop, ResubImmediate} {
		if strings.EqualFold(s, r.String()) {
			return r, true
		}
	}
	return Unsub, false
}

// Param is an interpolatable scalar property of a device.
type Param int

// Device scalar parameters.
const (
	Volume Param = iota
	Pitch
)

func (p Param) String() string {
	switch p {
	case Volume:
		return "volume"
	case Pitch:
		return "pitch"
	default:
		return "unknown"
	}
}

// ParseParam converts a wire name back into a Param.
func ParseParam(s string) (Param, bool) {
	switch strings.ToLower(s) {
	case "volume":
		return Volume, true
	case "pitch":
		return Pitch, true
	default:
		return Volume, false
	}
}

// Vec3 is a point in scene space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NodeID identifies a node in the host container's scene tree.
type NodeID string

// Rolloff is the distance attenuation curve of a spatial device.
type Rolloff string

// Rolloff curves.
const (
	RolloffLogarithmic Rolloff = "logarithmic"
	RolloffLinear      Rolloff = "linear"
	RolloffCustom      Rolloff = "custom"
)

// Spatial holds the 3D options of a device. Blend 0 is fully 2D, 1 fully 3D.
type Spatial struct {
	Blend       float64 `json:"blend" yaml:"blend"`
	Doppler     float64 `json:"doppler" yaml:"doppler"`
	Spread      float64 `json:"spread" yaml:"spread"`
	MinDistance float64 `json:"min_distance" yaml:"min_distance"`
	MaxDistance float64 `json:"max_distance" yaml:"max_distance"`
	Rolloff     Rolloff `json:"rolloff" yaml:"rolloff"`
}

// Asset is an opaque reference to decoded media.
type Asset struct {
	Path       string  `json:"path"`
	Length     float64 `json:"length"` // seconds
	Samples    int64   `json:"samples"`
	SampleRate int     `json:"sample_rate"`
}

// Bus is a named mix bus a device routes into.
type Bus struct {
	Name string `json:"name"`
}

// Placement says where a child device lives: at a point, or under a
// target node.
type Placement struct {
	Position Vec3   `json:"position"`
	Target   NodeID `json:"target,omitempty"`
}

// Settings configures a device built by AddSoundFromPath.
type Settings struct {
	Volume  float64 `json:"volume" yaml:"volume"`
	Pitch   float64 `json:"pitch" yaml:"pitch"`
	Loop    bool    `json:"loop" yaml:"loop"`
	Mute    bool    `json:"mute" yaml:"mute"`
	Bus     string  `json:"bus,omitempty" yaml:"bus"`
	Spatial Spatial `json:"spatial" yaml:"spatial"`
}

// DefaultSettings returns full volume, normal pitch and a 2D device.
func DefaultSettings() Settings {
	return Settings{
		Volume: 1,
		Pitch:  1,
		Spatial: Spatial{
			MinDistance: 1,
			MaxDistance: 500,
			Rolloff:     RolloffLogarithmic,
		},
	}
}

// ChangeFunc is invoked after a command mutates a device of the named sound.
type ChangeFunc func(name string, sel Selector)

// ProgressFunc is invoked when a progress watch fires. The selector names
// the device whose playback crossed the threshold.
type ProgressFunc func(name string, threshold float64, sel Selector) Response
