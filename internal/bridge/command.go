package bridge

import (
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

// Command operations.
const (
	OpPlay         = "play"
	OpPlayFrom     = "play_from"
	OpPlayDelayed  = "play_delayed"
	OpPlayAt       = "play_at"
	OpPlayAttached = "play_attached"
	OpStop         = "stop"
	OpPause        = "pause"
	OpMute         = "mute"
	OpLoop         = "loop"
	OpSeek         = "seek"
	OpClip         = "clip"
	OpVolume       = "volume"
	OpPitch        = "pitch"
	OpFade         = "fade"
	OpSpatial      = "spatial"
	OpAttach       = "attach"
	OpDetach       = "detach"
	OpGroupGet     = "group_get"
	OpGroupSet     = "group_set"
	OpGroupReset   = "group_reset"
	OpGroupFade    = "group_fade"
	OpWatch        = "watch"
	OpUnwatch      = "unwatch"
	OpState        = "state"
)

var (
	// ErrInvalidCommand is returned for a command that cannot be run at all.
	ErrInvalidCommand = errors.New("bridge: invalid command")
	// ErrUnknownOp is returned for an unrecognised op.
	ErrUnknownOp = errors.New("bridge: unknown op")
)

// Command is one operation on a named sound, as received over MQTT or the
// API. Durations and delays are in seconds.
type Command struct {
	ID          string         `json:"id,omitempty"`
	Op          string         `json:"op"`
	Selector    string         `json:"selector,omitempty"`
	Value       *float64       `json:"value,omitempty"`
	Enabled     *bool          `json:"enabled,omitempty"`
	Param       string         `json:"param,omitempty"`
	Duration    float64        `json:"duration,omitempty"`
	Granularity int            `json:"granularity,omitempty"`
	Path        string         `json:"path,omitempty"`
	Position    *sound.Vec3    `json:"position,omitempty"`
	Node        sound.NodeID   `json:"node,omitempty"`
	Kind        string         `json:"kind,omitempty"`
	Spatial     *sound.Spatial `json:"spatial,omitempty"`
	Response    string         `json:"response,omitempty"`
}

// Result is the outcome of a Command. Error is set when the command was
// rejected before reaching the manager; otherwise Code holds the outcome.
type Result struct {
	ID    string     `json:"id,omitempty"`
	Sound string     `json:"sound"`
	Op    string     `json:"op"`
	Code  sound.Code `json:"code"`
	Value any        `json:"value,omitempty"`
	Error string     `json:"error,omitempty"`
}

// Err returns the command error, or the code's sentinel error.
func (r Result) Err() error {
	if r.Error != "" {
		return fmt.Errorf("%w: %s", ErrInvalidCommand, r.Error)
	}
	return r.Code.Err()
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (c Command) selector() (sound.Selector, error) {
	if c.Selector == "" {
		return sound.Parent, nil
	}
	sel, ok := sound.ParseSelector(c.Selector)
	if !ok {
		return sound.Parent, fmt.Errorf("%w: selector %q", ErrInvalidCommand, c.Selector)
	}
	return sel, nil
}

func (c Command) value() (float64, error) {
	if c.Value == nil {
		return 0, fmt.Errorf("%w: %s needs a value", ErrInvalidCommand, c.Op)
	}
	return *c.Value, nil
}

// Execute runs c against name. It must be called on the loop goroutine.
// The error is non-nil only when the command is malformed; engine
// outcomes are reported in Result.Code.
func (b *Bridge) Execute(name string, c Command) (Result, error) {
	res := Result{ID: c.ID, Sound: name, Op: c.Op}
	code, value, err := b.run(name, c)
	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	res.Code = code
	if code == sound.OK {
		res.Value = value
	}
	return res, nil
}

func (b *Bridge) run(name string, c Command) (sound.Code, any, error) { //nolint:gocyclo // flat op dispatch
	sel, err := c.selector()
	if err != nil {
		return sound.OK, nil, err
	}
	cmds := b.cmds

	switch c.Op {
	case OpPlay:
		return cmds.Play(name, sel), nil, nil
	case OpPlayFrom:
		v, err := c.value()
		if err != nil {
			return sound.OK, nil, err
		}
		return cmds.PlayFrom(name, sel, v), nil, nil
	case OpPlayDelayed:
		return cmds.PlayDelayed(name, sel, seconds(c.Duration)), nil, nil
	case OpPlayAt:
		if c.Position == nil {
			return sound.OK, nil, fmt.Errorf("%w: play_at needs a position", ErrInvalidCommand)
		}
		return cmds.PlayAtPosition(name, *c.Position), nil, nil
	case OpPlayAttached:
		if c.Node == "" {
			return sound.OK, nil, fmt.Errorf("%w: play_attached needs a node", ErrInvalidCommand)
		}
		return cmds.PlayAttached(name, c.Node), nil, nil
	case OpStop:
		return cmds.Stop(name, sel), nil, nil
	case OpPause:
		return cmds.TogglePause(name, sel), nil, nil
	case OpMute:
		return cmds.ToggleMute(name, sel), nil, nil
	case OpLoop:
		if c.Enabled == nil {
			return sound.OK, nil, fmt.Errorf("%w: loop needs enabled", ErrInvalidCommand)
		}
		return cmds.SetLoop(name, sel, *c.Enabled), nil, nil
	case OpSeek:
		if c.Value == nil {
			pos, code := cmds.GetPosition(name, sel)
			return code, pos, nil
		}
		return cmds.SetPosition(name, sel, *c.Value), nil, nil
	case OpClip:
		if c.Path == "" {
			return sound.OK, nil, fmt.Errorf("%w: clip needs a path", ErrInvalidCommand)
		}
		return cmds.ChangeClip(name, sel, c.Path), nil, nil
	case OpVolume:
		if c.Value == nil {
			v, code := cmds.GetVolume(name, sel)
			return code, v, nil
		}
		return cmds.SetVolume(name, sel, *c.Value), nil, nil
	case OpPitch:
		if c.Value == nil {
			v, code := cmds.GetPitch(name, sel)
			return code, v, nil
		}
		return cmds.SetPitch(name, sel, *c.Value), nil, nil
	case OpFade:
		p, ok := sound.ParseParam(c.Param)
		if !ok {
			return sound.OK, nil, fmt.Errorf("%w: param %q", ErrInvalidCommand, c.Param)
		}
		v, err := c.value()
		if err != nil {
			return sound.OK, nil, err
		}
		return cmds.LerpScalar(name, sel, p, v, seconds(c.Duration), c.Granularity), nil, nil
	case OpSpatial:
		if c.Spatial == nil {
			s, code := cmds.Get3DOptions(name, sel)
			return code, s, nil
		}
		return cmds.Set3DOptions(name, sel, *c.Spatial), nil, nil
	case OpAttach, OpDetach:
		kind, ok := sound.ParseSelector(c.Kind)
		if !ok {
			return sound.OK, nil, fmt.Errorf("%w: kind %q", ErrInvalidCommand, c.Kind)
		}
		if c.Op == OpDetach {
			return cmds.DeregisterChild(name, kind), nil, nil
		}
		p := sound.Placement{Target: c.Node}
		if c.Position != nil {
			p.Position = *c.Position
		}
		return cmds.RegisterChildAt(name, kind, p), nil, nil
	case OpGroupGet:
		v, code := cmds.GetGroupValue(name, c.Param)
		return code, v, nil
	case OpGroupSet:
		v, err := c.value()
		if err != nil {
			return sound.OK, nil, err
		}
		return cmds.ChangeGroupValue(name, c.Param, v), nil, nil
	case OpGroupReset:
		return cmds.ResetGroupValue(name, c.Param), nil, nil
	case OpGroupFade:
		v, err := c.value()
		if err != nil {
			return sound.OK, nil, err
		}
		return cmds.LerpGroupValue(name, c.Param, v, seconds(c.Duration), c.Granularity), nil, nil
	case OpWatch:
		resp := sound.Unsub
		if c.Response != "" {
			r, ok := sound.ParseResponse(c.Response)
			if !ok {
				return sound.OK, nil, fmt.Errorf("%w: response %q", ErrInvalidCommand, c.Response)
			}
			resp = r
		}
		v, err := c.value()
		if err != nil {
			return sound.OK, nil, err
		}
		return cmds.SubscribeProgress(name, v, b.Progress(resp)), nil, nil
	case OpUnwatch:
		v, err := c.value()
		if err != nil {
			return sound.OK, nil, err
		}
		return cmds.UnsubscribeProgress(name, v), nil, nil
	case OpState:
		st, code := cmds.Snapshot(name)
		return code, st, nil
	default:
		return sound.OK, nil, fmt.Errorf("%w: %q", ErrUnknownOp, c.Op)
	}
}
