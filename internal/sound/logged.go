package sound

import "time"

// Logger defines the logging interface used by the Logged decorator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Logged wraps Commands with pre/post logging. It never alters results.
// A nil inner Commands makes every call return NotInitialized.
type Logged struct {
	next   Commands
	logger Logger
}

// NewLogged decorates next with logger.
func NewLogged(next Commands, logger Logger) *Logged {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Logged{next: next, logger: logger}
}

// begin logs the call and reports whether the inner Commands exists.
func (l *Logged) begin(op string, args ...any) bool {
	if l.next == nil {
		l.logger.Error("sound command on uninitialised manager", append([]any{"op", op}, args...)...)
		return false
	}
	l.logger.Debug("sound command", append([]any{"op", op}, args...)...)
	return true
}

func (l *Logged) end(op string, code Code, args ...any) Code {
	if code != OK {
		l.logger.Warn("sound command failed", append([]any{"op", op, "code", code.String()}, args...)...)
	}
	return code
}

func (l *Logged) AddSound(name string, dev Device) Code {
	if !l.begin("add_sound", "name", name) {
		return NotInitialized
	}
	return l.end("add_sound", l.next.AddSound(name, dev), "name", name)
}

func (l *Logged) AddSoundFromPath(name, path string, s Settings) Code {
	if !l.begin("add_sound_from_path", "name", name, "path", path) {
		return NotInitialized
	}
	code := l.next.AddSoundFromPath(name, path, s)
	if code == OK {
		l.logger.Info("sound added", "name", name, "path", path)
	}
	return l.end("add_sound_from_path", code, "name", name, "path", path)
}

func (l *Logged) RemoveSound(name string) Code {
	if !l.begin("remove_sound", "name", name) {
		return NotInitialized
	}
	code := l.next.RemoveSound(name)
	if code == OK {
		l.logger.Info("sound removed", "name", name)
	}
	return l.end("remove_sound", code, "name", name)
}

func (l *Logged) Names() []string {
	if l.next == nil {
		return nil
	}
	return l.next.Names()
}

func (l *Logged) Snapshot(name string) (SoundState, Code) {
	if !l.begin("snapshot", "name", name) {
		return SoundState{}, NotInitialized
	}
	s, code := l.next.Snapshot(name)
	return s, l.end("snapshot", code, "name", name)
}

func (l *Logged) Play(name string, sel Selector) Code {
	if !l.begin("play", "name", name, "selector", sel.String()) {
		return NotInitialized
	}
	return l.end("play", l.next.Play(name, sel), "name", name, "selector", sel.String())
}

func (l *Logged) PlayFrom(name string, sel Selector, start float64) Code {
	if !l.begin("play_from", "name", name, "selector", sel.String(), "start", start) {
		return NotInitialized
	}
	return l.end("play_from", l.next.PlayFrom(name, sel, start), "name", name, "start", start)
}

func (l *Logged) PlayDelayed(name string, sel Selector, delay time.Duration) Code {
	if !l.begin("play_delayed", "name", name, "selector", sel.String(), "delay", delay) {
		return NotInitialized
	}
	return l.end("play_delayed", l.next.PlayDelayed(name, sel, delay), "name", name, "delay", delay)
}

func (l *Logged) PlayAtPosition(name string, pos Vec3) Code {
	if !l.begin("play_at_position", "name", name, "x", pos.X, "y", pos.Y, "z", pos.Z) {
		return NotInitialized
	}
	return l.end("play_at_position", l.next.PlayAtPosition(name, pos), "name", name)
}

func (l *Logged) PlayAttached(name string, node NodeID) Code {
	if !l.begin("play_attached", "name", name, "node", string(node)) {
		return NotInitialized
	}
	return l.end("play_attached", l.next.PlayAttached(name, node), "name", name, "node", string(node))
}

func (l *Logged) Stop(name string, sel Selector) Code {
	if !l.begin("stop", "name", name, "selector", sel.String()) {
		return NotInitialized
	}
	return l.end("stop", l.next.Stop(name, sel), "name", name, "selector", sel.String())
}

func (l *Logged) TogglePause(name string, sel Selector) Code {
	if !l.begin("toggle_pause", "name", name, "selector", sel.String()) {
		return NotInitialized
	}
	return l.end("toggle_pause", l.next.TogglePause(name, sel), "name", name)
}

func (l *Logged) ToggleMute(name string, sel Selector) Code {
	if !l.begin("toggle_mute", "name", name, "selector", sel.String()) {
		return NotInitialized
	}
	return l.end("toggle_mute", l.next.ToggleMute(name, sel), "name", name)
}

func (l *Logged) SetLoop(name string, sel Selector, loop bool) Code {
	if !l.begin("set_loop", "name", name, "selector", sel.String(), "loop", loop) {
		return NotInitialized
	}
	return l.end("set_loop", l.next.SetLoop(name, sel, loop), "name", name)
}

func (l *Logged) IsPlaying(name string, sel Selector) (bool, Code) {
	if !l.begin("is_playing", "name", name, "selector", sel.String()) {
		return false, NotInitialized
	}
	playing, code := l.next.IsPlaying(name, sel)
	return playing, l.end("is_playing", code, "name", name)
}

func (l *Logged) GetPosition(name string, sel Selector) (float64, Code) {
	if !l.begin("get_position", "name", name, "selector", sel.String()) {
		return nan(), NotInitialized
	}
	v, code := l.next.GetPosition(name, sel)
	return v, l.end("get_position", code, "name", name)
}

func (l *Logged) SetPosition(name string, sel Selector, t float64) Code {
	if !l.begin("set_position", "name", name, "selector", sel.String(), "time", t) {
		return NotInitialized
	}
	return l.end("set_position", l.next.SetPosition(name, sel, t), "name", name, "time", t)
}

func (l *Logged) ChangeClip(name string, sel Selector, path string) Code {
	if !l.begin("change_clip", "name", name, "selector", sel.String(), "path", path) {
		return NotInitialized
	}
	return l.end("change_clip", l.next.ChangeClip(name, sel, path), "name", name, "path", path)
}

func (l *Logged) GetVolume(name string, sel Selector) (float64, Code) {
	if !l.begin("get_volume", "name", name, "selector", sel.String()) {
		return nan(), NotInitialized
	}
	v, code := l.next.GetVolume(name, sel)
	return v, l.end("get_volume", code, "name", name)
}

func (l *Logged) SetVolume(name string, sel Selector, v float64) Code {
	if !l.begin("set_volume", "name", name, "selector", sel.String(), "value", v) {
		return NotInitialized
	}
	return l.end("set_volume", l.next.SetVolume(name, sel, v), "name", name)
}

func (l *Logged) GetPitch(name string, sel Selector) (float64, Code) {
	if !l.begin("get_pitch", "name", name, "selector", sel.String()) {
		return nan(), NotInitialized
	}
	v, code := l.next.GetPitch(name, sel)
	return v, l.end("get_pitch", code, "name", name)
}

func (l *Logged) SetPitch(name string, sel Selector, p float64) Code {
	if !l.begin("set_pitch", "name", name, "selector", sel.String(), "value", p) {
		return NotInitialized
	}
	return l.end("set_pitch", l.next.SetPitch(name, sel, p), "name", name)
}

func (l *Logged) LerpScalar(name string, sel Selector, p Param, end float64, d time.Duration, granularity int) Code {
	args := []any{"name", name, "selector", sel.String(), "param", p.String(), "end", end, "duration", d, "granularity", granularity}
	if !l.begin("lerp", args...) {
		return NotInitialized
	}
	return l.end("lerp", l.next.LerpScalar(name, sel, p, end, d, granularity), args...)
}

func (l *Logged) Set3DOptions(name string, sel Selector, s Spatial) Code {
	if !l.begin("set_3d_options", "name", name, "selector", sel.String(), "blend", s.Blend) {
		return NotInitialized
	}
	return l.end("set_3d_options", l.next.Set3DOptions(name, sel, s), "name", name)
}

func (l *Logged) Get3DOptions(name string, sel Selector) (Spatial, Code) {
	if !l.begin("get_3d_options", "name", name, "selector", sel.String()) {
		return Spatial{}, NotInitialized
	}
	s, code := l.next.Get3DOptions(name, sel)
	return s, l.end("get_3d_options", code, "name", name)
}

func (l *Logged) RegisterChildAt(name string, kind Selector, p Placement) Code {
	if !l.begin("register_child", "name", name, "kind", kind.String(), "target", string(p.Target)) {
		return NotInitialized
	}
	return l.end("register_child", l.next.RegisterChildAt(name, kind, p), "name", name, "kind", kind.String())
}

func (l *Logged) DeregisterChild(name string, kind Selector) Code {
	if !l.begin("deregister_child", "name", name, "kind", kind.String()) {
		return NotInitialized
	}
	return l.end("deregister_child", l.next.DeregisterChild(name, kind), "name", name, "kind", kind.String())
}

func (l *Logged) ChangeGroupValue(name, param string, v float64) Code {
	if !l.begin("change_group_value", "name", name, "param", param, "value", v) {
		return NotInitialized
	}
	return l.end("change_group_value", l.next.ChangeGroupValue(name, param, v), "name", name, "param", param)
}

func (l *Logged) GetGroupValue(name, param string) (float64, Code) {
	if !l.begin("get_group_value", "name", name, "param", param) {
		return nan(), NotInitialized
	}
	v, code := l.next.GetGroupValue(name, param)
	return v, l.end("get_group_value", code, "name", name, "param", param)
}

func (l *Logged) ResetGroupValue(name, param string) Code {
	if !l.begin("reset_group_value", "name", name, "param", param) {
		return NotInitialized
	}
	return l.end("reset_group_value", l.next.ResetGroupValue(name, param), "name", name, "param", param)
}

func (l *Logged) LerpGroupValue(name, param string, end float64, d time.Duration, granularity int) Code {
	args := []any{"name", name, "param", param, "end", end, "duration", d, "granularity", granularity}
	if !l.begin("lerp_group_value", args...) {
		return NotInitialized
	}
	return l.end("lerp_group_value", l.next.LerpGroupValue(name, param, end, d, granularity), args...)
}

func (l *Logged) SubscribeProgress(name string, threshold float64, fn ProgressFunc) Code {
	if !l.begin("subscribe_progress", "name", name, "threshold", threshold) {
		return NotInitialized
	}
	return l.end("subscribe_progress", l.next.SubscribeProgress(name, threshold, fn), "name", name, "threshold", threshold)
}

func (l *Logged) UnsubscribeProgress(name string, threshold float64) Code {
	if !l.begin("unsubscribe_progress", "name", name, "threshold", threshold) {
		return NotInitialized
	}
	return l.end("unsubscribe_progress", l.next.UnsubscribeProgress(name, threshold), "name", name, "threshold", threshold)
}

func (l *Logged) SubscribeChanged(name string, fn ChangeFunc) (string, Code) {
	if !l.begin("subscribe_changed", "name", name) {
		return "", NotInitialized
	}
	id, code := l.next.SubscribeChanged(name, fn)
	return id, l.end("subscribe_changed", code, "name", name)
}

func (l *Logged) UnsubscribeChanged(name, id string) Code {
	if !l.begin("unsubscribe_changed", "name", name, "id", id) {
		return NotInitialized
	}
	return l.end("unsubscribe_changed", l.next.UnsubscribeChanged(name, id), "name", name, "id", id)
}

var _ Commands = (*Logged)(nil)
