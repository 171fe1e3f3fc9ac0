package sound

import "time"

// Commands is the public command surface. Manager implements it; Logged
// decorates it.
type Commands interface {
	AddSound(name string, dev Device) Code
	AddSoundFromPath(name, path string, s Settings) Code
	RemoveSound(name string) Code
	Names() []string
	Snapshot(name string) (SoundState, Code)

	Play(name string, sel Selector) Code
	PlayFrom(name string, sel Selector, start float64) Code
	PlayDelayed(name string, sel Selector, delay time.Duration) Code
	PlayAtPosition(name string, pos Vec3) Code
	PlayAttached(name string, node NodeID) Code
	Stop(name string, sel Selector) Code
	TogglePause(name string, sel Selector) Code
	ToggleMute(name string, sel Selector) Code
	SetLoop(name string, sel Selector, loop bool) Code
	IsPlaying(name string, sel Selector) (bool, Code)

	GetPosition(name string, sel Selector) (float64, Code)
	SetPosition(name string, sel Selector, t float64) Code
	ChangeClip(name string, sel Selector, path string) Code

	GetVolume(name string, sel Selector) (float64, Code)
	SetVolume(name string, sel Selector, v float64) Code
	GetPitch(name string, sel Selector) (float64, Code)
	SetPitch(name string, sel Selector, p float64) Code
	LerpScalar(name string, sel Selector, p Param, end float64, d time.Duration, granularity int) Code

	Set3DOptions(name string, sel Selector, s Spatial) Code
	Get3DOptions(name string, sel Selector) (Spatial, Code)
	RegisterChildAt(name string, kind Selector, p Placement) Code
	DeregisterChild(name string, kind Selector) Code

	ChangeGroupValue(name, param string, v float64) Code
	GetGroupValue(name, param string) (float64, Code)
	ResetGroupValue(name, param string) Code
	LerpGroupValue(name, param string, end float64, d time.Duration, granularity int) Code

	SubscribeProgress(name string, threshold float64, fn ProgressFunc) Code
	UnsubscribeProgress(name string, threshold float64) Code
	SubscribeChanged(name string, fn ChangeFunc) (string, Code)
	UnsubscribeChanged(name, id string) Code
}

var _ Commands = (*Manager)(nil)
