package sound

import "time"

// Chain is a fluent wrapper that applies several commands to one sound and
// records the first failure. Later calls after a failure are skipped.
//
//	code := sound.On(cmds, "door").At(sound.All).Volume(0.5).Loop(true).Play().Code()
type Chain struct {
	cmds Commands
	name string
	sel  Selector
	code Code
}

// On starts a chain for name addressing the parent device.
func On(cmds Commands, name string) *Chain {
	c := &Chain{cmds: cmds, name: name, sel: Parent}
	if cmds == nil {
		c.code = NotInitialized
	}
	return c
}

// At changes the selector for subsequent calls.
func (c *Chain) At(sel Selector) *Chain {
	c.sel = sel
	return c
}

func (c *Chain) run(fn func() Code) *Chain {
	if c.code == OK {
		c.code = fn()
	}
	return c
}

func (c *Chain) Play() *Chain {
	return c.run(func() Code { return c.cmds.Play(c.name, c.sel) })
}

func (c *Chain) PlayFrom(start float64) *Chain {
	return c.run(func() Code { return c.cmds.PlayFrom(c.name, c.sel, start) })
}

func (c *Chain) PlayDelayed(delay time.Duration) *Chain {
	return c.run(func() Code { return c.cmds.PlayDelayed(c.name, c.sel, delay) })
}

func (c *Chain) Stop() *Chain {
	return c.run(func() Code { return c.cmds.Stop(c.name, c.sel) })
}

func (c *Chain) Volume(v float64) *Chain {
	return c.run(func() Code { return c.cmds.SetVolume(c.name, c.sel, v) })
}

func (c *Chain) Pitch(p float64) *Chain {
	return c.run(func() Code { return c.cmds.SetPitch(c.name, c.sel, p) })
}

func (c *Chain) Loop(loop bool) *Chain {
	return c.run(func() Code { return c.cmds.SetLoop(c.name, c.sel, loop) })
}

func (c *Chain) Seek(t float64) *Chain {
	return c.run(func() Code { return c.cmds.SetPosition(c.name, c.sel, t) })
}

func (c *Chain) Spatial(s Spatial) *Chain {
	return c.run(func() Code { return c.cmds.Set3DOptions(c.name, c.sel, s) })
}

func (c *Chain) FadeVolume(end float64, d time.Duration, granularity int) *Chain {
	return c.run(func() Code { return c.cmds.LerpScalar(c.name, c.sel, Volume, end, d, granularity) })
}

func (c *Chain) FadePitch(end float64, d time.Duration, granularity int) *Chain {
	return c.run(func() Code { return c.cmds.LerpScalar(c.name, c.sel, Pitch, end, d, granularity) })
}

func (c *Chain) OnProgress(threshold float64, fn ProgressFunc) *Chain {
	return c.run(func() Code { return c.cmds.SubscribeProgress(c.name, threshold, fn) })
}

// Code returns the first non-OK result, or OK.
func (c *Chain) Code() Code {
	return c.code
}

// Err returns Code().Err().
func (c *Chain) Err() error {
	return c.code.Err()
}
