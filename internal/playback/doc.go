// Package playback provides the simulated device the audio host plays
// through. Device satisfies sound.Device and tracks volume, pitch, mute,
// loop, bus routing, 3D options and a playhead that Advance moves in step
// with the host loop.
package playback
