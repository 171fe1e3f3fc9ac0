// Package host is the container the sound manager runs in.
//
// Scene is the node tree: named nodes placed by the site (speakers, rooms,
// a listener) and nodes spawned for child devices. It implements
// sound.Host, so PlayAttached can hang a device under any named node.
//
// Loop owns the goroutine that mutates sound state. It ticks at
// engine.tick_hz, advancing every device's playhead before calling
// Manager.Tick, and runs commands from HTTP and MQTT handlers between
// ticks:
//
//	err := loop.Do(ctx, func() {
//	    code = loop.Manager().Play("door", sound.Parent)
//	})
package host
