// Package influxdb records playback telemetry in InfluxDB v2.
//
// Three measurements are written:
//
//	audio_playback  tags sound, selector, event   field value
//	audio_bus       tags bus, param                field value
//	audio_engine    no tags                        fields sounds, watches, lerps, timers
//
// Writes are batched and non-blocking; a disconnected client drops them.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // telemetry off
//	}
//	client.WritePlayback(influxdb.PlaybackEvent{Sound: "door", Event: "play"})
package influxdb
