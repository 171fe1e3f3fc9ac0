// Package bridge connects the sound manager to the outside world.
//
// Outbound, it listens for change notifications, fired progress watches,
// bus parameter changes and periodic engine stats on the loop goroutine,
// queues them, and delivers them from its own goroutine to:
//
//   - MQTT (retained state and bus topics, progress notifications)
//   - the WebSocket hub
//   - InfluxDB
//   - the playback history table
//
// Inbound, it subscribes to graylogic/audio/command/+ and runs each JSON
// command on the loop with Loop.Do, publishing the outcome on
// graylogic/audio/result/{sound}. The API uses the same Execute path.
//
// Every sink is optional.
package bridge
