// Package api implements the HTTP REST API and WebSocket server for Gray
// Logic Audio.
//
// This package provides:
//   - REST endpoints for the sound catalog, playback commands, mix buses,
//     scene nodes, media and playback history
//   - a WebSocket hub relaying change, progress and bus events, which also
//     accepts commands
//   - the middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// The sound manager is owned by the loop goroutine. Handlers never touch it
// directly; they wrap their work in Loop.Do, which runs it between ticks.
// Command outcomes (sound.Code) map to HTTP statuses through their
// sentinel errors:
//
//	DOES_NOT_EXIST, MISSING_MIXER_GROUP    404
//	ALREADY_EXISTS, ALREADY_SUBSCRIBED     409
//	NOT_INITIALIZED                        503
//	everything else                        400
//
// # Graceful Degradation
//
// The server runs without MQTT or InfluxDB; the metrics endpoint reports
// them as disconnected.
package api
