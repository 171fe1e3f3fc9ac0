// Package media resolves clip paths for the sound manager.
//
// Paths are relative to media.root and use forward slashes
// ("sfx/door.mp3"). Load probes the header for sample rate and length:
// MP3 through go-mp3, WAV by walking its RIFF chunks. Results are cached
// for media.cache_ttl seconds. When media.watch is on, a Watcher drops the
// cache entry of any clip that changes on disk.
package media
