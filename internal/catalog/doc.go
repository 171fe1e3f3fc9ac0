// Package catalog persists the sound catalog and the playback history in
// SQLite.
//
// The catalog is the list of sounds the service registers at startup:
// name, clip path and initial settings. It is seeded from catalog.seed on
// first start and edited through the API afterwards. Restore replays it
// into the sound manager.
//
// The history keeps one row per relayed playback event and is pruned after
// database.history_retention days.
package catalog
