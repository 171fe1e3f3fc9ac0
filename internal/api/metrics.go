package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/gray-logic-audio/internal/host"
	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string          `json:"timestamp"`
	Version       string          `json:"version"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Runtime       RuntimeMetrics  `json:"runtime"`
	Loop          LoopMetrics     `json:"loop"`
	Engine        *sound.Stats    `json:"engine,omitempty"`
	Bridge        BridgeMetrics   `json:"bridge"`
	WebSocket     WSMetrics       `json:"websocket"`
	MQTT          ConnMetrics     `json:"mqtt"`
	InfluxDB      ConnMetrics     `json:"influxdb"`
	Media         MediaMetrics    `json:"media"`
	Database      DatabaseMetrics `json:"database"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// LoopMetrics describes the tick loop.
type LoopMetrics struct {
	Status         host.Status `json:"status"`
	Ticks          uint64      `json:"ticks"`
	Queued         int         `json:"queued"`
	UptimeSeconds  float64     `json:"uptime_seconds"`
	TickIntervalMS float64     `json:"tick_interval_ms"`
}

// BridgeMetrics contains event relay statistics.
type BridgeMetrics struct {
	Dropped uint64 `json:"dropped"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// ConnMetrics reports an optional outbound connection.
type ConnMetrics struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// MediaMetrics contains clip cache statistics.
type MediaMetrics struct {
	CachedClips int `json:"cached_clips"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// handleMetrics returns comprehensive system metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	ls := s.loop.Stats()
	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Loop: LoopMetrics{
			Status:         ls.Status,
			Ticks:          ls.Ticks,
			Queued:         ls.Queued,
			UptimeSeconds:  ls.Uptime.Seconds(),
			TickIntervalMS: float64(ls.Interval) / float64(time.Millisecond),
		},
		Bridge:    BridgeMetrics{Dropped: s.bridge.Dropped()},
		WebSocket: WSMetrics{ConnectedClients: s.Hub().ClientCount()},
	}

	// Engine stats only while the loop answers; metrics never fail on it.
	if s.stats != nil {
		var es sound.Stats
		if err := s.loop.Do(r.Context(), func() { es = s.stats() }); err == nil {
			metrics.Engine = &es
		}
	}

	if s.mqtt != nil {
		metrics.MQTT = ConnMetrics{Enabled: true, Connected: s.mqtt.IsConnected()}
	}
	if s.influx != nil {
		metrics.InfluxDB = ConnMetrics{Enabled: true, Connected: s.influx.IsConnected()}
	}
	if s.media != nil {
		metrics.Media = MediaMetrics{CachedClips: s.media.Cached()}
	}

	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
