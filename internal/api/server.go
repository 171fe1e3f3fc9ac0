package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-audio/internal/bridge"
	"github.com/nerrad567/gray-logic-audio/internal/catalog"
	"github.com/nerrad567/gray-logic-audio/internal/host"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-audio/internal/media"
	"github.com/nerrad567/gray-logic-audio/internal/mixer"
	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Loop is the part of host.Loop the server needs.
type Loop interface {
	Do(ctx context.Context, fn func()) error
	Stats() host.Stats
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Logger  *logging.Logger
	Version string

	// Loop runs every engine call. Commands, Scene and Bridge are only
	// used inside Loop.Do.
	Loop     Loop
	Commands sound.Commands
	Stats    func() sound.Stats
	Scene    *host.Scene
	Bridge   *bridge.Bridge

	Catalog catalog.Repository
	History catalog.History
	Mixer   *mixer.Mixer
	Media   *media.Library

	// Optional; reported by /health and /metrics.
	DB       *database.DB
	MQTT     *mqtt.Client
	InfluxDB *influxdb.Client

	// ExternalHub, if set, is used instead of creating a hub.
	ExternalHub *Hub
}

// Server is the HTTP API server for Gray Logic Audio.
type Server struct {
	cfg     config.APIConfig
	wsCfg   config.WebSocketConfig
	logger  *logging.Logger
	version string

	loop    Loop
	cmds    sound.Commands
	stats   func() sound.Stats
	scene   *host.Scene
	bridge  *bridge.Bridge
	catalog catalog.Repository
	history catalog.History
	mixer   *mixer.Mixer
	media   *media.Library
	db      *database.DB
	mqtt    *mqtt.Client
	influx  *influxdb.Client

	server    *http.Server
	hub       *Hub
	startTime time.Time
	cancel    context.CancelFunc
}

// New creates a new API server with the given dependencies. The server is
// not started until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Loop == nil || deps.Commands == nil || deps.Bridge == nil {
		return nil, fmt.Errorf("loop, commands and bridge are required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger,
		version:   deps.Version,
		loop:      deps.Loop,
		cmds:      deps.Commands,
		stats:     deps.Stats,
		scene:     deps.Scene,
		bridge:    deps.Bridge,
		catalog:   deps.Catalog,
		history:   deps.History,
		mixer:     deps.Mixer,
		media:     deps.Media,
		db:        deps.DB,
		mqtt:      deps.MQTT,
		influx:    deps.InfluxDB,
		hub:       deps.ExternalHub,
		startTime: time.Now(),
	}
	if s.hub != nil {
		s.hub.SetCommandHandler(s.runCommand)
	}
	return s, nil
}

// Hub returns the WebSocket hub, creating it if needed. The bridge
// broadcasts through it.
func (s *Server) Hub() *Hub {
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
		s.hub.SetCommandHandler(s.runCommand)
	}
	return s.hub
}

// Start runs the hub and begins listening for HTTP connections in the
// background. Close stops both.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.Hub().Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Close gracefully shuts down the API server, waiting up to 10 seconds for
// in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}
	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}

// do runs fn on the loop and writes a 503 when the loop is unavailable.
func (s *Server) do(w http.ResponseWriter, r *http.Request, fn func()) bool {
	if err := s.loop.Do(r.Context(), fn); err != nil {
		s.logger.Warn("sound loop unavailable", "error", err, "path", r.URL.Path)
		writeServiceUnavailable(w, "sound engine unavailable")
		return false
	}
	return true
}

// runCommand executes a command on the loop for WebSocket clients.
func (s *Server) runCommand(ctx context.Context, name string, cmd bridge.Command) (bridge.Result, error) {
	var (
		res bridge.Result
		err error
	)
	if doErr := s.loop.Do(ctx, func() { res, err = s.bridge.Execute(name, cmd) }); doErr != nil {
		return bridge.Result{ID: cmd.ID, Sound: name, Op: cmd.Op, Error: doErr.Error()}, doErr
	}
	return res, err
}
