// Gray Logic Audio - sound orchestration service
//
// This is the main entry point. It loads the catalog of named sounds into
// the sound manager, drives the manager from a fixed-rate tick loop and
// exposes it over REST, WebSocket and MQTT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/gray-logic-audio/migrations"

	"github.com/nerrad567/gray-logic-audio/internal/api"
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

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"
	configEnvVar      = "GRAYLOGIC_AUDIO_CONFIG"

	startupTimeout = 10 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear startup sequence
	log := logging.Default()
	log.Info("starting Gray Logic Audio",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "site", cfg.Site.ID)

	// Database and catalog
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	repo := catalog.NewSQLiteRepository(db.DB)
	history := catalog.NewSQLiteHistory(db.DB)
	seeded, err := catalog.Seed(ctx, repo, cfg.Catalog.Seed)
	if err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}
	if seeded > 0 {
		log.Info("catalog seeded", "added", seeded)
	}

	// Media, mixer and engine
	library := media.NewLibrary(cfg.Media, log.With("component", "media"))
	mix, err := mixer.FromConfig(cfg.Mixer)
	if err != nil {
		return fmt.Errorf("building mixer: %w", err)
	}
	mix.SetLogger(log.With("component", "mixer"))

	scene := host.NewScene(nil)
	mgr := sound.NewManager(sound.Options{
		Host:        scene,
		Loader:      library,
		Buses:       mix,
		MaxProgress: cfg.Engine.MaxProgress,
	})
	cmds := sound.NewLogged(mgr, log.With("component", "sound"))

	loop := host.NewLoop(mgr, scene, cfg.TickInterval(), cfg.Engine.CommandQueue)
	loop.SetLogger(log.With("component", "loop"))

	// Optional outbound connections
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log.With("component", "mqtt"))
		mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
		mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		influxClient.SetOnError(func(err error) { log.Error("InfluxDB write error", "error", err) })
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Bridge and API. Optional sinks stay nil interfaces when disabled.
	hub := api.NewHub(cfg.WebSocket, log.With("component", "websocket"))
	opts := bridge.Options{
		Commands:  cmds,
		Executor:  loop,
		Stats:     mgr.Stats,
		Hub:       hub,
		History:   history,
		Logger:    log.With("component", "bridge"),
		Retention: time.Duration(cfg.Database.HistoryRetention) * 24 * time.Hour,
	}
	if mqttClient != nil {
		opts.Publisher = mqttClient
	}
	if influxClient != nil {
		opts.Telemetry = influxClient
	}
	br := bridge.New(opts)
	mix.SetPublisher(br.BusChanged)
	loop.OnTick(br.Tick)

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(loopCtx); err != nil {
			log.Error("sound loop error", "error", err)
		}
	}()
	go func() {
		if err := br.Run(loopCtx); err != nil {
			log.Error("bridge error", "error", err)
		}
	}()

	if err := restoreCatalog(ctx, loop, repo, cmds, br, log); err != nil {
		return err
	}

	if err := br.Start(loopCtx); err != nil {
		return fmt.Errorf("starting MQTT command ingress: %w", err)
	}
	defer func() {
		if stopErr := br.Stop(); stopErr != nil {
			log.Warn("error stopping MQTT command ingress", "error", stopErr)
		}
	}()

	if cfg.Media.Watch {
		if err := startWatcher(loopCtx, library, loop, cmds, log); err != nil {
			log.Warn("media watcher disabled", "error", err)
		}
	}

	srv, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log.With("component", "api"),
		Version:     version,
		Loop:        loop,
		Commands:    cmds,
		Stats:       mgr.Stats,
		Scene:       scene,
		Bridge:      br,
		Catalog:     repo,
		History:     history,
		Mixer:       mix,
		Media:       library,
		DB:          db,
		MQTT:        mqttClient,
		InfluxDB:    influxClient,
		ExternalHub: hub,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := srv.Start(loopCtx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal",
		"api", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"tick_hz", cfg.Engine.TickHz,
	)
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	stopLoop()
	<-loopDone
	drainCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	br.Drain(drainCtx)
	if influxClient != nil {
		influxClient.Flush()
	}

	log.Info("Gray Logic Audio stopped")
	return nil
}

// getConfigPath returns GRAYLOGIC_AUDIO_CONFIG, or the default path.
func getConfigPath() string {
	if path := os.Getenv(configEnvVar); path != "" {
		return path
	}
	return defaultConfigPath
}

// restoreCatalog loads every catalog entry into the engine and tracks it.
// Entries that fail to load are logged and left in the catalog.
func restoreCatalog(ctx context.Context, loop *host.Loop, repo catalog.Repository, cmds sound.Commands, br *bridge.Bridge, log *logging.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	var (
		failed map[string]sound.Code
		err    error
		loaded int
	)
	doErr := loop.Do(ctx, func() {
		failed, err = catalog.Restore(ctx, repo, cmds)
		for _, name := range cmds.Names() {
			if br.Track(name) == sound.OK {
				loaded++
			}
		}
	})
	if doErr != nil {
		return fmt.Errorf("restoring catalog: %w", doErr)
	}
	if err != nil {
		return fmt.Errorf("restoring catalog: %w", err)
	}
	for name, code := range failed {
		log.Warn("catalog entry not loaded", "sound", name, "code", code.String())
	}
	log.Info("catalog restored", "loaded", loaded, "failed", len(failed))
	return nil
}

// startWatcher reloads clips edited on disk into the sounds using them.
func startWatcher(ctx context.Context, library *media.Library, loop *host.Loop, cmds sound.Commands, log *logging.Logger) error {
	w, err := media.NewWatcher(library)
	if err != nil {
		return err
	}
	w.OnChange(func(path string) {
		if err := loop.Do(ctx, func() { reloadClip(cmds, path, log) }); err != nil {
			log.Debug("clip reload skipped", "path", path, "error", err)
		}
	})
	go func() {
		if err := w.Run(ctx); err != nil {
			log.Error("media watcher error", "error", err)
		}
	}()
	log.Info("media watcher started", "root", library.Root())
	return nil
}

// reloadClip points every sound whose parent plays path at the new file.
// Loop goroutine only.
func reloadClip(cmds sound.Commands, path string, log *logging.Logger) {
	for _, name := range cmds.Names() {
		st, code := cmds.Snapshot(name)
		if code != sound.OK || st.Parent.Clip != path {
			continue
		}
		if code := cmds.ChangeClip(name, sound.Parent, path); code != sound.OK {
			log.Warn("clip reload failed", "sound", name, "path", path, "code", code.String())
		}
	}
}
