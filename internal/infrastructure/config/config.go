package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envPrefix is prepended to every environment override.
const envPrefix = "GRAYLOGIC_AUDIO_"

// Config is the root configuration structure for Gray Logic Audio.
// Values come from defaults, then an optional .env file, then YAML, then
// environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Engine    EngineConfig    `yaml:"engine"`
	Media     MediaConfig     `yaml:"media"`
	Mixer     MixerConfig     `yaml:"mixer"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SiteConfig identifies the installation.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// EngineConfig controls the tick loop that drives the sound manager.
type EngineConfig struct {
	// TickHz is how many frames per second the loop advances.
	TickHz int `yaml:"tick_hz"`
	// MaxProgress is the exclusive upper bound for progress thresholds.
	MaxProgress float64 `yaml:"max_progress"`
	// CommandQueue is the buffer size of the cross-goroutine command queue.
	CommandQueue int `yaml:"command_queue"`
}

// MediaConfig controls clip loading.
type MediaConfig struct {
	Root       string   `yaml:"root"`
	CacheTTL   int      `yaml:"cache_ttl"` // seconds
	Watch      bool     `yaml:"watch"`
	Extensions []string `yaml:"extensions"`
}

// MixerConfig declares mix buses and the parameters they expose.
type MixerConfig struct {
	Buses []BusConfig `yaml:"buses"`
}

// BusConfig is one mix bus. Params maps exposed parameter names to their
// default values.
type BusConfig struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params"`
}

// CatalogConfig seeds the sound catalog on first start.
type CatalogConfig struct {
	Seed []SoundSeed `yaml:"seed"`
}

// SoundSeed is a catalog entry declared in YAML.
type SoundSeed struct {
	Name     string  `yaml:"name"`
	Path     string  `yaml:"path"`
	Volume   float64 `yaml:"volume"`
	Pitch    float64 `yaml:"pitch"`
	Loop     bool    `yaml:"loop"`
	Bus      string  `yaml:"bus"`
	Blend    float64 `yaml:"blend"`
	Autoplay bool    `yaml:"autoplay"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
	// HistoryRetention is how many days playback history is kept. 0 keeps
	// everything.
	HistoryRetention int `yaml:"history_retention"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file.
//
// The loading order is:
//  1. Default values
//  2. A .env file next to the config (or GRAYLOGIC_AUDIO_ENV_FILE), if present
//  3. YAML file values
//  4. GRAYLOGIC_AUDIO_* environment variables
//
// Variables already set in the process environment win over the .env file.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if err := loadDotEnv(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadDotEnv(configPath string) error {
	envFile := os.Getenv(envPrefix + "ENV_FILE")
	explicit := envFile != ""
	if !explicit {
		envFile = filepath.Join(filepath.Dir(configPath), ".env")
	}

	err := godotenv.Load(envFile)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading env file %s: %w", envFile, err)
}

func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "site-001",
			Name: "Gray Logic Audio",
		},
		Engine: EngineConfig{
			TickHz:       60,
			MaxProgress:  0.99,
			CommandQueue: 256,
		},
		Media: MediaConfig{
			Root:       "./media",
			CacheTTL:   600,
			Watch:      true,
			Extensions: []string{".mp3", ".wav"},
		},
		Database: DatabaseConfig{
			Path:             "./data/graylogic-audio.db",
			WALMode:          true,
			BusyTimeout:      5,
			HistoryRetention: 30,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graylogic-audio",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			Bucket:        "audio",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies GRAYLOGIC_AUDIO_SECTION_KEY overrides.
func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(envPrefix + key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(envPrefix + key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("DATABASE_PATH", &cfg.Database.Path)
	setString("MEDIA_ROOT", &cfg.Media.Root)
	setInt("ENGINE_TICK_HZ", &cfg.Engine.TickHz)

	setBool("MQTT_ENABLED", &cfg.MQTT.Enabled)
	setString("MQTT_HOST", &cfg.MQTT.Broker.Host)
	setInt("MQTT_PORT", &cfg.MQTT.Broker.Port)
	setString("MQTT_USERNAME", &cfg.MQTT.Auth.Username)
	setString("MQTT_PASSWORD", &cfg.MQTT.Auth.Password)

	setString("API_HOST", &cfg.API.Host)
	setInt("API_PORT", &cfg.API.Port)

	setBool("INFLUXDB_ENABLED", &cfg.InfluxDB.Enabled)
	setString("INFLUXDB_URL", &cfg.InfluxDB.URL)
	setString("INFLUXDB_TOKEN", &cfg.InfluxDB.Token)

	setString("LOG_LEVEL", &cfg.Logging.Level)
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}
	if c.Engine.TickHz < 1 || c.Engine.TickHz > 1000 {
		errs = append(errs, "engine.tick_hz must be between 1 and 1000")
	}
	if c.Engine.MaxProgress <= 0 || c.Engine.MaxProgress > 0.99 {
		errs = append(errs, "engine.max_progress must be in (0, 0.99]")
	}
	if c.Media.Root == "" {
		errs = append(errs, "media.root is required")
	}
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	seen := make(map[string]bool, len(c.Mixer.Buses))
	for i, b := range c.Mixer.Buses {
		switch {
		case b.Name == "":
			errs = append(errs, fmt.Sprintf("mixer.buses[%d].name is required", i))
		case seen[b.Name]:
			errs = append(errs, fmt.Sprintf("mixer.buses[%d].name %q is duplicated", i, b.Name))
		}
		seen[b.Name] = true
	}
	for i, s := range c.Catalog.Seed {
		if s.Name == "" || s.Path == "" {
			errs = append(errs, fmt.Sprintf("catalog.seed[%d] needs name and path", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// TickInterval returns the duration of one engine frame.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Engine.TickHz)
}

// MediaCacheTTL returns the asset cache expiry.
func (c *Config) MediaCacheTTL() time.Duration {
	return time.Duration(c.Media.CacheTTL) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
