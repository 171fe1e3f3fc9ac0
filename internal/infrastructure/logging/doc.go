// Package logging provides structured logging for Gray Logic Audio.
//
// It wraps log/slog with:
//
//   - JSON output for production and text output for development
//   - service and version fields on every entry
//   - a shared level that can be changed at runtime (see Logger.SetLevel)
//
// Logging is configured in the YAML:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 8090)
//
// Never log secrets such as the MQTT password or InfluxDB token.
package logging
