// Package config handles loading and validating Gray Logic Audio configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Reading an optional .env file with godotenv
//   - Overriding with GRAYLOGIC_AUDIO_* environment variables
//   - Validation of required fields
//
// Sensitive values (MQTT password, InfluxDB token) should be set through the
// environment or the .env file rather than the YAML.
//
// Usage:
//
//	cfg, err := config.Load("configs/audio.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Engine.TickHz)
package config
