// Package config provides configuration management for cryptogram-sync.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults live in the `default` struct tags of each section and
// are registered by reflection, so every key can be overridden with SECTION_KEY.
//
// # Configuration Structure
//
//   - Server: HTTP control server (address, API key, background interval)
//   - Log: logging level and format
//   - Database: local game store (sqlite or mysql)
//   - Storage: S3/MinIO diagnostics archive
//   - Remote: sync server URL and timeouts
//   - Auth: bearer token and optional OAuth2 refresh credentials
//   - Sync: owner id and reconciliation policy
//   - Events: NATS JetStream cycle events
//   - Telemetry: OpenTelemetry tracing
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.MaxConcurrency)
package config
