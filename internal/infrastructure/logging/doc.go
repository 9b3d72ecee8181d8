// Package logging provides structured logging for the KNX log splitter.
//
// This package wraps Go's standard log/slog package so every component
// logs through the same handler with the same default fields.
//
// # Features
//
//   - Text output for terminals (default)
//   - JSON output for log shippers
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr
//
// The --verbose flag forces level debug, which traces every frame decode.
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("telegram log loaded", "telegrams", n)
//
// Never log broker passwords or InfluxDB tokens.
package logging
