// Package config handles loading and validating the KNX log splitter
// configuration.
//
// This package manages:
//   - Loading configuration from an optional YAML file
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Command-line flags are applied by the caller on top of the loaded Config.
//
// Security Considerations:
//   - Broker passwords and InfluxDB tokens should be set via environment
//     variables (KNXSPLIT_MQTT_PASSWORD, KNXSPLIT_INFLUXDB_TOKEN)
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load(os.Getenv(config.EnvConfigPath))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Splitter.Filters)
package config
