package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the default config
// file path.
const EnvConfigPath = "KNXSPLIT_CONFIG"

// Config is the root configuration structure for the KNX log splitter.
// Values are loaded from an optional YAML file and can be overridden by
// environment variables and command-line flags.
type Config struct {
	Splitter  SplitterConfig  `yaml:"splitter"`
	Logging   LoggingConfig   `yaml:"logging"`
	Inventory InventoryConfig `yaml:"inventory"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
}

// SplitterConfig contains the telegram routing and output settings.
type SplitterConfig struct {
	// Filters are group address prefixes selecting the filtered output,
	// e.g. "0/7/". A trailing "/" is added where missing.
	Filters []string `yaml:"filters"`

	// OutputDir receives both output files.
	OutputDir string `yaml:"output_dir"`

	// OtherFile is the name of the file receiving non-matching telegrams.
	OtherFile string `yaml:"other_file"`

	// DiscardOthers skips writing OtherFile.
	DiscardOthers bool `yaml:"discard_others"`

	// Progress shows a progress bar on stderr while partitioning.
	Progress bool `yaml:"progress"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// InventoryConfig contains settings for the SQLite address inventory.
type InventoryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool             `yaml:"enabled"`
	Broker      MQTTBrokerConfig `yaml:"broker"`
	Auth        MQTTAuthConfig   `yaml:"auth"`
	QoS         int              `yaml:"qos"`
	TopicPrefix string           `yaml:"topic_prefix"`

	// ConnectTimeout bounds the initial connection and each publish, in seconds.
	ConnectTimeout int `yaml:"connect_timeout"`
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

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled   bool   `yaml:"enabled"`
	URL       string `yaml:"url"`
	Token     string `yaml:"token"`
	Org       string `yaml:"org"`
	Bucket    string `yaml:"bucket"`
	BatchSize int    `yaml:"batch_size"`
}

// Load builds the configuration and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults), skipped when path is empty
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: KNXSPLIT_SECTION_KEY
// For example: KNXSPLIT_OUTPUT_DIR, KNXSPLIT_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for none
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Splitter: SplitterConfig{
			Filters:   []string{"0/7/"},
			OutputDir: ".",
			OtherFile: "knx_tel.xml",
			Progress:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Inventory: InventoryConfig{
			Path:        "./data/knx_inventory.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "knxsplit",
			},
			QoS:            1,
			TopicPrefix:    "knxsplit",
			ConnectTimeout: 10,
		},
		InfluxDB: InfluxDBConfig{
			URL:       "http://localhost:8086",
			Org:       "knx",
			Bucket:    "knx_logs",
			BatchSize: 100,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: KNXSPLIT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Splitter
	if v := os.Getenv("KNXSPLIT_OUTPUT_DIR"); v != "" {
		cfg.Splitter.OutputDir = v
	}

	// Logging
	if v := os.Getenv("KNXSPLIT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Inventory
	if v := os.Getenv("KNXSPLIT_INVENTORY_PATH"); v != "" {
		cfg.Inventory.Path = v
	}

	// MQTT
	if v := os.Getenv("KNXSPLIT_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("KNXSPLIT_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("KNXSPLIT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("KNXSPLIT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors. All problems are reported
// together.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Splitter validation
	for _, f := range c.Splitter.Filters {
		if !validFilter(f) {
			errs = append(errs, fmt.Sprintf("splitter.filters: %q is not a group address prefix", f))
		}
	}
	if c.Splitter.OutputDir == "" {
		errs = append(errs, "splitter.output_dir is required")
	}
	if c.Splitter.OtherFile == "" {
		errs = append(errs, "splitter.other_file is required")
	} else if strings.ContainsAny(c.Splitter.OtherFile, `/\`) {
		errs = append(errs, "splitter.other_file must be a file name, not a path")
	}

	// Logging validation
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, "logging.level must be debug, info, warn, or error")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, "logging.format must be json or text")
	}
	switch strings.ToLower(c.Logging.Output) {
	case "stdout", "stderr":
	default:
		errs = append(errs, "logging.output must be stdout or stderr")
	}

	// Inventory validation
	if c.Inventory.Enabled && c.Inventory.Path == "" {
		errs = append(errs, "inventory.path is required when inventory is enabled")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
		if c.MQTT.TopicPrefix == "" {
			errs = append(errs, "mqtt.topic_prefix is required when mqtt is enabled")
		}
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.org and influxdb.bucket are required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetConnectTimeout returns the MQTT connect timeout as a Duration.
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.MQTT.ConnectTimeout) * time.Second
}

// validFilter reports whether f looks like a group address prefix:
// one to three numeric levels separated by "/", optionally "/" terminated.
func validFilter(f string) bool {
	levels := strings.Split(strings.TrimSuffix(f, "/"), "/")
	if len(levels) > 3 {
		return false
	}
	for _, l := range levels {
		if l == "" || strings.Trim(l, "0123456789") != "" {
			return false
		}
	}
	return true
}
