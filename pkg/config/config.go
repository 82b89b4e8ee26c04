package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Transmit  TransmitConfig  `mapstructure:"transmit"`
	Output    OutputConfig    `mapstructure:"output"`
	Stdin     StdinConfig     `mapstructure:"stdin"`
	Intake    IntakeConfig    `mapstructure:"intake"`
	Web       WebConfig       `mapstructure:"web"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig holds server identification
type ServerConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
}

// TransmitConfig holds the encoder and pacing settings
type TransmitConfig struct {
	BaudRate   int    `mapstructure:"baud_rate"`   // 512, 1200, or 2400
	SampleRate int    `mapstructure:"sample_rate"` // output PCM rate in Hz
	Inverted   bool   `mapstructure:"inverted"`    // swap FSK polarity
	QueueSize  int    `mapstructure:"queue_size"`  // pending page backlog
	AddressACL string `mapstructure:"address_acl"` // PERMIT:/DENY: address rules
	MinDelay   int    `mapstructure:"min_delay"`   // seconds of silence between pages, lower bound
	MaxDelay   int    `mapstructure:"max_delay"`   // upper bound (exclusive)
}

// OutputConfig selects where rendered PCM goes
type OutputConfig struct {
	Target string `mapstructure:"target"` // stdout, file, or playback
	Path   string `mapstructure:"path"`   // for file; a .wav extension selects the WAV container
}

// StdinConfig controls the stdin line feeder
type StdinConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// IntakeConfig holds the TCP line-intake listener settings
type IntakeConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// WebConfig holds web dashboard configuration
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// DatabaseConfig holds page-history storage configuration
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DirectoryConfig holds subscriber-directory sync configuration
type DirectoryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	File         string `mapstructure:"file"`          // local CSV path
	URL          string `mapstructure:"url"`           // or HTTP CSV source
	SyncInterval int    `mapstructure:"sync_interval"` // hours between refreshes
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled    bool             `mapstructure:"enabled"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig holds Prometheus exposition configuration
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	// Set defaults
	setDefaults()

	// Set config file
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/pocsag-nexus")
	}

	// Environment variables
	viper.SetEnvPrefix("POCSAG")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is OK, use defaults
		} else if os.IsNotExist(err) {
			// File explicitly specified but doesn't exist - that's also OK
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal to struct
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.name", "POCSAG-Nexus")
	viper.SetDefault("server.description", "Go POCSAG paging encoder")

	// Transmit defaults
	viper.SetDefault("transmit.baud_rate", 512)
	viper.SetDefault("transmit.sample_rate", 22050)
	viper.SetDefault("transmit.inverted", false)
	viper.SetDefault("transmit.queue_size", 64)
	viper.SetDefault("transmit.address_acl", "PERMIT:ALL")
	viper.SetDefault("transmit.min_delay", 1)
	viper.SetDefault("transmit.max_delay", 10)

	// Output defaults
	viper.SetDefault("output.target", "stdout")

	// Intake defaults
	viper.SetDefault("stdin.enabled", true)
	viper.SetDefault("intake.enabled", false)
	viper.SetDefault("intake.host", "0.0.0.0")
	viper.SetDefault("intake.port", 16180)

	// Web defaults
	viper.SetDefault("web.enabled", false)
	viper.SetDefault("web.host", "0.0.0.0")
	viper.SetDefault("web.port", 8080)

	// Database defaults
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.path", "pocsag-nexus.db")

	// Directory defaults
	viper.SetDefault("directory.enabled", false)
	viper.SetDefault("directory.sync_interval", 24)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.prometheus.enabled", false)
	viper.SetDefault("metrics.prometheus.host", "0.0.0.0")
	viper.SetDefault("metrics.prometheus.port", 9090)
	viper.SetDefault("metrics.prometheus.path", "/metrics")
}
