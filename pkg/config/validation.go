package config

import (
	"fmt"
	"strings"
)

// validate validates the configuration
func validate(cfg *Config) error {
	// Validate transmit config
	switch cfg.Transmit.BaudRate {
	case 512, 1200, 2400:
	default:
		return fmt.Errorf("transmit.baud_rate must be 512, 1200, or 2400, got %d", cfg.Transmit.BaudRate)
	}

	if cfg.Transmit.SampleRate < 1 || cfg.Transmit.SampleRate > 192000 {
		return fmt.Errorf("transmit.sample_rate must be between 1 and 192000, got %d", cfg.Transmit.SampleRate)
	}

	if cfg.Transmit.QueueSize < 1 {
		return fmt.Errorf("transmit.queue_size must be positive, got %d", cfg.Transmit.QueueSize)
	}

	if cfg.Transmit.MinDelay < 0 {
		return fmt.Errorf("transmit.min_delay must not be negative, got %d", cfg.Transmit.MinDelay)
	}

	if cfg.Transmit.MaxDelay < cfg.Transmit.MinDelay {
		return fmt.Errorf("transmit.max_delay must be >= transmit.min_delay, got %d < %d",
			cfg.Transmit.MaxDelay, cfg.Transmit.MinDelay)
	}

	if cfg.Transmit.AddressACL != "" {
		if !strings.HasPrefix(cfg.Transmit.AddressACL, "PERMIT:") && !strings.HasPrefix(cfg.Transmit.AddressACL, "DENY:") {
			return fmt.Errorf("transmit.address_acl must start with PERMIT: or DENY:")
		}
	}

	// Validate output config
	switch cfg.Output.Target {
	case "stdout", "playback":
	case "file":
		if cfg.Output.Path == "" {
			return fmt.Errorf("output.path is required when output.target is file")
		}
	default:
		return fmt.Errorf("output.target must be stdout, file, or playback, got %q", cfg.Output.Target)
	}

	// Validate intake config
	if cfg.Intake.Enabled {
		if cfg.Intake.Port < 1 || cfg.Intake.Port > 65535 {
			return fmt.Errorf("invalid intake port: %d", cfg.Intake.Port)
		}
	}

	// Validate web config
	if cfg.Web.Enabled {
		if cfg.Web.Port < 1 || cfg.Web.Port > 65535 {
			return fmt.Errorf("invalid web port: %d", cfg.Web.Port)
		}
	}

	// Validate database config
	if cfg.Database.Enabled {
		if cfg.Database.Path == "" {
			return fmt.Errorf("database.path is required when database is enabled")
		}
	}

	// Validate directory config
	if cfg.Directory.Enabled {
		if !cfg.Database.Enabled {
			return fmt.Errorf("directory.enabled requires database.enabled")
		}
		if cfg.Directory.File == "" && cfg.Directory.URL == "" {
			return fmt.Errorf("directory requires either a file or a url source")
		}
		if cfg.Directory.File != "" && cfg.Directory.URL != "" {
			return fmt.Errorf("directory.file and directory.url are mutually exclusive")
		}
		if cfg.Directory.SyncInterval < 1 {
			return fmt.Errorf("directory.sync_interval must be positive, got %d", cfg.Directory.SyncInterval)
		}
	}

	// Validate metrics config
	if cfg.Metrics.Prometheus.Enabled {
		if cfg.Metrics.Prometheus.Port < 1 || cfg.Metrics.Prometheus.Port > 65535 {
			return fmt.Errorf("invalid prometheus port: %d", cfg.Metrics.Prometheus.Port)
		}
	}

	return nil
}
