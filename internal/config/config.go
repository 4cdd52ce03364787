// Package config loads runtime configuration from an optional YAML file
// with environment-variable overrides.
package config

// #region imports
import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// #endregion

// #region duration

// Duration is a time.Duration that unmarshals from YAML strings like "2h".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// #endregion duration

// #region config

// Config is the full runtime configuration.
type Config struct {
	DBPath        string       `yaml:"db_path"`
	SentimentAddr string       `yaml:"sentiment_addr"`
	Engine        EngineConfig `yaml:"engine"`
}

// EngineConfig holds coordination-core tuning knobs.
type EngineConfig struct {
	VolatileAfter   Duration `yaml:"volatile_after"`
	IdleResetAfter  Duration `yaml:"idle_reset_after"`
	CacheTTL        Duration `yaml:"cache_ttl"`
	SweepInterval   Duration `yaml:"sweep_interval"`
	MaxCascadeDepth int      `yaml:"max_cascade_depth"`
	BurstWindow     Duration `yaml:"burst_window"`
	BurstThreshold  int      `yaml:"burst_threshold"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		DBPath:        "disposition.db",
		SentimentAddr: "localhost:50051",
		Engine: EngineConfig{
			VolatileAfter:   Duration(2 * time.Hour),
			IdleResetAfter:  Duration(6 * time.Hour),
			CacheTTL:        Duration(30 * time.Minute),
			SweepInterval:   Duration(5 * time.Minute),
			MaxCascadeDepth: 16,
			BurstWindow:     Duration(90 * time.Second),
			BurstThreshold:  5,
		},
	}
}

// #endregion config

// #region load

// Load reads path (when non-empty) over the defaults, then applies env
// overrides. A missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.DBPath = envOr("DISPOSITION_DB", cfg.DBPath)
	cfg.SentimentAddr = envOr("SENTIMENT_ADDR", cfg.SentimentAddr)

	return cfg, nil
}

// #endregion load

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
