// Package config provides configuration management for Hologram
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/normanking/hologram/internal/face"
)

// Config holds all application configuration
type Config struct {
	Model      ModelConfig           `mapstructure:"model" yaml:"model"`
	Detector   DetectorConfig        `mapstructure:"detector" yaml:"detector"`
	Tracking   TrackingConfig        `mapstructure:"tracking" yaml:"tracking"`
	Expression face.ExpressionRanges `mapstructure:"expression" yaml:"expression"`
	Logging    LoggingConfig         `mapstructure:"logging" yaml:"logging"`
	Metrics    MetricsConfig         `mapstructure:"metrics" yaml:"metrics"`
}

// ModelConfig selects the avatar
type ModelConfig struct {
	Path        string `mapstructure:"path" yaml:"path"`                 // .glb, .gltf or .vrm
	OptionsPath string `mapstructure:"options_path" yaml:"options_path"` // per-model retargeting options
	Attachment  string `mapstructure:"attachment" yaml:"attachment"`     // optional clothing/accessory model
	Watch       bool   `mapstructure:"watch" yaml:"watch"`               // reload options on change
}

// DetectorConfig configures the landmark detector connection
type DetectorConfig struct {
	URL               string        `mapstructure:"url" yaml:"url"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay" yaml:"reconnect_delay"`
	MaxReconnectDelay time.Duration `mapstructure:"max_reconnect_delay" yaml:"max_reconnect_delay"`
	Body              bool          `mapstructure:"body" yaml:"body"` // request pose and hand landmarks
}

// TrackingConfig configures the frame loop
type TrackingConfig struct {
	FrameRate int           `mapstructure:"frame_rate" yaml:"frame_rate"`
	Interval  time.Duration `mapstructure:"interval" yaml:"interval"`     // initial smoother interval estimate
	LostAfter time.Duration `mapstructure:"lost_after" yaml:"lost_after"` // face is lost without a prediction for this long
	FullBody  bool          `mapstructure:"full_body" yaml:"full_body"`
}

// LoggingConfig configures log output
type LoggingConfig struct {
	Dir     string `mapstructure:"dir" yaml:"dir"`
	Level   string `mapstructure:"level" yaml:"level"`
	Console bool   `mapstructure:"console" yaml:"console"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Detector: DetectorConfig{
			URL:               "ws://localhost:8765/landmarks",
			ReconnectDelay:    3 * time.Second,
			MaxReconnectDelay: 60 * time.Second,
		},
		Tracking: TrackingConfig{
			FrameRate: 60,
			Interval:  30 * time.Millisecond,
			LostAfter: 500 * time.Millisecond,
		},
		Expression: face.DefaultExpressionRanges(),
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
		Metrics: MetricsConfig{
			Addr: ":9464",
		},
	}
}

// Load reads configuration from path, or from config.yaml in the config
// directory or working directory when path is empty. HOLOGRAM_* environment
// variables override file values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	viper.SetDefault("model.path", cfg.Model.Path)
	viper.SetDefault("detector.url", cfg.Detector.URL)
	viper.SetDefault("logging.level", cfg.Logging.Level)
	viper.SetDefault("metrics.addr", cfg.Metrics.Addr)

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		configDir, err := GetConfigDir()
		if err != nil {
			return cfg, err
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir)
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	viper.SetEnvPrefix("HOLOGRAM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports configuration that cannot run.
func (c *Config) Validate() error {
	if c.Tracking.FrameRate <= 0 {
		return fmt.Errorf("tracking.frame_rate must be positive, got %d", c.Tracking.FrameRate)
	}
	if c.Tracking.Interval <= 0 {
		return fmt.Errorf("tracking.interval must be positive, got %s", c.Tracking.Interval)
	}
	if c.Detector.ReconnectDelay <= 0 || c.Detector.MaxReconnectDelay < c.Detector.ReconnectDelay {
		return fmt.Errorf("detector reconnect delays out of order: %s, %s",
			c.Detector.ReconnectDelay, c.Detector.MaxReconnectDelay)
	}
	return nil
}

// FrameInterval is the frame loop period.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Tracking.FrameRate)
}

// Save writes the configuration to path
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	v := viper.New()
	v.Set("model", cfg.Model)
	v.Set("detector", cfg.Detector)
	v.Set("tracking", cfg.Tracking)
	v.Set("expression", cfg.Expression)
	v.Set("logging", cfg.Logging)
	v.Set("metrics", cfg.Metrics)

	return v.WriteConfigAs(path)
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".hologram"), nil
}
