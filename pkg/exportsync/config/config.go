// Package config loads exportsync configuration from file, environment and
// defaults, and centralizes the output directory layout.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Defaults for the upstream origin and the local mirror.
const (
	DefaultOriginURL  = "https://origin.warframe.com"
	DefaultContentURL = "https://content.warframe.com"
	DefaultOutputDir  = "./output"
	DefaultWorkers    = 8

	// DefaultCanonicalSize is the primary stored resolution for textures.
	DefaultCanonicalSize = 512
)

// DefaultImageSizes are the square derivative renditions produced per
// texture, largest first.
var DefaultImageSizes = []int{256, 128, 64, 32}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Components map[string]string `mapstructure:"components"`
}

// Config represents the application configuration.
type Config struct {
	OriginURL     string        `mapstructure:"origin_url"`
	ContentURL    string        `mapstructure:"content_url"`
	ProxyToken    string        `mapstructure:"proxy_token"`
	OutputDir     string        `mapstructure:"output_dir"`
	Workers       int           `mapstructure:"workers"`
	CanonicalSize int           `mapstructure:"canonical_size"`
	ImageSizes    []int         `mapstructure:"image_sizes"`
	Logging       LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/exportsync/config.yaml
//   - $HOME/.config/exportsync/config.yaml
//
// Environment variables are prefixed with EXPORTSYNC_
// (e.g., EXPORTSYNC_OUTPUT_DIR, EXPORTSYNC_PROXY_TOKEN).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "exportsync"))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".config", "exportsync"))
	}

	v.SetEnvPrefix("EXPORTSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (ignore if not found).
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers defaults on a viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("origin_url", DefaultOriginURL)
	v.SetDefault("content_url", DefaultContentURL)
	v.SetDefault("proxy_token", "")
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("canonical_size", DefaultCanonicalSize)
	v.SetDefault("image_sizes", DefaultImageSizes)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.components", map[string]string{})
}

// ConfigDir returns the configuration directory path.
func ConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "exportsync")
	}
	return filepath.Join(xdg.ConfigHome, "exportsync")
}

// WriteDefault writes a default config file if none exists.
// Returns the config path and whether a file was written.
func WriteDefault() (string, bool, error) {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# exportsync configuration

# Upstream hosts for the export index and downloadable content
origin_url: %s
content_url: %s

# Optional X-Proxy-Token header sent with index requests
proxy_token: ""

# Local mirror root
output_dir: %s

# Maximum concurrent downloads
workers: %d

# Texture sizes: one canonical copy plus square derivatives
canonical_size: %d
image_sizes: [256, 128, 64, 32]

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Per-component log levels
  components: {}
`, DefaultOriginURL, DefaultContentURL, DefaultOutputDir, DefaultWorkers, DefaultCanonicalSize)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write default config: %w", err)
	}

	return configPath, true, nil
}
