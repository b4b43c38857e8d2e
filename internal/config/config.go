package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Ingestion
	MaxRows     int `mapstructure:"max_rows" yaml:"max_rows"`
	PreviewRows int `mapstructure:"preview_rows" yaml:"preview_rows"`

	// Series defaults applied when a command omits the flags.
	DefaultAggregation string `mapstructure:"default_aggregation" yaml:"default_aggregation"`
	DefaultSortOrder   string `mapstructure:"default_sort_order" yaml:"default_sort_order"`
	DefaultFilterTop   int    `mapstructure:"default_filter_top" yaml:"default_filter_top"`

	// Report persistence
	ReportsDir    string `mapstructure:"reports_dir" yaml:"reports_dir"`
	MinImageBytes int    `mapstructure:"min_image_bytes" yaml:"min_image_bytes"`

	// HTTP server
	ServerAddr         string `mapstructure:"server_addr" yaml:"server_addr"`
	ServerTimeoutSec   int    `mapstructure:"server_timeout_sec" yaml:"server_timeout_sec"`
	ServerMaxUploadMB  int    `mapstructure:"server_max_upload_mb" yaml:"server_max_upload_mb"`
	ServerCORSEnabled  bool   `mapstructure:"server_cors_enabled" yaml:"server_cors_enabled"`
	ServerAccessLogged bool   `mapstructure:"server_access_logged" yaml:"server_access_logged"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.chartloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".chartloom")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CHARTLOOM")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("max_rows", 0)
	v.SetDefault("preview_rows", 10)
	v.SetDefault("default_aggregation", "sum")
	v.SetDefault("default_sort_order", "none")
	v.SetDefault("default_filter_top", 0)
	v.SetDefault("min_image_bytes", 64)
	// Server defaults
	v.SetDefault("server_addr", "127.0.0.1:8080")
	v.SetDefault("server_timeout_sec", 30)
	v.SetDefault("server_max_upload_mb", 64)
	v.SetDefault("server_cors_enabled", true)
	v.SetDefault("server_access_logged", true)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".chartloom")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve reports_dir default: ~/.chartloom/reports
	if c.ReportsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.ReportsDir = filepath.Join(home, ".chartloom", "reports")
	}
	return &c, nil
}
