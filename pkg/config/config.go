// Package config provides YAML-based configuration loading for the
// sockstream CLI.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root CLI configuration.
type Config struct {
	// AppName optional logical name used in log fields
	AppName string `mapstructure:"app_name"`

	// Log holds logging configuration
	Log LogConfig `mapstructure:"log"`

	// TLS holds certificate material for the secure backend
	TLS TLSConfig `mapstructure:"tls"`

	// Transfer holds default transfer bounds applied when flags are unset
	Transfer TransferConfig `mapstructure:"transfer"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Output: stdout, stderr, or a file path
	Output string `mapstructure:"output"`

	// Rotation controls file rotation when Output is a file path
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool `mapstructure:"enable"`
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

// TLSConfig carries certificate material and verification options.
type TLSConfig struct {
	CertFile   string `mapstructure:"cert_file"`
	KeyFile    string `mapstructure:"key_file"`
	ServerName string `mapstructure:"server_name"`
	// Insecure skips peer certificate verification on dial.
	Insecure bool `mapstructure:"insecure"`
}

// TransferConfig mirrors stream.Options for the config file.
type TransferConfig struct {
	Offset    int64 `mapstructure:"offset"`
	Size      int64 `mapstructure:"size"`
	ChunkSize int   `mapstructure:"chunk_size"`
	TimeoutMS int   `mapstructure:"timeout_ms"`
}

// Timeout converts the millisecond field to a duration.
func (t TransferConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutMS) * time.Millisecond
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		AppName: "sockstream",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
			Rotation: RotationConfig{
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
		},
		Transfer: TransferConfig{
			ChunkSize: 4096,
		},
	}
}

// Load reads configuration from path (if non-empty) with environment
// overrides. Environment variables use the prefix SOCKSTREAM and `.`/`-`
// are replaced with `_`. Example: SOCKSTREAM_LOG_LEVEL=debug.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SOCKSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults for viper so env-only configs work
	v.SetDefault("app_name", cfg.AppName)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.output", cfg.Log.Output)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
	v.SetDefault("tls.cert_file", cfg.TLS.CertFile)
	v.SetDefault("tls.key_file", cfg.TLS.KeyFile)
	v.SetDefault("tls.server_name", cfg.TLS.ServerName)
	v.SetDefault("tls.insecure", cfg.TLS.Insecure)
	v.SetDefault("transfer.offset", cfg.Transfer.Offset)
	v.SetDefault("transfer.size", cfg.Transfer.Size)
	v.SetDefault("transfer.chunk_size", cfg.Transfer.ChunkSize)
	v.SetDefault("transfer.timeout_ms", cfg.Transfer.TimeoutMS)

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := v.ReadConfig(f); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Transfer.Offset < 0 {
		return fmt.Errorf("transfer.offset must be >= 0, got %d", c.Transfer.Offset)
	}
	if c.Transfer.ChunkSize <= 0 {
		return fmt.Errorf("transfer.chunk_size must be > 0, got %d", c.Transfer.ChunkSize)
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return fmt.Errorf("tls.cert_file and tls.key_file must be set together")
	}
	return nil
}
