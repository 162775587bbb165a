// Package config loads memora settings from defaults, a YAML file and
// MEMORA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goliatone/go-memora/pkg/album"
	"github.com/goliatone/go-memora/pkg/gateway"
	"github.com/goliatone/go-memora/pkg/request"
	"github.com/goliatone/go-memora/pkg/wizard"
)

// EnvPrefix is prepended to environment overrides (MEMORA_GATEWAY_MODE).
const EnvPrefix = "MEMORA"

// Gateway modes.
const (
	GatewayMock = "mock"
	GatewayHTTP = "http"
)

// Config is the complete memora configuration.
type Config struct {
	Flows   FlowsConfig   `mapstructure:"flows"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Session SessionConfig `mapstructure:"session"`
}

// FlowsConfig holds per-flow bounds.
type FlowsConfig struct {
	Album   album.Config   `mapstructure:"album"`
	Request request.Config `mapstructure:"request"`
}

// GatewayConfig selects where submissions go.
type GatewayConfig struct {
	// Mode is "mock" (in-process) or "http".
	Mode     string `mapstructure:"mode"`
	Endpoint string `mapstructure:"endpoint"`
	// Latency is the simulated delay of the mock gateway.
	Latency time.Duration `mapstructure:"latency"`
	// Timeout bounds each submission.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig controls the intake API.
type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	FlowTTL       time.Duration `mapstructure:"flow_ttl"`
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
	MaxUploadMB   int           `mapstructure:"max_upload_mb"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// SessionConfig controls where the CLI keeps its sign-in.
type SessionConfig struct {
	Path string `mapstructure:"path"`
	// Delay simulates the round trip of the sign-in endpoints.
	Delay bool `mapstructure:"delay"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Flows: FlowsConfig{
			Album:   album.DefaultConfig(),
			Request: request.DefaultConfig(),
		},
		Gateway: GatewayConfig{
			Mode:    GatewayMock,
			Latency: gateway.DefaultLatency,
			Timeout: wizard.DefaultSubmitTimeout,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			FlowTTL:       30 * time.Minute,
			ShutdownGrace: 10 * time.Second,
			MaxUploadMB:   64,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Session: SessionConfig{
			Delay: true,
		},
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("flows.album.styles.min", defaults.Flows.Album.Styles.Min)
	v.SetDefault("flows.album.styles.max", defaults.Flows.Album.Styles.Max)
	v.SetDefault("flows.album.photos.min", defaults.Flows.Album.Photos.Min)
	v.SetDefault("flows.album.photos.max", defaults.Flows.Album.Photos.Max)
	v.SetDefault("flows.album.photos.max_mb", defaults.Flows.Album.Photos.MaxMB)

	v.SetDefault("flows.request.categories.min", defaults.Flows.Request.Categories.Min)
	v.SetDefault("flows.request.categories.max", defaults.Flows.Request.Categories.Max)
	v.SetDefault("flows.request.photos.min", defaults.Flows.Request.Photos.Min)
	v.SetDefault("flows.request.photos.max", defaults.Flows.Request.Photos.Max)
	v.SetDefault("flows.request.photos.max_mb", defaults.Flows.Request.Photos.MaxMB)
	v.SetDefault("flows.request.description_min", defaults.Flows.Request.DescriptionMin)

	v.SetDefault("gateway.mode", defaults.Gateway.Mode)
	v.SetDefault("gateway.endpoint", defaults.Gateway.Endpoint)
	v.SetDefault("gateway.latency", defaults.Gateway.Latency)
	v.SetDefault("gateway.timeout", defaults.Gateway.Timeout)

	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.flow_ttl", defaults.Server.FlowTTL)
	v.SetDefault("server.shutdown_grace", defaults.Server.ShutdownGrace)
	v.SetDefault("server.max_upload_mb", defaults.Server.MaxUploadMB)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("log.file", defaults.Log.File)

	v.SetDefault("session.path", defaults.Session.Path)
	v.SetDefault("session.delay", defaults.Session.Delay)
}

// NewViper returns a viper instance with defaults, env binding and, when
// file is non-empty, that config file. Without a file it searches the
// working directory and ConfigDir for memora.yaml.
func NewViper(file string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("memora")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
	}
	return v
}

// Load reads the optional config file into v, unmarshals and validates.
// A missing file is not an error when it was only searched for.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}

// ConfigDir returns the user's memora config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "memora")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".memora"
	}
	return filepath.Join(home, ".config", "memora")
}
