// Package config loads and validates symscan configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"symscan/internal/fault"
	"symscan/internal/limits"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Socket  SocketConfig  `mapstructure:"socket"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	Parser  ParserConfig  `mapstructure:"parser"`
	Session SessionConfig `mapstructure:"session"`
	Ops     OpsConfig     `mapstructure:"ops"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SocketConfig controls the listening endpoint.
type SocketConfig struct {
	Path                string `mapstructure:"path"`
	DrainTimeoutSeconds int    `mapstructure:"drain_timeout_seconds"`
}

// LimitsConfig selects the limit policy. Extreme switches profiles; explicit
// positive MaxSize/MaxURLs values override the selected profile.
type LimitsConfig struct {
	MaxSize int  `mapstructure:"max_size"`
	MaxURLs int  `mapstructure:"max_urls"`
	Extreme bool `mapstructure:"extreme"`
}

// ParserConfig governs the chunked scan.
type ParserConfig struct {
	ChunkSize int `mapstructure:"chunk_size"`
}

// SessionConfig throttles per-session message intake. A zero rate disables
// throttling.
type SessionConfig struct {
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// OpsConfig controls the operational HTTP endpoint. Port zero disables it.
type OpsConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. Flags, when provided, take
// precedence over both; viper handles the layering.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SYMSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return Config{}, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fault.Wrap(fault.KindConfig, "read config", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fault.Wrap(fault.KindConfig, "unmarshal config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("socket.path", "/tmp/symscan.sock")
	v.SetDefault("socket.drain_timeout_seconds", 10)
	v.SetDefault("limits.max_size", 0)
	v.SetDefault("limits.max_urls", 0)
	v.SetDefault("limits.extreme", false)
	v.SetDefault("parser.chunk_size", 64*1024)
	v.SetDefault("session.rate_per_second", 0)
	v.SetDefault("session.burst", 0)
	v.SetDefault("ops.port", 0)
	v.SetDefault("logging.development", false)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"limits.extreme":      "extreme",
		"limits.max_size":     "max-size",
		"limits.max_urls":     "max-urls",
		"logging.development": "debug",
		"socket.path":         "socket",
		"ops.port":            "ops-port",
	}
	for key, name := range bindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fault.Wrap(fault.KindConfig, fmt.Sprintf("bind flag %s", name), err)
		}
	}
	return nil
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Socket.Path == "" {
		return fault.New(fault.KindConfig, "socket.path must be set")
	}
	if c.Socket.DrainTimeoutSeconds <= 0 {
		return fault.New(fault.KindConfig, "socket.drain_timeout_seconds must be > 0")
	}
	if c.Parser.ChunkSize <= 0 {
		return fault.New(fault.KindConfig, "parser.chunk_size must be > 0")
	}
	if c.Limits.MaxSize < 0 {
		return fault.New(fault.KindConfig, "limits.max_size must not be negative")
	}
	if c.Limits.MaxURLs < 0 {
		return fault.New(fault.KindConfig, "limits.max_urls must not be negative")
	}
	if c.Session.RatePerSecond < 0 {
		return fault.New(fault.KindConfig, "session.rate_per_second must not be negative")
	}
	return c.Policy().Validate()
}

// Policy resolves the configured limit policy: profile first, explicit
// overrides second.
func (c Config) Policy() limits.Policy {
	p := limits.Default()
	if c.Limits.Extreme {
		p = limits.Extreme()
	}
	if c.Limits.MaxSize > 0 {
		p.MaxSize = c.Limits.MaxSize
	}
	if c.Limits.MaxURLs > 0 {
		p.MaxURLs = c.Limits.MaxURLs
	}
	return p
}

// DrainTimeout converts the configured drain window into a duration.
func (c Config) DrainTimeout() time.Duration {
	return time.Duration(c.Socket.DrainTimeoutSeconds) * time.Second
}
