package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"symscan/internal/fault"
	"symscan/internal/limits"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	require.Equal(t, "/tmp/symscan.sock", cfg.Socket.Path)
	require.Equal(t, 10*time.Second, cfg.DrainTimeout())
	require.Equal(t, 64*1024, cfg.Parser.ChunkSize)
	require.False(t, cfg.Limits.Extreme)
	require.Zero(t, cfg.Ops.Port)
	require.Equal(t, limits.Default(), cfg.Policy())
}

func TestLoadWithFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
socket:
  path: /run/symscan/s.sock
  drain_timeout_seconds: 3
limits:
  max_size: 1024
  max_urls: 2
parser:
  chunk_size: 512
session:
  rate_per_second: 50
  burst: 10
ops:
  port: 9100
logging:
  development: true
`
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	require.Equal(t, "/run/symscan/s.sock", cfg.Socket.Path)
	require.Equal(t, 3*time.Second, cfg.DrainTimeout())
	require.Equal(t, 512, cfg.Parser.ChunkSize)
	require.Equal(t, 50.0, cfg.Session.RatePerSecond)
	require.Equal(t, 10, cfg.Session.Burst)
	require.Equal(t, 9100, cfg.Ops.Port)
	require.True(t, cfg.Logging.Development)
	require.Equal(t, limits.Policy{MaxSize: 1024, MaxURLs: 2}, cfg.Policy())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	require.True(t, fault.IsKind(err, fault.KindConfig))
}

func TestPolicyResolution(t *testing.T) {
	cases := []struct {
		name string
		in   LimitsConfig
		want limits.Policy
	}{
		{"default profile", LimitsConfig{}, limits.Default()},
		{"extreme profile", LimitsConfig{Extreme: true}, limits.Extreme()},
		{
			"explicit overrides beat default",
			LimitsConfig{MaxSize: 100, MaxURLs: 3},
			limits.Policy{MaxSize: 100, MaxURLs: 3},
		},
		{
			"explicit overrides beat extreme",
			LimitsConfig{Extreme: true, MaxSize: 100},
			limits.Policy{MaxSize: 100, MaxURLs: limits.ExtremeMaxURLs},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{Limits: tc.in}
			require.Equal(t, tc.want, cfg.Policy())
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Socket: SocketConfig{Path: "/tmp/s.sock", DrainTimeoutSeconds: 5},
		Parser: ParserConfig{ChunkSize: 1024},
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty socket path", func(c *Config) { c.Socket.Path = "" }},
		{"zero drain timeout", func(c *Config) { c.Socket.DrainTimeoutSeconds = 0 }},
		{"zero chunk size", func(c *Config) { c.Parser.ChunkSize = 0 }},
		{"negative max size", func(c *Config) { c.Limits.MaxSize = -1 }},
		{"negative max urls", func(c *Config) { c.Limits.MaxURLs = -1 }},
		{"negative rate", func(c *Config) { c.Session.RatePerSecond = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.True(t, fault.IsKind(err, fault.KindConfig))
		})
	}
}

func TestLoadWithFlagOverrides(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("extreme", false, "")
	flags.Int("max-size", 0, "")
	flags.Int("max-urls", 0, "")
	flags.Bool("debug", false, "")
	flags.String("socket", "", "")
	flags.Int("ops-port", 0, "")
	require.NoError(t, flags.Parse([]string{"--extreme", "--max-urls=7", "--socket=/tmp/flag.sock", "--debug"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	require.Equal(t, "/tmp/flag.sock", cfg.Socket.Path)
	require.True(t, cfg.Logging.Development)
	require.Equal(t, limits.Policy{MaxSize: limits.ExtremeMaxSize, MaxURLs: 7}, cfg.Policy())
}
