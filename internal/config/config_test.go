package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.App.Env)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "memory", cfg.Storage.Driver)
	require.Equal(t, "memory", cfg.Cache.Kind)
	require.Equal(t, "log", cfg.Audit.Sink)
	require.Equal(t, 256, cfg.Audit.QueueSize)
	require.Equal(t, 30*time.Second, cfg.CatalogTTL())
	require.Equal(t, 15*time.Minute, cfg.AccessTTL())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env: prod
server:
  addr: ":9090"
storage:
  driver: postgres
  dsn: postgres://localhost/scopegate
catalog:
  ttl: 1m
jwt:
  issuer: https://id.example.com
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.App.Env)
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, "postgres", cfg.Storage.Driver)
	require.Equal(t, time.Minute, cfg.CatalogTTL())
	require.Equal(t, "https://id.example.com", cfg.JWT.Issuer)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o600))

	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("APP_ENV", "Staging")
	t.Setenv("AUDIT_QUEUE_SIZE", "512")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Server.Addr)
	require.Equal(t, "staging", cfg.App.Env)
	require.Equal(t, 512, cfg.Audit.QueueSize)
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(c *Config)
		wants string
	}{
		{
			name:  "unknown storage driver",
			mut:   func(c *Config) { c.Storage.Driver = "dynamo" },
			wants: "unknown storage driver",
		},
		{
			name:  "postgres without dsn",
			mut:   func(c *Config) { c.Storage.Driver = "postgres" },
			wants: "storage.dsn required",
		},
		{
			name:  "store sink without postgres",
			mut:   func(c *Config) { c.Audit.Sink = "store" },
			wants: "audit.sink=store requires",
		},
		{
			name:  "bad duration",
			mut:   func(c *Config) { c.Catalog.TTL = "banana" },
			wants: "catalog.ttl",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tc.mut(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wants)
		})
	}
}
