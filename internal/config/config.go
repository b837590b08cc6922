// Package config carga la configuración del servicio: config.yaml con
// overrides por variables de entorno.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
		// Base URL de la consent UI a la que se redirige el usuario.
		ConsentUIBaseURL string `yaml:"consent_ui_base_url"`
	} `yaml:"server"`

	Storage struct {
		// memory | postgres
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr string `yaml:"addr"`
			DB   int    `yaml:"db"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Catalog struct {
		// TTL de las entradas del catálogo de políticas en cache.
		TTL string `yaml:"ttl"`
	} `yaml:"catalog"`

	JWT struct {
		Issuer      string `yaml:"issuer"`
		AccessTTL   string `yaml:"access_ttl"`
		IDTokenTTL  string `yaml:"id_token_ttl"`
		SigningSeed string `yaml:"signing_seed"` // 32 bytes base64url; vacío => efímero
	} `yaml:"jwt"`

	Audit struct {
		// log | store (store requiere storage.driver postgres)
		Sink      string `yaml:"sink"`
		QueueSize int    `yaml:"queue_size"`
	} `yaml:"audit"`
}

// Load lee el YAML (si existe), aplica overrides de entorno y defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// sin archivo: solo env + defaults
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ConsentUIBaseURL == "" {
		c.Server.ConsentUIBaseURL = "http://localhost:3000"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "5m"
	}
	if c.Catalog.TTL == "" {
		c.Catalog.TTL = "30s"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "http://localhost:8080"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "15m"
	}
	if c.JWT.IDTokenTTL == "" {
		c.JWT.IDTokenTTL = "15m"
	}
	if c.Audit.Sink == "" {
		c.Audit.Sink = "log"
	}
	if c.Audit.QueueSize <= 0 {
		c.Audit.QueueSize = 256
	}
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("CONSENT_UI_BASE_URL"); ok {
		c.Server.ConsentUIBaseURL = v
	}
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_CONNS"); ok {
		c.Storage.Postgres.MaxConns = v
	}
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("CATALOG_TTL"); ok {
		c.Catalog.TTL = v
	}
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvStr("JWT_SIGNING_SEED"); ok {
		c.JWT.SigningSeed = v
	}
	if v, ok := getEnvStr("AUDIT_SINK"); ok {
		c.Audit.Sink = v
	}
	if v, ok := getEnvInt("AUDIT_QUEUE_SIZE"); ok {
		c.Audit.QueueSize = v
	}
}

// Validate chequea combinaciones inválidas temprano, antes del wiring.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("config: storage.dsn required for postgres driver")
	}
	if c.Audit.Sink == "store" && c.Storage.Driver != "postgres" {
		return fmt.Errorf("config: audit.sink=store requires storage.driver=postgres")
	}
	for _, d := range []struct{ name, val string }{
		{"cache.memory.default_ttl", c.Cache.Memory.DefaultTTL},
		{"catalog.ttl", c.Catalog.TTL},
		{"jwt.access_ttl", c.JWT.AccessTTL},
		{"jwt.id_token_ttl", c.JWT.IDTokenTTL},
	} {
		if _, err := time.ParseDuration(d.val); err != nil {
			return fmt.Errorf("config: %s: %w", d.name, err)
		}
	}
	return nil
}

// Duration helpers: los TTL se guardan como string y se parsean on demand
// (ya validados en Validate).

func (c *Config) CacheDefaultTTL() time.Duration { return mustDur(c.Cache.Memory.DefaultTTL) }
func (c *Config) CatalogTTL() time.Duration      { return mustDur(c.Catalog.TTL) }
func (c *Config) AccessTTL() time.Duration       { return mustDur(c.JWT.AccessTTL) }
func (c *Config) IDTokenTTL() time.Duration      { return mustDur(c.JWT.IDTokenTTL) }

func mustDur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func getEnvStr(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	return v, ok
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}
	return 0, false
}
