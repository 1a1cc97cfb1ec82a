// Package config loads the service configuration from a YAML file with
// environment-variable overrides for the values that differ per deploy.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/OpenQueue/API/internal/security/secretbox"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		// FrontendURL is where the browser login flow redirects users
		// that still need to authenticate.
		FrontendURL string `yaml:"frontend_url"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Storage struct {
		DSN string `yaml:"dsn"`
		// Migrate applies pending schema migrations at startup.
		Migrate  bool `yaml:"migrate"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Auth struct {
		// KeyCacheTTL bounds the staleness of cached API-key resolutions.
		// Revoked keys keep working for up to this long.
		KeyCacheTTL time.Duration `yaml:"key_cache_ttl"`

		// WebhookKey is the shared secret the caching webhook presents.
		WebhookKey string `yaml:"webhook_key"`

		// RootUsers are user ids granted site.rootLoggedIn.
		RootUsers []string `yaml:"root_users"`

		// LoginRate throttles password logins per client address.
		LoginRate struct {
			Max    int           `yaml:"max"`
			Window time.Duration `yaml:"window"`
		} `yaml:"login_rate"`

		Session struct {
			CookieName string        `yaml:"cookie_name"`
			Domain     string        `yaml:"domain"`
			Secure     bool          `yaml:"secure"`
			TTL        time.Duration `yaml:"ttl"`
		} `yaml:"session"`
	} `yaml:"auth"`
}

// Load reads path, applies defaults and env overrides, and validates.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Auth.KeyCacheTTL == 0 {
		c.Auth.KeyCacheTTL = 180 * time.Second
	}
	if c.Auth.LoginRate.Max == 0 {
		c.Auth.LoginRate.Max = 10
	}
	if c.Auth.LoginRate.Window == 0 {
		c.Auth.LoginRate.Window = time.Minute
	}
	if c.Auth.Session.CookieName == "" {
		c.Auth.Session.CookieName = "sid"
	}
	if c.Auth.Session.TTL == 0 {
		c.Auth.Session.TTL = 12 * time.Hour
	}
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = 10
	}
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return nil, fmt.Errorf("config: storage.postgres.conn_max_lifetime: %w", err)
		}
	}

	c.applyEnvOverrides()

	if err := c.decryptDSN(); err != nil {
		return nil, err
	}

	if strings.ToLower(c.App.Env) == "prod" && c.Auth.WebhookKey == "" {
		return nil, fmt.Errorf("config: auth.webhook_key is required in prod")
	}
	return &c, nil
}

// decryptDSN resolves an encrypted storage DSN. A DSN with the "enc:"
// prefix is sealed with secretbox; the key comes from STORAGE_DSN_KEY.
func (c *Config) decryptDSN() error {
	sealed, ok := strings.CutPrefix(c.Storage.DSN, "enc:")
	if !ok {
		return nil
	}
	key := os.Getenv("STORAGE_DSN_KEY")
	if key == "" {
		return fmt.Errorf("config: storage.dsn is encrypted but STORAGE_DSN_KEY is not set")
	}
	dsn, err := secretbox.Decrypt(key, sealed)
	if err != nil {
		return fmt.Errorf("config: storage.dsn: %w", err)
	}
	c.Storage.DSN = dsn
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.App.Env = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("STORAGE_MIGRATE"); v != "" {
		c.Storage.Migrate = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CACHE_KIND"); v != "" {
		c.Cache.Kind = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.Redis.DB = n
		}
	}
	if v := os.Getenv("WEBHOOK_KEY"); v != "" {
		c.Auth.WebhookKey = v
	}
	if v := os.Getenv("ROOT_USERS"); v != "" {
		c.Auth.RootUsers = splitCSV(v)
	}
	if v := os.Getenv("KEY_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Auth.KeyCacheTTL = d
		}
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		c.Server.FrontendURL = v
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
