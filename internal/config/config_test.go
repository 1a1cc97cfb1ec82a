package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenQueue/API/internal/security/secretbox"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", c.Server.Addr)
	}
	if c.Log.Level != "info" {
		t.Fatalf("level = %q", c.Log.Level)
	}
	if c.Cache.Kind != "memory" {
		t.Fatalf("cache kind = %q", c.Cache.Kind)
	}
	if c.Auth.KeyCacheTTL != 180*time.Second {
		t.Fatalf("key cache ttl = %v", c.Auth.KeyCacheTTL)
	}
	if c.Auth.Session.CookieName != "sid" || c.Auth.Session.TTL != 12*time.Hour {
		t.Fatalf("session = %+v", c.Auth.Session)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
app:
  env: staging
server:
  addr: ":9000"
  frontend_url: https://play.example.com
auth:
  key_cache_ttl: 30s
  root_users: [U1, U2]
`)
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.App.Env != "staging" || c.Server.Addr != ":9000" {
		t.Fatalf("config = %+v", c)
	}
	if c.Auth.KeyCacheTTL != 30*time.Second {
		t.Fatalf("ttl = %v", c.Auth.KeyCacheTTL)
	}
	if len(c.Auth.RootUsers) != 2 {
		t.Fatalf("root users = %v", c.Auth.RootUsers)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("KEY_CACHE_TTL", "90s")
	t.Setenv("ROOT_USERS", "A, B ,")

	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Server.Addr != ":7070" {
		t.Fatalf("addr = %q", c.Server.Addr)
	}
	if c.Auth.KeyCacheTTL != 90*time.Second {
		t.Fatalf("ttl = %v", c.Auth.KeyCacheTTL)
	}
	if len(c.Auth.RootUsers) != 2 || c.Auth.RootUsers[1] != "B" {
		t.Fatalf("root users = %v", c.Auth.RootUsers)
	}
}

func TestProdRequiresWebhookKey(t *testing.T) {
	t.Setenv("APP_ENV", "prod")

	if _, err := Load(""); err == nil {
		t.Fatal("prod without webhook key should fail")
	}

	t.Setenv("WEBHOOK_KEY", "secret")
	if _, err := Load(""); err != nil {
		t.Fatal(err)
	}
}

func TestEncryptedDSN(t *testing.T) {
	key := "01234567890123456789012345678901"
	sealed, err := secretbox.Encrypt(key, "postgres://db.internal/openqueue")
	if err != nil {
		t.Fatal(err)
	}

	t.Setenv("STORAGE_DSN", "enc:"+sealed)

	if _, err := Load(""); err == nil {
		t.Fatal("encrypted dsn without key should fail")
	}

	t.Setenv("STORAGE_DSN_KEY", key)
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Storage.DSN != "postgres://db.internal/openqueue" {
		t.Fatalf("dsn = %q", c.Storage.DSN)
	}
}

func TestBadDurationRejected(t *testing.T) {
	path := writeConfig(t, `
storage:
  postgres:
    conn_max_lifetime: banana
`)
	if _, err := Load(path); err == nil {
		t.Fatal("bad duration should fail")
	}
}
