package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
auth:
  jwt_secret: "from-file"
postgres:
  url: "postgres://file"
cache:
  challenge_ttl: "2m"
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port = %q", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Fatalf("secret = %q, env must win", cfg.Auth.JWTSecret)
	}
	if cfg.Postgres.URL != "postgres://file" {
		t.Fatalf("url = %q, empty env must not override", cfg.Postgres.URL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestTTLDuration(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("empty = %v", d)
	}
	if d := TTLDuration("90s", time.Minute); d != 90*time.Second {
		t.Fatalf("parsed = %v", d)
	}
	if d := TTLDuration("bogus", time.Minute); d != time.Minute {
		t.Fatalf("malformed = %v", d)
	}
}
