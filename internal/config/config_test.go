package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
redis:
  addr: localhost:6379
  ttl: 5m
game:
  questions_per_game: 10
  seed: 7
log:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.TTL != "5m" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Game.QuestionsPerGame != 10 || cfg.Game.Seed != 7 {
		t.Fatalf("unexpected game config %+v", cfg.Game)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Log.Level)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("redis:\n  addr: file:6379\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("REDIS_ADDR", "env:6379")
	t.Setenv("GAME_QUESTIONS_PER_GAME", "4")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Redis.Addr != "env:6379" {
		t.Fatalf("expected env override, got %q", cfg.Redis.Addr)
	}
	if cfg.Game.QuestionsPerGame != 4 {
		t.Fatalf("expected 4 questions, got %d", cfg.Game.QuestionsPerGame)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Postgres.URL != "" {
		t.Fatalf("expected empty postgres url, got %q", cfg.Postgres.URL)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("empty: got %v", got)
	}
	if got := TTLDuration("30s", time.Minute); got != 30*time.Second {
		t.Fatalf("valid: got %v", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("invalid: got %v", got)
	}
}
