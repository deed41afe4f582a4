package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MONGO_DB", "CATALOG_CACHE_TTL", "SESSION_FETCH_CONCURRENCY", "REDIS_URI"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	if cfg.Port != "8080" || cfg.MongoDB != "surveyflow" {
		t.Errorf("port=%q db=%q", cfg.Port, cfg.MongoDB)
	}
	if cfg.CatalogCacheTTL != 10*time.Minute {
		t.Errorf("catalog ttl %v", cfg.CatalogCacheTTL)
	}
	if cfg.SessionFetchConcurrency != 8 {
		t.Errorf("fetch concurrency %d", cfg.SessionFetchConcurrency)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_IDLE_TTL", "5m")
	t.Setenv("SESSION_FETCH_CONCURRENCY", "2")
	t.Setenv("REDIS_URI", "redis://cache:6379")
	cfg := Load()

	if cfg.Port != "9090" || cfg.SessionIdleTTL != 5*time.Minute || cfg.SessionFetchConcurrency != 2 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.RedisAddr() != "cache:6379" {
		t.Errorf("redis addr %q", cfg.RedisAddr())
	}
}

func TestLoadFallsBackOnBadValues(t *testing.T) {
	t.Setenv("ANSWER_CACHE_TTL", "tomorrow")
	t.Setenv("SESSION_FETCH_CONCURRENCY", "-3")
	cfg := Load()

	if cfg.AnswerCacheTTL != 24*time.Hour {
		t.Errorf("answer ttl %v", cfg.AnswerCacheTTL)
	}
	if cfg.SessionFetchConcurrency != 8 {
		t.Errorf("fetch concurrency %d", cfg.SessionFetchConcurrency)
	}
}
