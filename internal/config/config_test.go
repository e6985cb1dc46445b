package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("EVENTS_SINK", "")
	t.Setenv("POLL_INTERVAL_SECONDS", "")
	t.Setenv("AUTH_SIGNUP_BONUS", "")
	t.Setenv("AUTH_VERIFY_PASSWORDS", "")
	t.Setenv("RABBITMQ_PREFETCH_COUNT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Backend != StoreBackendMemory {
		t.Fatalf("backend = %q", cfg.Store.Backend)
	}
	if cfg.Auth.SignupBonus != 100 {
		t.Fatalf("signup bonus = %d", cfg.Auth.SignupBonus)
	}
	if cfg.Poll.Interval() != 5*time.Second {
		t.Fatalf("poll interval = %s", cfg.Poll.Interval())
	}
	if cfg.Auth.VerifyPasswords {
		t.Fatalf("password verification should default off")
	}
	if cfg.Events.RabbitMQPrefetch != 16 {
		t.Fatalf("rabbitmq prefetch = %d", cfg.Events.RabbitMQPrefetch)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("EVENTS_SINK", "rabbitmq")
	t.Setenv("POLL_INTERVAL_SECONDS", "2")
	t.Setenv("AUTH_VERIFY_PASSWORDS", "true")
	t.Setenv("RABBITMQ_PREFETCH_COUNT", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Backend != StoreBackendRedis || cfg.Events.Sink != EventsSinkRabbitMQ {
		t.Fatalf("unexpected %+v %+v", cfg.Store, cfg.Events)
	}
	if cfg.Poll.Interval() != 2*time.Second || !cfg.Auth.VerifyPasswords {
		t.Fatalf("unexpected poll/auth %+v %+v", cfg.Poll, cfg.Auth)
	}
	if cfg.Events.RabbitMQPrefetch != 0 {
		t.Fatalf("rabbitmq prefetch = %d, want broker default", cfg.Events.RabbitMQPrefetch)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "localstorage")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error")
	}
}
