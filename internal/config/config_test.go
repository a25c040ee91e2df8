package config

import (
	"testing"
	"time"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when AUTH_JWT_SECRET is unset")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("NOTIFY_QUEUE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != StoreDriverMongo {
		t.Errorf("store driver = %q, want %q", cfg.Store.Driver, StoreDriverMongo)
	}
	if got := cfg.Auth.AccessTokenTTL(); got != 2*time.Hour {
		t.Errorf("token ttl = %v, want 2h", got)
	}
	if cfg.Notification.Queue != QueueInProcess {
		t.Errorf("queue = %q, want %q", cfg.Notification.Queue, QueueInProcess)
	}
	if cfg.Attachments.Dir == "" {
		t.Error("attachments dir should have a default")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Auth:         AuthConfig{JWTSecret: "s"},
			Store:        StoreConfig{Driver: StoreDriverMongo, Mongo: MongoConfig{URI: "mongodb://localhost"}},
			Notification: NotificationConfig{Queue: QueueInProcess},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "sqlite" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Store.Driver = StoreDriverPostgres }, wantErr: true},
		{name: "postgres with dsn", mutate: func(c *Config) {
			c.Store.Driver = StoreDriverPostgres
			c.Store.Postgres.DSN = "postgres://localhost/db"
		}},
		{name: "redis queue without addr", mutate: func(c *Config) { c.Notification.Queue = QueueRedis }, wantErr: true},
		{name: "redis queue with addr", mutate: func(c *Config) {
			c.Notification.Queue = QueueRedis
			c.Redis.Addr = "127.0.0.1:6379"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
