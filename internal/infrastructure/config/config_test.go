package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.SQLitePath != "healthlog.db" {
		t.Fatalf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected token ttl %v", cfg.TokenTTL)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("redis should be disabled by default")
	}
	if cfg.JWTSecret == "" {
		t.Fatalf("development should fall back to a local secret")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":          "production",
		"JWT_SECRET":   "prod-secret",
		"STORE_DRIVER": "mongo",
		"MONGO_URI":    "mongodb://db:27017",
		"TOKEN_TTL":    "90m",
		"REDIS_ADDR":   "cache:6379",
		"REDIS_DB":     "2",
	}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.Store.Driver != DriverMongo || cfg.Mongo.URI != "mongodb://db:27017" {
		t.Fatalf("unexpected store config: %+v %+v", cfg.Store, cfg.Mongo)
	}
	if cfg.TokenTTL != 90*time.Minute || cfg.Redis.DB != 2 || cfg.Redis.Addr != "cache:6379" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.JWTSecret != "prod-secret" {
		t.Fatalf("secret not read")
	}
}

func TestLoadWith_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":        {"STORE_DRIVER": "postgres"},
		"unknown env":           {"ENV": "staging"},
		"production w/o secret": {"ENV": "production"},
		"bad ttl":               {"TOKEN_TTL": "soon"},
	}
	for name, env := range cases {
		_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !strings.HasPrefix(err.Error(), "config:") {
			t.Fatalf("%s: error should be prefixed, got %v", name, err)
		}
	}
}
