package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Port != 5433 {
		t.Fatalf("expected default port 5433, got %d", cfg.Database.Port)
	}
	if cfg.API.Addr() != "127.0.0.1:8000" {
		t.Fatalf("unexpected addr %s", cfg.API.Addr())
	}
	if cfg.Limits.ReviewWithNames != 10 || cfg.Limits.TipWithNames != 25 || cfg.Limits.Review != 100 {
		t.Fatalf("unexpected limits %+v", cfg.Limits)
	}
	if cfg.API.QueryTimeout != 30*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.API.QueryTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEBUG", "true")
	t.Setenv("LIMIT_REVIEW_WITH_NAMES", "5")
	t.Setenv("API_PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Debug {
		t.Fatal("expected debug")
	}
	if cfg.Limits.ReviewWithNames != 5 {
		t.Fatalf("expected 5, got %d", cfg.Limits.ReviewWithNames)
	}
	if cfg.API.Port != 9000 {
		t.Fatalf("expected 9000, got %d", cfg.API.Port)
	}
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("DATABASE_PORT", "not-an-int")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadRejectsNonPositiveLimit(t *testing.T) {
	t.Setenv("LIMIT_TIP", "0")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "LIMIT_TIP") {
		t.Fatalf("expected LIMIT_TIP error, got %v", err)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "yelp",
		Password: "p@ss/word",
		Name:     "yelp",
		SSLMode:  "disable",
	}
	want := "postgres://yelp:p%40ss%2Fword@db:5432/yelp?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}

	d.URL = "postgres://override"
	if got := d.DSN(); got != "postgres://override" {
		t.Fatalf("URL should win, got %s", got)
	}
}
