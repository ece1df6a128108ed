package db

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"yelp_data_service/internal/app/config"
)

func TestConnectDatabaseGivesUp(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:           "127.0.0.1",
		Port:           1, // 誰も待ち受けていないポート
		User:           "postgres",
		Name:           "postgres",
		SSLMode:        "disable",
		MaxOpenConns:   1,
		ConnectRetries: 2,
		RetryInterval:  time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := ConnectDatabase(ctx, cfg, zap.NewNop())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "after 2 retries") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConnectDatabaseCanceled(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:           "127.0.0.1",
		Port:           1,
		SSLMode:        "disable",
		ConnectRetries: 5,
		RetryInterval:  time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ConnectDatabase(ctx, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error")
	}
}
