package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQLドライバ
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"yelp_data_service/internal/app/config"
)

// ConnectDatabase はリトライ付きで接続し、プールを設定した *sql.DB を返します。
func ConnectDatabase(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*sql.DB, error) {
	maxRetries := max(cfg.ConnectRetries, 1)
	retryInterval := cfg.RetryInterval

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		log.Info("Attempting to connect to database",
			zap.Int("attempt", i+1), zap.Int("max_attempts", maxRetries))

		db, err := open(ctx, cfg)
		if err == nil {
			log.Info("Successfully connected to database")
			return db, nil
		}
		lastErr = err
		log.Warn("Failed to connect to database, retrying",
			zap.Error(err), zap.Duration("retry_in", retryInterval))

		// 最後の試行の後は待たない
		if i == maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect database: %w", ctx.Err())
		case <-time.After(retryInterval):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d retries: %w", maxRetries, lastErr)
}

func open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// 接続の確認（Ping）
	if err := db.PingContext(ctx); err != nil {
		db.Close() // Pingに失敗したら接続を閉じる
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

// OpenGorm は既存のプールを gorm で包みます。プールの所有権は呼び出し側に残ります。
func OpenGorm(sqlDB *sql.DB, debug bool, log *zap.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: NewGormLogger(log, debug),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return gdb, nil
}

// NewGormLogger は gorm のログを zap に流します。debug なら全 SQL を出力します。
func NewGormLogger(log *zap.Logger, debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		// クエリ文字列にはユーザー入力が含まれるため、本番ではパラメータを伏せる
		ParameterizedQueries: !debug,
	})
}
