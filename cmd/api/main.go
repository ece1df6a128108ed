package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"yelp_data_service/internal/app/config"
	"yelp_data_service/internal/app/db"
	"yelp_data_service/internal/app/handler"
	"yelp_data_service/internal/app/logger"
	"yelp_data_service/internal/app/repository"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Application stopped with error", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Application starting...", zap.String("addr", cfg.API.Addr()), zap.Bool("debug", cfg.Debug))

	// データベースに接続
	sqlDB, err := db.ConnectDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer sqlDB.Close() // アプリケーション終了時に接続を閉じる

	gdb, err := db.OpenGorm(sqlDB, cfg.Debug, log)
	if err != nil {
		return err
	}

	repo := repository.New(gdb, log, repository.CeilingsFrom(cfg.Limits))
	e := handler.NewServer(handler.New(repo, log, cfg.API, cfg.Debug))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Application started successfully.")
		if err := e.Start(cfg.API.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// Ctrl+C か SIGTERM で処理中のリクエストを待ってから終了
		<-gctx.Done()
		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
