package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"cleaning/cmd"
	httpadapter "cleaning/internal/adapters/in/http"
	"cleaning/internal/adapters/out/postgres"
	"cleaning/internal/pkg/logging"

	"github.com/redis/go-redis/v9"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := cmd.LoadConfig(".env")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, flush, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer flush()

	if err = run(cfg, logger); err != nil {
		logger.Error("service stopped", "error", err)
		flush()
		os.Exit(1)
	}
}

func run(cfg cmd.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := gorm.Open(gormpostgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err = postgres.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err = rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}

	app, err := cmd.NewCompositionRoot(cfg, gormDB, rdb, logger)
	if err != nil {
		return err
	}

	dispatcher := app.Dispatcher()
	dispatcher.Start()

	jobManager := app.JobManager()
	if err = jobManager.StartAll(); err != nil {
		return fmt.Errorf("start background jobs: %w", err)
	}

	e := httpadapter.NewEcho(httpadapter.NewServer(app.HTTPHandlers(), logger), logger)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "port", cfg.HTTPPort)
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()

	if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("http shutdown", "error", shutdownErr)
	}
	jobManager.StopAll()
	if stopErr := dispatcher.Stop(shutdownCtx); stopErr != nil {
		logger.Warn("event dispatcher did not drain", "error", stopErr)
	}
	if sqlDB, dbErr := gormDB.DB(); dbErr == nil {
		_ = sqlDB.Close()
	}

	return err
}
