package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arencloud/surveyboard/internal/api"
	"github.com/arencloud/surveyboard/internal/config"
	"github.com/arencloud/surveyboard/internal/db"
	"github.com/arencloud/surveyboard/internal/errs"
	"github.com/arencloud/surveyboard/internal/exports"
	"github.com/arencloud/surveyboard/internal/logging"
	"github.com/arencloud/surveyboard/internal/qualtrics"
	"github.com/arencloud/surveyboard/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logging.New("").Fatal("invalid configuration", "error", err)
	}
	logger := logging.New(cfg.Env)
	if cfg.VendorToken == "" {
		logger.Info("QUALTRICS_API_TOKEN is not set; proxied survey routes will fail")
	}

	vendor := qualtrics.New(qualtrics.Options{BaseURL: cfg.VendorBaseURL, Token: cfg.VendorToken, Timeout: cfg.VendorTimeout})

	store, closeStore, err := openJobStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open export job store", "store", cfg.JobStore, "error", err)
	}
	defer closeStore()

	pruner := exports.NewPruner(store, cfg.JobRetention, logger)
	if err := pruner.Start(ctx); err != nil {
		logger.Fatal("failed to start export pruner", "error", err)
	}
	defer pruner.Stop()

	r := api.Router(cfg, logger, vendor, exports.NewTracker(store))

	srv := &http.Server{
		Addr:              ":" + cfg.HttpPort,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      cfg.VendorTimeout + 15*time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB headers
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "version", version.Version, "jobStore", cfg.JobStore)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "error", err)
		}
	}
}

// openJobStore picks the export job backend named by JOB_STORE.
func openJobStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (exports.Store, func(), error) {
	switch cfg.JobStore {
	case "redis":
		rdb, err := exports.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return exports.NewRedisStore(rdb, cfg.JobRetention), func() { rdb.Close() }, nil
	default:
		gdb, err := db.Open(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, errs.Wrap(err, "gorm.DB")
		}
		return exports.NewGormStore(gdb), func() { sqlDB.Close() }, nil
	}
}
