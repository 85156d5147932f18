package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"dukapos/m/internal/api"
	"dukapos/m/internal/config"
	"dukapos/m/internal/database"
	"dukapos/m/internal/logger"
	"dukapos/m/internal/migrations"
	"dukapos/m/internal/repository"
	"dukapos/m/internal/seed"
	"dukapos/m/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migrations.Run(db, cfg.Database.Driver, cfg.Database.DSN); err != nil {
		log.Fatal("unable to run migrations", zap.Error(err))
	}

	products := repository.NewProductRepository(db)
	sales := repository.NewSaleRepository(db)

	if _, err := seed.LoadProducts(ctx, products, cfg.Seed.Catalog, log); err != nil {
		log.Warn("product catalog not loaded", zap.Error(err))
	}

	revocations, err := newRevocations(ctx, cfg)
	if err != nil {
		log.Fatal("unable to set up session store", zap.Error(err))
	}
	if closer, ok := revocations.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	admin, err := session.NewAdmin(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.PasswordHash)
	if err != nil {
		log.Fatal("invalid admin credentials", zap.Error(err))
	}

	handler := api.New(api.Options{
		Catalog:        products,
		Ledger:         sales,
		Admin:          admin,
		Sessions:       session.NewManager(cfg.Session.Secret, cfg.Session.TTL, revocations),
		Logger:         log,
		Location:       cfg.Location(),
		CookieName:     cfg.Session.CookieName,
		SecureCookie:   cfg.Session.Secure,
		CORSOrigins:    cfg.HTTP.CORSAllowOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("POS server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("database", cfg.Database.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}

// newRevocations shares logouts through Redis when it is configured.
func newRevocations(ctx context.Context, cfg *config.Config) (session.Revocations, error) {
	if cfg.Redis.Addr == "" {
		return session.NewMemoryRevocations(), nil
	}
	return session.NewRedisRevocations(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
}
