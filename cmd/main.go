/*
Package main is the entry point for the socialhub server.

It is responsible for loading configuration, initializing the global logging system,
opening the database (applying migrations), wiring the realtime hub (Chat Manager) and
the HTTP server, and gracefully handling operating system interrupt signals (SIGINT,
SIGTERM) so live sessions publish their offline presence before the process exits.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"socialhub/internal/app/chat"
	"socialhub/internal/app/db"
	"socialhub/internal/app/storage"
	"socialhub/internal/configs"
	"socialhub/internal/handler"
	"socialhub/internal/pkg/auth/jwt"
	"socialhub/internal/pkg/limiter"
	"socialhub/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("s3_enabled", cfg.S3Enabled()).
		Float64("ws_event_rate", cfg.WSEventRate).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, db.PoolConfig{
		DSN:      cfg.DatabaseDSN,
		MaxConns: cfg.DatabaseMaxConns,
		MinConns: cfg.DatabaseMinConns,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize database")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logx.Fatal(err, "Failed to apply database migrations")
	}

	var storeOpts []db.Option
	if cfg.S3Enabled() {
		storageService, err := storage.NewStorageService(ctx, storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize storage service")
		}
		storeOpts = append(storeOpts, db.WithAvatarSigner(storage.NewAvatarSigner(storageService, cfg.AvatarURLTTL)))
	}
	store := db.NewStore(pool, storeOpts...)

	verifier := jwt.NewVerifier(cfg.JWTSecret, store.LoadIdentity)

	manager := chat.NewManager(verifier, store, chat.WithEventLimit(cfg.WSEventRate, cfg.WSEventBurst))

	upgradeLimiter := limiter.NewIPRateLimiter(rate.Limit(cfg.WSUpgradeRate), cfg.WSUpgradeBurst)
	defer upgradeLimiter.Stop()

	router := handler.Router(&handler.AppDeps{
		Manager:  manager,
		Config:   cfg,
		Store:    store,
		Verifier: verifier,
	}, upgradeLimiter)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("socialhub server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	if err := manager.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Realtime sessions did not drain before the deadline")
	}

	logx.Info("Server gracefully stopped.")
}
