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

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/auth"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/router"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/schema"
	"github.com/ovaphlow/pitchfork/service-bookshelf/pkg/database"
	"github.com/ovaphlow/pitchfork/service-bookshelf/pkg/utilities"
)

func main() {
	// a missing .env is fine; real environment variables still apply
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-bookshelf")

	dbCfg := database.ConfigFromEnv()
	sqlDB, err := database.Connect(dbCfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	db := sqlx.NewDb(sqlDB, dbCfg.Driver)
	defer db.Close()

	ids, err := utilities.NewIDGeneratorFromEnv()
	if err != nil {
		sugar.Fatalf("id generator: %v", err)
	}

	tokens, err := auth.NewTokenService(auth.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("token service: %v", err)
	}
	if tokens.Ephemeral {
		sugar.Warn("JWT_SECRET_KEY is not set; using a random signing key, tokens will not survive a restart")
	}

	cfg := router.ConfigFromEnv()
	if cfg.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := schema.Ensure(migrateCtx, db)
		cancel()
		if err != nil {
			sugar.Fatalf("migrate: %v", err)
		}
		sugar.Info("schema ensured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := router.RegisterRoutes(cfg, router.Deps{
		Logger: sugar,
		DB:     db,
		Tokens: tokens,
		IDs:    ids,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("listening", "addr", cfg.Addr, "driver", dbCfg.Driver)

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
