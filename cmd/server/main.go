// Package main starts the MediaKeeper reference API server: configuration,
// logging, storage, services, handlers and the HTTP(S) listener.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/MediaKeeper/internal/config"
	"github.com/atinyakov/MediaKeeper/internal/db"
	"github.com/atinyakov/MediaKeeper/internal/logger"
	"github.com/atinyakov/MediaKeeper/internal/middleware"
	"github.com/atinyakov/MediaKeeper/internal/repository"
	"github.com/atinyakov/MediaKeeper/internal/server/handler/http"
	"github.com/atinyakov/MediaKeeper/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

type storage interface {
	service.AuthRepository
	service.MediaRepository
	middleware.UserLookup
}

// postgresStorage joins the two Postgres repositories behind one value.
type postgresStorage struct {
	*repository.PostgresAuthRepository
	*repository.PostgresMediaRepository
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	options, err := config.ParseServer(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store storage
	if options.DatabaseDSN == "" {
		zapLogger.Warn("no database DSN configured, using in-memory storage")
		store = repository.NewMemoryRepository()
	} else {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		defer postgresDB.Close()

		db.StartSoftDeleteCleaner(ctx, postgresDB, options.CleanupInterval, options.Retention, zapLogger)
		store = postgresStorage{
			PostgresAuthRepository:  repository.NewPostgresAuthRepository(postgresDB),
			PostgresMediaRepository: repository.NewPostgresMediaRepository(postgresDB),
		}
	}

	authHandler := &http.AuthHandler{AuthService: service.NewAuthService(store)}
	mediaHandler := &http.MediaHandler{MediaService: service.NewMediaService(store)}
	router := http.NewRouter(authHandler, mediaHandler, store, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSCert != "" {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
