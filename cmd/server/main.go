package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/studybuddy/api"
	dbfs "github.com/garnizeh/studybuddy/db"
	"github.com/garnizeh/studybuddy/internal/auth"
	"github.com/garnizeh/studybuddy/internal/blob"
	"github.com/garnizeh/studybuddy/internal/chats"
	"github.com/garnizeh/studybuddy/internal/config"
	"github.com/garnizeh/studybuddy/internal/db"
	"github.com/garnizeh/studybuddy/internal/logging"
	"github.com/garnizeh/studybuddy/internal/matches"
	"github.com/garnizeh/studybuddy/internal/messages"
	"github.com/garnizeh/studybuddy/internal/profiles"
	"github.com/garnizeh/studybuddy/internal/repository/postgres"
	"github.com/garnizeh/studybuddy/internal/repository/sqlite"
	"github.com/garnizeh/studybuddy/internal/session"
	"github.com/garnizeh/studybuddy/pkg/repository"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, logCloser := logging.New(cfg.Log)
	defer logCloser.Close()
	slog.SetDefault(logger)
	api.SetLogger(logger)

	logger.Info("starting studybuddy server", slog.String("version", version), slog.String("build_time", buildTime))

	ctx := context.Background()

	store, storeCloser, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open store", slog.String("driver", cfg.Database.Driver), slog.Any("err", err))
		os.Exit(1)
	}

	blobs, images, err := openBlobs(ctx, cfg.Blob)
	if err != nil {
		logger.Error("failed to open blob store", slog.String("driver", cfg.Blob.Driver), slog.Any("err", err))
		os.Exit(1)
	}

	sessions := session.NewIssuer(cfg.JWTSecret, cfg.TokenDuration)
	streams := api.NewStreams(ctx)
	handler := api.SetupRoutes(api.Services{
		Auth:         auth.New(store, sessions, logger),
		Sessions:     sessions,
		Profiles:     profiles.New(store, blobs, logger),
		Matches:      matches.New(store, logger),
		Chats:        chats.New(store, logger),
		Messages:     messages.New(store, logger),
		Images:       images,
		Streams:      streams,
		PollInterval: cfg.PollInterval,
		CORSOrigins:  cfg.CORSOrigins,
	}, version, buildTime)

	// Create HTTP server. No WriteTimeout: chat streams are long-lived.
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.APITimeout,
		IdleTimeout:       60 * time.Second,
	}
	server.RegisterOnShutdown(streams.Shutdown)

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}
	// Shutdown does not wait for hijacked websocket connections
	streams.Shutdown()
	if err := streams.Wait(shutdownCtx); err != nil {
		logger.Error("streams still open at shutdown", slog.Any("err", err))
	}

	if err := storeCloser.Close(); err != nil {
		logger.Error("error closing store", slog.Any("err", err))
	}

	logger.Info("server exited")
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (repository.Store, io.Closer, error) {
	switch cfg.Driver {
	case "sqlite":
		conn, err := db.New(ctx, cfg.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.MigrateOnStart {
			if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
				conn.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return sqlite.New(conn, logger), conn, nil

	case "postgres":
		pool, err := postgres.Open(ctx, cfg.URL, postgres.PoolOptions{
			MaxConns:        cfg.MaxConns,
			SimpleProtocol:  cfg.SimpleProtocol,
			ApplicationName: "studybuddy",
		})
		if err != nil {
			return nil, nil, err
		}
		if cfg.MigrateOnStart {
			if err := postgres.Migrate(ctx, pool, dbfs.PostgresMigrations); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return postgres.New(pool, logger), closerFunc(func() error {
			pool.Close()
			return nil
		}), nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// openBlobs returns the image store and, for the local driver, the store the API serves
// /images/ from.
func openBlobs(ctx context.Context, cfg config.BlobConfig) (blob.Store, *blob.Local, error) {
	switch cfg.Driver {
	case "local":
		l, err := blob.NewLocal(cfg.Dir, cfg.BaseURL)
		if err != nil {
			return nil, nil, err
		}
		return l, l, nil
	case "s3":
		s, err := blob.NewS3(ctx, blob.S3Options{
			Region:        cfg.Region,
			Bucket:        cfg.Bucket,
			Prefix:        cfg.Prefix,
			PublicBaseURL: cfg.PublicBaseURL,
			Endpoint:      cfg.Endpoint,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
}
