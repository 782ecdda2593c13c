package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredjeanlab/shelflog/internal/archive"
	"github.com/alfredjeanlab/shelflog/internal/config"
	"github.com/alfredjeanlab/shelflog/internal/events"
	"github.com/alfredjeanlab/shelflog/internal/server"
	"github.com/alfredjeanlab/shelflog/internal/store/postgres"
	"github.com/alfredjeanlab/shelflog/internal/sweeper"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the shelflog event service",
	// Override PersistentPreRunE so we don't build an HTTP client.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// Connect to Postgres.
		store, err := postgres.New(cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}

		// Start the broker consumer that persists library events.
		var consumer *events.Consumer
		if cfg.NATSURL != "" {
			consumer = events.NewConsumer(cfg.NATSURL, cfg.StreamName, cfg.SubjectPrefix, cfg.ConsumerName, store, logger)
			if err := consumer.Start(context.Background()); err != nil {
				store.Close()
				return err
			}
			logger.Info("event consumer started",
				"nats_url", cfg.NATSURL,
				"stream", cfg.StreamName,
				"consumer", cfg.ConsumerName,
			)
		} else {
			logger.Info("event consumer disabled (SHELFLOG_NATS_URL not set)")
		}

		// Start the retention sweeper.
		var sweep *sweeper.Sweeper
		if cfg.SweepInterval > 0 {
			var dest archive.Destination
			if cfg.ArchiveS3Bucket != "" {
				s3Dest, err := archive.NewS3Destination(
					context.Background(),
					cfg.ArchiveS3Bucket,
					cfg.ArchiveS3Prefix,
					cfg.ArchiveS3Region,
					cfg.ArchiveS3Endpoint,
				)
				if err != nil {
					logger.Error("failed to create S3 archive destination", "err", err)
				} else {
					dest = s3Dest
					logger.Info("archive destination enabled", "bucket", cfg.ArchiveS3Bucket, "prefix", cfg.ArchiveS3Prefix)
				}
			}

			sweep = sweeper.New(store, cfg.SweepInterval, cfg.Retention, dest, logger)
			sweep.Start()
			logger.Info("retention sweeper started", "interval", cfg.SweepInterval, "retention", cfg.Retention)
		}

		// Start the HTTP API.
		eventsServer := server.NewEventsServer(store, logger)
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: eventsServer.NewHTTPHandler(cfg.AuthToken),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		logger.Info("shelflog server started", "http_addr", cfg.HTTPAddr)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		// Graceful shutdown. Stop the consumer first so in-flight events
		// are acked or redelivered before the store closes.
		if consumer != nil {
			consumer.Stop()
			logger.Info("event consumer stopped")
		}

		if sweep != nil {
			sweep.Stop()
			logger.Info("retention sweeper stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
