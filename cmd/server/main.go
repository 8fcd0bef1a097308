package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dgallion1/lexchunk/internal/api"
	"github.com/dgallion1/lexchunk/internal/chunkstore"
	"github.com/dgallion1/lexchunk/internal/config"
	"github.com/dgallion1/lexchunk/internal/metadata"
	"github.com/dgallion1/lexchunk/internal/pathstore"
	"github.com/dgallion1/lexchunk/internal/pipeline"
	"github.com/dgallion1/lexchunk/internal/structure"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the processor.
	stats := pipeline.NewStats(cfg.StatsWindow)
	opts := []pipeline.ProcessorOption{
		pipeline.WithParser(structure.New(structure.WithProfile(structure.ParseProfile(cfg.ParserProfile)))),
		pipeline.WithStats(stats),
	}
	if cfg.CatalogPath != "" {
		cat, err := loadCatalog(cfg.CatalogPath)
		if err != nil {
			log.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
			os.Exit(1)
		}
		log.Info("catalog loaded", "path", cfg.CatalogPath, "entries", len(cat))
		opts = append(opts, pipeline.WithCatalog(cat))
	}
	proc, err := pipeline.NewProcessor(cfg.Chunking(), log, opts...)
	if err != nil {
		log.Error("invalid chunking configuration", "error", err)
		os.Exit(1)
	}

	// Initialize the sink.
	sink, closeSink, err := openSink(cfg, log)
	if err != nil {
		log.Error("failed to open sink", "sink", cfg.Sink, "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, proc, sink, stats, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		// No handler can submit once the listener is closed.
		orch.Stop()

		if err := closeSink(); err != nil {
			log.Error("failed to close sink", "error", err)
		}
	}()

	log.Info("starting lexchunk", "port", cfg.Port, "sink", cfg.Sink, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func openSink(cfg config.Config, log *slog.Logger) (pipeline.Sink, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Sink {
	case config.SinkPathstore:
		client := pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
		return pathstore.NewSink(client, cfg.Collection), noop, nil
	case config.SinkBadger:
		store, err := chunkstore.Open(cfg.BadgerPath, log)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.SinkNone:
		return pipeline.NewMemorySink(), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown sink %q", cfg.Sink)
}

func loadCatalog(path string) (metadata.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return metadata.LoadCatalog(f)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
