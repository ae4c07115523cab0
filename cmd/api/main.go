package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabriel/source-aggregator/backend/internal/aggregator"
	"github.com/gabriel/source-aggregator/backend/internal/catalog"
	"github.com/gabriel/source-aggregator/backend/internal/config"
	apihttp "github.com/gabriel/source-aggregator/backend/internal/http"
	"github.com/gabriel/source-aggregator/backend/internal/sources"
	"github.com/gabriel/source-aggregator/backend/internal/sources/mangaworld"
	"github.com/gabriel/source-aggregator/backend/internal/sources/mangaworldadult"
	"github.com/gabriel/source-aggregator/backend/internal/sources/novelcool"
	"github.com/gabriel/source-aggregator/backend/internal/sources/yamlsource"
	"github.com/gabriel/source-aggregator/backend/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	client := transport.NewClient(cfg.ProxyBaseURL, cfg.RequestTimeout, logger)

	adapters, err := buildAdapters(cfg, client, logger)
	if err != nil {
		slog.Error("failed to build source adapters", "error", err)
		os.Exit(1)
	}

	// Slice order is source priority: dedup precedence and fallback
	// order both follow it.
	agg := aggregator.New(logger, adapters...)

	store, err := catalog.OpenStore(cfg.SQLitePath)
	if err != nil {
		slog.Error("failed to open catalog cache store", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	catalogService := catalog.NewService(client, store, cfg.CatalogCacheTTL, logger)

	app := apihttp.NewServer(cfg, agg, catalogService, store)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	slog.Info("api started", "port", cfg.Port, "env", cfg.Environment, "sources", len(adapters))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func buildAdapters(cfg config.Config, client *transport.Client, logger *slog.Logger) ([]sources.Adapter, error) {
	adapters := make([]sources.Adapter, 0, 4)

	mw, err := mangaworld.New(client, logger)
	if err != nil {
		return nil, err
	}
	adapters = append(adapters, mw)

	if cfg.AdultSourcesEnabled {
		mwa, err := mangaworldadult.New(client, logger)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, mwa)
	}

	nc, err := novelcool.New(client, logger)
	if err != nil {
		return nil, err
	}
	adapters = append(adapters, nc)

	loaded, loadErr := yamlsource.LoadFromDir(cfg.YAMLSourcesPath, client, logger)
	if loadErr != nil {
		slog.Warn("yaml sources loaded with warnings", "error", loadErr)
	}
	for _, adapter := range loaded {
		if adapter.Adult() && !cfg.AdultSourcesEnabled {
			continue
		}
		adapters = append(adapters, adapter)
	}

	return adapters, nil
}
