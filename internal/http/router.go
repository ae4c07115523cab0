package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/gabriel/source-aggregator/backend/internal/aggregator"
	"github.com/gabriel/source-aggregator/backend/internal/catalog"
	"github.com/gabriel/source-aggregator/backend/internal/config"
	"github.com/gabriel/source-aggregator/backend/internal/http/handlers"
)

// NewServer wires the API surface consumed by the reader UI.
func NewServer(cfg config.Config, agg *aggregator.Aggregator, catalogService *catalog.Service, store *catalog.Store) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	app.Use(recover.New())

	health := handlers.NewHealthHandler(store)
	search := handlers.NewSearchHandler(agg)
	series := handlers.NewSeriesHandler(agg)
	catalogHandlers := handlers.NewCatalogHandler(catalogService, cfg.AdultSourcesEnabled)

	app.Get("/health", health.Check)
	app.Get("/v1/health", health.Check)

	v1 := app.Group("/v1")
	v1.Get("/sources", search.Sources)
	v1.Get("/search", search.Search)
	v1.Get("/trending", search.Trending)
	v1.Get("/series", series.Series)
	v1.Get("/chapter", series.Chapter)

	catalogGroup := v1.Group("/catalog")
	catalogGroup.Get("/latest", catalogHandlers.Latest)
	catalogGroup.Get("/favorites", catalogHandlers.Favorites)
	catalogGroup.Get("/top", catalogHandlers.Top)
	catalogGroup.Get("/search", catalogHandlers.Search)

	return app
}
