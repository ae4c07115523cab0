package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gabriel/source-aggregator/backend/internal/aggregator"
)

// fetchTimeout covers details and chapter fetches; chapter pages can
// chain an extra iframe fetch, and the transport retries compound.
const fetchTimeout = 60 * time.Second

type SeriesHandler struct {
	agg *aggregator.Aggregator
}

func NewSeriesHandler(agg *aggregator.Aggregator) *SeriesHandler {
	return &SeriesHandler{agg: agg}
}

func (h *SeriesHandler) Series(c *fiber.Ctx) error {
	rawURL := strings.TrimSpace(c.Query("url"))
	sourceKey := strings.TrimSpace(c.Query("source"))
	if rawURL == "" || sourceKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url and source parameters are required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), fetchTimeout)
	defer cancel()

	details, err := h.agg.FetchSeries(ctx, rawURL, sourceKey)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(details)
}

func (h *SeriesHandler) Chapter(c *fiber.Ctx) error {
	rawURL := strings.TrimSpace(c.Query("url"))
	sourceKey := strings.TrimSpace(c.Query("source"))
	if rawURL == "" || sourceKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url and source parameters are required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), fetchTimeout)
	defer cancel()

	content, err := h.agg.FetchChapter(ctx, rawURL, sourceKey)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(content)
}
