package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gabriel/source-aggregator/backend/internal/aggregator"
)

// searchTimeout bounds the whole fan-out; a single slow source must
// not hold the response hostage past it.
const searchTimeout = 20 * time.Second

type SearchHandler struct {
	agg *aggregator.Aggregator
}

func NewSearchHandler(agg *aggregator.Aggregator) *SearchHandler {
	return &SearchHandler{agg: agg}
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query parameter q is required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), searchTimeout)
	defer cancel()

	return c.JSON(h.agg.SearchAll(ctx, query))
}

func (h *SearchHandler) Trending(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), searchTimeout)
	defer cancel()

	return c.JSON(fiber.Map{"items": h.agg.Trending(ctx)})
}

func (h *SearchHandler) Sources(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": h.agg.Sources()})
}
