package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gabriel/source-aggregator/backend/internal/catalog"
)

type HealthHandler struct {
	store *catalog.Store
}

func NewHealthHandler(store *catalog.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if h.store != nil {
		if err := h.store.Ping(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
				"cache":  "down",
				"time":   time.Now().UTC().Format(time.RFC3339),
			})
		}
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
