package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gabriel/source-aggregator/backend/internal/catalog"
)

const catalogTimeout = 30 * time.Second

type CatalogHandler struct {
	service      *catalog.Service
	adultEnabled bool
}

func NewCatalogHandler(service *catalog.Service, adultEnabled bool) *CatalogHandler {
	return &CatalogHandler{service: service, adultEnabled: adultEnabled}
}

func (h *CatalogHandler) Latest(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), catalogTimeout)
	defer cancel()

	page, err := h.service.LatestUpdates(ctx, h.includeAdult(c), c.QueryInt("page", 1))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *CatalogHandler) Favorites(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), catalogTimeout)
	defer cancel()

	page, err := h.service.MostFavorites(ctx, h.includeAdult(c), c.QueryInt("page", 1))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *CatalogHandler) Top(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), catalogTimeout)
	defer cancel()

	page, err := h.service.TopByType(ctx, strings.TrimSpace(c.Query("type")), h.includeAdult(c), c.QueryInt("page", 1))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), catalogTimeout)
	defer cancel()

	page, err := h.service.SearchAdvanced(ctx, catalog.Filters{
		Genre:        strings.TrimSpace(c.Query("genre")),
		Type:         strings.TrimSpace(c.Query("type")),
		Status:       strings.TrimSpace(c.Query("status")),
		Sort:         strings.TrimSpace(c.Query("sort")),
		Year:         c.QueryInt("year", 0),
		Page:         c.QueryInt("page", 1),
		IncludeAdult: h.includeAdult(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// includeAdult honors the query flag only when adult sources are
// enabled in config; otherwise the flag is silently ignored.
func (h *CatalogHandler) includeAdult(c *fiber.Ctx) bool {
	return h.adultEnabled && c.QueryBool("adult", false)
}
