package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/gabriel/source-aggregator/backend/internal/aggregator"
	"github.com/gabriel/source-aggregator/backend/internal/sources"
	"github.com/gabriel/source-aggregator/backend/internal/transport"
)

// respondError maps the source/transport error taxonomy onto API
// statuses. Rate limits and bans get distinct payloads so the UI can
// show "try again in N seconds" instead of a generic failure.
func respondError(c *fiber.Ctx, err error) error {
	var rateLimited *transport.RateLimitedError
	if errors.As(err, &rateLimited) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":             "rate_limited",
			"retryAfterSeconds": rateLimited.RetryAfterSeconds,
		})
	}

	switch {
	case errors.Is(err, transport.ErrBanned):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "banned"})
	case errors.Is(err, transport.ErrNotFound), errors.Is(err, sources.ErrNoTitleFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	case errors.Is(err, sources.ErrNoPagesFound):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "no_pages_found",
			"message": "this chapter could not be loaded, the source may have changed its page structure",
		})
	case errors.Is(err, transport.ErrInvalidURL),
		errors.Is(err, sources.ErrForeignURL),
		errors.Is(err, aggregator.ErrUnknownSource):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "source_unavailable"})
	}
}
