package transport

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL        = errors.New("url must be absolute http or https")
	ErrBanned            = errors.New("access banned by origin")
	ErrUpstreamBlocking  = errors.New("origin site is blocking the proxy")
	ErrUpstreamTimeout   = errors.New("origin site timed out")
	ErrNotFound          = errors.New("page not found")
	ErrServerError       = errors.New("origin server error")
	ErrMalformedResponse = errors.New("malformed proxy response")
	ErrProxyUnreachable  = errors.New("proxy endpoint unreachable")
)

// RateLimitedError carries the origin's cool-down hint, zero when the
// response did not include one.
type RateLimitedError struct {
	RetryAfterSeconds int
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfterSeconds > 0 {
		return fmt.Sprintf("rate limited, retry after %ds", e.RetryAfterSeconds)
	}
	return "rate limited"
}

// HTTPError covers non-2xx statuses with no more specific classification.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected http status %d", e.Status)
}

// IsRetryable reports whether another attempt at the same request can
// plausibly succeed. Rate limits and bans only get worse when retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServerError) ||
		errors.Is(err, ErrUpstreamTimeout) ||
		errors.Is(err, ErrProxyUnreachable)
}
