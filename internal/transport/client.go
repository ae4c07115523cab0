package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	defaultTimeout = 15 * time.Second
	maxRetries     = 2
)

// Client fetches remote HTML through the proxy endpoint. All source
// adapters share one instance so the per-host throttle actually holds.
type Client struct {
	proxyBaseURL string
	httpClient   *http.Client
	logger       *slog.Logger

	// backoffUnit is the linear retry step, 1s in production. Tests
	// shrink it so the retry path runs fast.
	backoffUnit time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

type proxyRequest struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
}

type proxyResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
	Error   string `json:"error"`
}

func NewClient(proxyBaseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		proxyBaseURL: strings.TrimRight(strings.TrimSpace(proxyBaseURL), "/"),
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
		backoffUnit:  time.Second,
		limiters:     make(map[string]*rate.Limiter),
	}
}

// FetchHTML retrieves the raw HTML of target via the proxy. The referer is
// the owning adapter's base URL; sites check it. Retries transient origin
// failures with linear backoff, everything else surfaces immediately.
func (c *Client) FetchHTML(ctx context.Context, target string, referer string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(target))
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, target)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * c.backoffUnit
			c.logger.Debug("retrying fetch", "url", target, "attempt", attempt, "backoff", backoff.String())
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.limiterFor(parsed.Hostname()).Wait(ctx); err != nil {
			return "", err
		}

		body, err := c.fetchOnce(ctx, target, referer)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("fetch %s failed after %d attempts: %w", target, maxRetries+1, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, target string, referer string) (string, error) {
	payload, err := json.Marshal(proxyRequest{
		URL:     target,
		Headers: browserHeaders(referer),
	})
	if err != nil {
		return "", fmt.Errorf("encode proxy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.proxyBaseURL+"/api/proxy", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create proxy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// Connection refused, DNS failure, client-side timeout. The
		// proxy never answered, distinct from an origin 504.
		return "", fmt.Errorf("%w: %v", ErrProxyUnreachable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", classifyStatus(res)
	}

	var decoded proxyResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 20<<20)).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !decoded.Success || decoded.Data == "" {
		if decoded.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrMalformedResponse, decoded.Error)
		}
		return "", ErrMalformedResponse
	}

	return decoded.Data, nil
}

func classifyStatus(res *http.Response) error {
	switch res.StatusCode {
	case http.StatusTooManyRequests:
		retryAfter := 0
		if raw := res.Header.Get("Retry-After"); raw != "" {
			if seconds, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
				retryAfter = seconds
			}
		}
		return &RateLimitedError{RetryAfterSeconds: retryAfter}
	case http.StatusForbidden:
		return ErrBanned
	case http.StatusBadGateway:
		return ErrUpstreamBlocking
	case http.StatusGatewayTimeout:
		return ErrUpstreamTimeout
	case http.StatusNotFound:
		return ErrNotFound
	}
	if res.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrServerError, res.StatusCode)
	}
	return &HTTPError{Status: res.StatusCode}
}

func (c *Client) limiterFor(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	limiter, ok := c.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(2), 4)
		c.limiters[host] = limiter
	}
	return limiter
}

func browserHeaders(referer string) map[string]string {
	headers := map[string]string{
		"User-Agent":                desktopUserAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "same-origin",
	}
	if referer != "" {
		headers["Referer"] = referer
	}
	return headers
}
