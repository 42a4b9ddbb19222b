// Package openalex provides a polite, rate-limited client for the OpenAlex
// REST API: source-name resolution, single-source lookup, and cursor-paginated
// iteration over work records.
package openalex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the OpenAlex API base URL.
	BaseURL = "https://api.openalex.org"

	// DefaultTimeout is the per-attempt HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// RateLimit caps outgoing requests at 10 per second per OpenAlex documentation.
	RateLimit = 10.0

	// DefaultMaxRetries is the retry budget for retryable statuses.
	DefaultMaxRetries = 5

	// DefaultPoliteDelay is the pause after each successful request.
	DefaultPoliteDelay = 600 * time.Millisecond

	// DefaultCandidateLimit caps search matches returned per input name.
	DefaultCandidateLimit = 25

	// WorksPageSize is the cursor-pagination page size for works requests.
	WorksPageSize = 200

	// WorkSelectFields projects works responses down to the two fields
	// monthly aggregation needs.
	WorkSelectFields = "publication_date,cited_by_count"

	// backoffFactor multiplies the retry wait after each retryable response.
	backoffFactor = 1.6

	userAgent = "oatrends/1.0"
)

// Client is a rate-limited HTTP client for the OpenAlex API.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	baseURL     string
	mailto      string
	politeDelay time.Duration
	maxRetries  int
	sleep       func(time.Duration)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMailto sets the polite-pool contact email appended to every request.
func WithMailto(email string) ClientOption {
	return func(c *Client) {
		c.mailto = email
	}
}

// WithPoliteDelay sets the pause after each successful request.
func WithPoliteDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.politeDelay = d
	}
}

// WithMaxRetries sets the retry budget for retryable statuses.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// NewClient creates a new OpenAlex API client.
// It reads OPENALEX_MAILTO from the environment when no mailto option is given.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:     BaseURL,
		politeDelay: DefaultPoliteDelay,
		maxRetries:  DefaultMaxRetries,
		sleep:       time.Sleep,
	}

	if email := os.Getenv("OPENALEX_MAILTO"); email != "" {
		c.mailto = email
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// withMailto appends the mailto query parameter when configured.
func (c *Client) withMailto(rawURL string) string {
	if c.mailto == "" {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + "mailto=" + url.QueryEscape(c.mailto)
}

// get performs a GET with polite retry/backoff and returns the response body.
// Retryable statuses (429, 500, 502, 503, 504) are retried with exponentially
// increasing waits up to the retry budget; any other non-200 status fails
// immediately. After a 200 the client pauses for the polite delay before
// returning, throttling the outgoing request rate.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	reqURL := c.withMailto(rawURL)

	// The first retry wait matches the polite delay, floored so retries
	// still spread out when the delay is zero.
	backoff := c.politeDelay
	if backoff <= 0 {
		backoff = time.Second
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, readErr)
			}
			if c.politeDelay > 0 {
				c.sleep(c.politeDelay)
			}
			return body, nil

		case retryableStatus(resp.StatusCode):
			lastErr = &APIError{
				StatusCode: resp.StatusCode,
				URL:        rawURL,
				Body:       bodySnippet(body, 500),
			}
			c.sleep(backoff)
			backoff = time.Duration(float64(backoff) * backoffFactor)

		default:
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				URL:        rawURL,
				Body:       bodySnippet(body, 500),
			}
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, c.maxRetries, lastErr)
}
