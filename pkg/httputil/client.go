// Package httputil provides the shared HTTP client used by zonesync providers.
package httputil

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Default HTTP client configuration values.
const (
	// DefaultTimeout is the per-attempt HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRetryMax is how many times a throttled or transiently failing
	// request is retried before the error is surfaced.
	DefaultRetryMax = 4

	// DefaultRetryWaitMin is the initial backoff between retries.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax caps the backoff between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// DefaultUserAgent is used when no custom user agent is specified.
	DefaultUserAgent = "zonesync/1.0"
)

// ClientConfig contains configuration for creating an HTTP client.
type ClientConfig struct {
	// Timeout is the per-attempt HTTP timeout. Defaults to 30 seconds.
	Timeout time.Duration

	// RetryMax is the maximum number of retries for 429/5xx responses and
	// transport errors. Defaults to DefaultRetryMax; set to -1 to disable
	// retries entirely.
	RetryMax int

	// UserAgent is the User-Agent header to set on requests.
	// Defaults to "zonesync/1.0" if not specified.
	UserAgent string

	// Logger enables debug logging for HTTP requests.
	// If nil, no debug logging is performed.
	Logger *slog.Logger
}

// userAgentTransport wraps an http.RoundTripper to add User-Agent header
// and optionally log requests at debug level.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
	logger    *slog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Set User-Agent if not already set
	if req.Header.Get("User-Agent") == "" && t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	if t.logger != nil {
		t.logger.Debug("HTTP request",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
		)
	}

	resp, err := t.base.RoundTrip(req)

	if t.logger != nil && resp != nil {
		t.logger.Debug("HTTP response",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.Int("status", resp.StatusCode),
		)
	}

	return resp, err
}

// NewClient creates an HTTP client with the specified configuration.
// If cfg is nil, defaults are used.
//
// The client retries 429 and 5xx responses with exponential backoff,
// honoring Retry-After where the server sends one. The configured timeout
// applies per attempt; the overall call may take longer while backing off.
func NewClient(cfg *ClientConfig) *http.Client {
	if cfg == nil {
		cfg = &ClientConfig{}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	retryMax := cfg.RetryMax
	switch {
	case retryMax == 0:
		retryMax = DefaultRetryMax
	case retryMax < 0:
		retryMax = 0
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.RetryWaitMin = DefaultRetryWaitMin
	rc.RetryWaitMax = DefaultRetryWaitMax
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil // request logging happens in the transport below
	// Hand the final response back to the caller once retries are spent so
	// status-code mapping stays with the provider client.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := rc.StandardClient()
	client.Transport = &userAgentTransport{
		base:      client.Transport,
		userAgent: userAgent,
		logger:    cfg.Logger,
	}
	return client
}
