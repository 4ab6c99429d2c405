package triangulation

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ClientBuilderOption is a functional option for configuring a Client.
type ClientBuilderOption func(c *client)

// WithHTTPClient sets the HTTP client requests are sent with. Defaults to http.DefaultClient.
//
// Parameters:
//   - hc: the HTTP client
//
// Returns:
//   - ClientBuilderOption: option function to apply
func WithHTTPClient(hc *http.Client) ClientBuilderOption {
	return func(c *client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each Compute call. Zero, the default, leaves requests unbounded.
//
// Parameters:
//   - d: the per-request timeout
//
// Returns:
//   - ClientBuilderOption: option function to apply
func WithTimeout(d time.Duration) ClientBuilderOption {
	return func(c *client) {
		c.timeout = d
	}
}

// WithRateLimit caps how many requests per second reach the service; excess calls wait.
// A non-positive rps disables limiting.
//
// Parameters:
//   - rps: requests per second
//   - burst: requests allowed at once
//
// Returns:
//   - ClientBuilderOption: option function to apply
func WithRateLimit(rps float64, burst int) ClientBuilderOption {
	return func(c *client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithPath sets the compute endpoint path. Defaults to /compute.
func WithPath(path string) ClientBuilderOption {
	return func(c *client) {
		c.path = path
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) ClientBuilderOption {
	return func(c *client) {
		c.logger = logger
	}
}
