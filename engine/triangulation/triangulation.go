// Package triangulation is the HTTP client for the remote cone triangulation service.
package triangulation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-cone/engine/geometry"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is where the service listens unless configured otherwise.
	DefaultBaseURL = "http://localhost:3001"

	// DefaultPath is the compute endpoint, relative to the base URL.
	DefaultPath = "/compute"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 64 << 20
)

var (
	// ErrTransport is returned when the request could not be sent or the response not read.
	ErrTransport = errors.New("triangulation: transport failure")

	// ErrMalformedResponse is returned when the response body is not a (possibly nested)
	// array of {x, y, z} records.
	ErrMalformedResponse = errors.New("triangulation: malformed response")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("triangulation: service responded %s", e.Status)
	}
	return fmt.Sprintf("triangulation: service responded %s: %s", e.Status, e.Body)
}

// Params are the cone parameters sent to the service. They are forwarded as-is, including
// zero and negative values.
type Params struct {
	Height   float64 `json:"height"`
	Radius   float64 `json:"radius"`
	Segments int     `json:"segments"`
}

// DefaultParams returns the initial form values.
func DefaultParams() Params {
	return Params{Height: 10, Radius: 5, Segments: 12}
}

type client struct {
	baseURL    string
	path       string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Client computes cone triangulations remotely.
type Client interface {
	// Compute posts p to the service and decodes the returned triangles.
	//
	// Parameters:
	//   - ctx: cancels the request
	//   - p: the cone parameters
	//
	// Returns:
	//   - geometry.TriangleList: the flattened vertex records
	//   - error: ErrTransport, *StatusError or ErrMalformedResponse
	Compute(ctx context.Context, p Params) (geometry.TriangleList, error)

	// Endpoint returns the full URL requests are posted to.
	Endpoint() string
}

var _ Client = &client{}

// NewClient creates a Client for the service at baseURL.
//
// Parameters:
//   - baseURL: the service root, e.g. http://localhost:3001
//   - options: functional options to configure the client
//
// Returns:
//   - Client: the new client
//   - error: error if baseURL is not an absolute http(s) URL
func NewClient(baseURL string, options ...ClientBuilderOption) (Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid service URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid service URL %q: want an absolute http(s) URL", baseURL)
	}

	c := &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		path:       DefaultPath,
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

func (c *client) Endpoint() string {
	return c.baseURL + "/" + strings.TrimLeft(c.path, "/")
}

func (c *client) Compute(ctx context.Context, p Params) (geometry.TriangleList, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrTransport, err)
	}
	c.logger.Debug("triangulation response",
		"status", resp.StatusCode,
		"bytes", len(data),
		"elapsed", time.Since(start),
		"height", p.Height, "radius", p.Radius, "segments", p.Segments,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(truncate(data, 512))),
		}
	}
	return DecodeTriangles(data)
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
