package triangulation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-cone/engine/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePostsParams(t *testing.T) {
	var got Params
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/compute", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`[{"x":0,"y":1,"z":2},{"x":3,"y":4,"z":5},{"x":6,"y":7,"z":8}]`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/compute", c.Endpoint())

	list, err := c.Compute(context.Background(), Params{Height: 10, Radius: -5, Segments: 0})
	require.NoError(t, err)
	assert.Equal(t, Params{Height: 10, Radius: -5, Segments: 0}, got)
	assert.Equal(t, geometry.TriangleList{{X: 0, Y: 1, Z: 2}, {X: 3, Y: 4, Z: 5}, {X: 6, Y: 7, Z: 8}}, list)
}

func TestComputeStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "segments must be positive", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Compute(context.Background(), DefaultParams())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "segments must be positive", se.Body)
	assert.Contains(t, se.Error(), "400")
}

func TestComputeMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"nope"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Compute(context.Background(), DefaultParams())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestComputeTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url)
	require.NoError(t, err)

	_, err = c.Compute(context.Background(), DefaultParams())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestComputeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(srv.URL, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = c.Compute(context.Background(), DefaultParams())
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestComputeRateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRateLimit(0.001, 1), WithPath("compute"))
	require.NoError(t, err)

	list, err := c.Compute(context.Background(), DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, list)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Compute(ctx, DefaultParams())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "localhost:3001", "ftp://example.com", "http://"} {
		_, err := NewClient(u)
		assert.Error(t, err, u)
	}
}

func TestDecodeTrianglesFlattensNesting(t *testing.T) {
	body := `[
		[{"x":1,"y":2,"z":3},{"x":4,"y":5,"z":6},{"x":7,"y":8,"z":9}],
		[[{"x":10,"y":11,"z":12}]],
		{"x":13,"y":14,"z":15,"extra":true}
	]`
	list, err := DecodeTriangles([]byte(body))
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, geometry.TriangleVertex{X: 10, Y: 11, Z: 12}, list[3])
	assert.Equal(t, geometry.TriangleVertex{X: 13, Y: 14, Z: 15}, list[4])
}

func TestDecodeTrianglesEmpty(t *testing.T) {
	list, err := DecodeTriangles([]byte(` [] `))
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestDecodeTrianglesRejects(t *testing.T) {
	cases := map[string]string{
		"not array":      `{"x":1,"y":2,"z":3}`,
		"empty body":     ``,
		"missing field":  `[{"x":1,"y":2}]`,
		"null field":     `[{"x":1,"y":null,"z":3}]`,
		"string field":   `[{"x":"1","y":2,"z":3}]`,
		"scalar element": `[[1,2,3]]`,
		"truncated":      `[{"x":1,"y":2,"z":3}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeTriangles([]byte(body))
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}

	_, err := DecodeTriangles([]byte(`[[{"x":1}]]`))
	assert.ErrorIs(t, err, geometry.ErrMalformedVertex)
	assert.Contains(t, err.Error(), "$[0][0]")
}
