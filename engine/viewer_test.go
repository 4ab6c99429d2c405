package engine

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-cone/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cone/engine/swap"
	"github.com/Carmen-Shannon/oxy-cone/engine/triangulation"
	"github.com/Carmen-Shannon/oxy-cone/engine/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// coneService answers every request with `segments` triangles, so results are told apart
// by their vertex count.
func coneService(t *testing.T, hold func(p triangulation.Params)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p triangulation.Params
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if hold != nil {
			hold(p)
		}
		faces := make([][]map[string]float64, 0, p.Segments)
		for i := 0; i < p.Segments; i++ {
			f := float64(i)
			faces = append(faces, []map[string]float64{
				{"x": 0, "y": p.Height, "z": 0},
				{"x": p.Radius, "y": 0, "z": f},
				{"x": -p.Radius, "y": 0, "z": f + 1},
			})
		}
		_ = json.NewEncoder(w).Encode(faces)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type harness struct {
	host    window.Window
	viewer  Viewer
	mu      sync.Mutex
	results []Result
}

func newHarness(t *testing.T, serviceURL string, options ...ViewerBuilderOption) *harness {
	t.Helper()
	host, err := window.NewWindow(window.WithSize(32, 32))
	require.NoError(t, err)
	t.Cleanup(func() { _ = host.Close() })

	reg, err := window.NewRegistry(host)
	require.NoError(t, err)

	client, err := triangulation.NewClient(serviceURL)
	require.NoError(t, err)

	h := &harness{host: host}
	options = append(options, WithResultCallback(func(r Result) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.results = append(h.results, r)
	}))
	h.viewer = NewViewer(reg, client, options...)
	require.NoError(t, h.viewer.Mount(window.DefaultID))
	t.Cleanup(h.viewer.Unmount)
	return h
}

// pump steps the host loop until n results have been delivered.
func (h *harness) pump(t *testing.T, n int) []Result {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		h.host.Step()
		h.mu.Lock()
		got := len(h.results)
		h.mu.Unlock()
		if got >= n {
			break
		}
		time.Sleep(time.Millisecond)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	require.GreaterOrEqual(t, len(h.results), n, "timed out waiting for results")
	return append([]Result(nil), h.results...)
}

func TestSubmitInstallsOneMesh(t *testing.T) {
	srv := coneService(t, nil)
	h := newHarness(t, srv.URL)

	assert.Equal(t, triangulation.Params{Height: 10, Radius: 5, Segments: 12}, h.viewer.Params())
	_, err := h.viewer.Submit()
	require.NoError(t, err)

	results := h.pump(t, 1)
	require.NoError(t, results[0].Err)
	assert.True(t, results[0].Applied)

	g := h.viewer.Geometry()
	require.NotNil(t, g)
	assert.Equal(t, 36, g.VertexCount())
	assert.Len(t, g.Positions(), 108)

	ctx := h.viewer.Manager().Context()
	require.NotNil(t, ctx)
	assert.Equal(t, 1, ctx.Scene.Count())
	assert.Same(t, g, ctx.Active().Geometry())
}

func TestResubmitReplacesMesh(t *testing.T) {
	srv := coneService(t, nil)
	h := newHarness(t, srv.URL)

	_, err := h.viewer.Submit()
	require.NoError(t, err)
	h.pump(t, 1)
	first := h.viewer.Manager().Active()

	h.viewer.SetSegments(4)
	_, err = h.viewer.Submit()
	require.NoError(t, err)
	h.pump(t, 2)

	ctx := h.viewer.Manager().Context()
	assert.Equal(t, 1, ctx.Scene.Count())
	assert.False(t, ctx.Scene.Contains(first))
	assert.Equal(t, 12, h.viewer.Geometry().VertexCount())
}

func TestFailedRequestKeepsMesh(t *testing.T) {
	fail := false
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[{"x":0,"y":1,"z":0},{"x":1,"y":0,"z":0},{"x":-1,"y":0,"z":0}]`))
	}))
	t.Cleanup(srv.Close)
	h := newHarness(t, srv.URL)

	_, err := h.viewer.Submit()
	require.NoError(t, err)
	h.pump(t, 1)
	before := h.viewer.Manager().Active()
	require.NotNil(t, before)

	mu.Lock()
	fail = true
	mu.Unlock()

	_, err = h.viewer.Submit()
	require.NoError(t, err)
	results := h.pump(t, 2)

	var se *triangulation.StatusError
	assert.ErrorAs(t, results[1].Err, &se)
	assert.False(t, results[1].Applied)
	assert.Same(t, before, h.viewer.Manager().Active())
	assert.Equal(t, 1, h.viewer.Manager().Context().Scene.Count())
}

func TestMalformedResponseKeepsMesh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"x":0,"y":1}]`))
	}))
	t.Cleanup(srv.Close)
	h := newHarness(t, srv.URL)

	_, err := h.viewer.Submit()
	require.NoError(t, err)
	results := h.pump(t, 1)

	assert.ErrorIs(t, results[0].Err, triangulation.ErrMalformedResponse)
	assert.ErrorIs(t, results[0].Err, geometry.ErrMalformedVertex)
	assert.Nil(t, h.viewer.Geometry())
	assert.Zero(t, h.viewer.Manager().Context().Scene.Count())
}

// outOfOrder submits segments=1 then segments=2, and answers the second request first.
func outOfOrder(t *testing.T, options ...ViewerBuilderOption) *harness {
	t.Helper()
	release := make(chan struct{})
	srv := coneService(t, func(p triangulation.Params) {
		if p.Segments == 1 {
			select {
			case <-release:
			case <-time.After(5 * time.Second):
			}
		}
	})
	h := newHarness(t, srv.URL, append(options, WithWorkers(2))...)

	h.viewer.SetSegments(1)
	_, err := h.viewer.Submit()
	require.NoError(t, err)
	h.viewer.SetSegments(2)
	_, err = h.viewer.Submit()
	require.NoError(t, err)

	results := h.pump(t, 1)
	require.Equal(t, uint64(2), results[0].Seq)
	close(release)
	h.pump(t, 2)
	return h
}

func TestLastResolvedWins(t *testing.T) {
	h := outOfOrder(t)
	assert.Equal(t, 3, h.viewer.Geometry().VertexCount())
	assert.Equal(t, 1, h.viewer.Manager().Context().Scene.Count())
}

func TestLastSubmittedWins(t *testing.T) {
	h := outOfOrder(t, WithSequencing(swap.LastSubmittedWins))
	assert.Equal(t, 6, h.viewer.Geometry().VertexCount())
	assert.False(t, h.results[1].Applied)
}

func TestSubmitRequiresMount(t *testing.T) {
	srv := coneService(t, nil)
	h := newHarness(t, srv.URL)

	h.viewer.Unmount()
	h.viewer.Unmount()
	_, err := h.viewer.Submit()
	assert.ErrorIs(t, err, ErrNotMounted)
	assert.Nil(t, h.viewer.Manager().Context())
	assert.Empty(t, h.host.Surfaces())
}

func TestRemountKeepsOneSurface(t *testing.T) {
	srv := coneService(t, nil)
	h := newHarness(t, srv.URL)

	require.NoError(t, h.viewer.Mount(window.DefaultID))
	assert.Len(t, h.host.Surfaces(), 1)
}

func TestResultFromEarlierMountIsDropped(t *testing.T) {
	srv := coneService(t, nil)
	h := newHarness(t, srv.URL)

	_, err := h.viewer.Submit()
	require.NoError(t, err)
	// The response is queued on the host but not applied until the next Step.
	require.Eventually(t, func() bool {
		tasks, _ := h.host.Pending()
		return tasks > 0
	}, 5*time.Second, time.Millisecond)

	h.viewer.Unmount()
	require.NoError(t, h.viewer.Mount(window.DefaultID))

	results := h.pump(t, 1)
	assert.ErrorIs(t, results[0].Err, ErrStaleMount)
	assert.False(t, results[0].Applied)
	assert.Zero(t, h.viewer.Manager().Context().Scene.Count())
	assert.Nil(t, h.viewer.Geometry())

	// The new mount still takes its own results.
	_, err = h.viewer.Submit()
	require.NoError(t, err)
	results = h.pump(t, 2)
	require.NoError(t, results[1].Err)
	assert.True(t, results[1].Applied)
	assert.Equal(t, 1, h.viewer.Manager().Context().Scene.Count())
}

func TestUnmountForgetsGeometry(t *testing.T) {
	srv := coneService(t, nil)
	h := newHarness(t, srv.URL)

	_, err := h.viewer.Submit()
	require.NoError(t, err)
	results := h.pump(t, 1)
	require.True(t, results[0].Applied)
	require.NotNil(t, h.viewer.Geometry())

	h.viewer.Unmount()
	assert.Nil(t, h.viewer.Geometry())

	require.NoError(t, h.viewer.Mount(window.DefaultID))
	assert.Nil(t, h.viewer.Geometry())
	assert.Zero(t, h.viewer.Manager().Context().Scene.Count())
}

func TestFormSetters(t *testing.T) {
	srv := coneService(t, nil)
	h := newHarness(t, srv.URL, WithParams(triangulation.Params{}))

	h.viewer.SetHeight(-3)
	h.viewer.SetRadius(0)
	h.viewer.SetSegments(7)
	assert.Equal(t, triangulation.Params{Height: -3, Radius: 0, Segments: 7}, h.viewer.Params())

	h.viewer.SetParams(triangulation.DefaultParams())
	assert.Equal(t, triangulation.DefaultParams(), h.viewer.Params())
}
