// Package engine wires the cone viewer together: a form of cone parameters, the remote
// triangulation client, and the scene that displays whatever geometry came back last.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-cone/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cone/engine/profiler"
	"github.com/Carmen-Shannon/oxy-cone/engine/render_loop"
	"github.com/Carmen-Shannon/oxy-cone/engine/scene"
	"github.com/Carmen-Shannon/oxy-cone/engine/swap"
	"github.com/Carmen-Shannon/oxy-cone/engine/triangulation"
	"github.com/Carmen-Shannon/oxy-cone/engine/window"
)

var (
	// ErrNotMounted is returned by Submit before Mount or after Unmount.
	ErrNotMounted = errors.New("engine: viewer not mounted")

	// ErrStaleMount is reported for a result whose request was submitted to an earlier mount.
	// Such results are never installed.
	ErrStaleMount = errors.New("engine: result belongs to an earlier mount")
)

// Result reports the outcome of one Submit. It is delivered on the host's loop goroutine.
type Result struct {
	// Seq is the request's sequence number.
	Seq uint64

	// Params are the values the request was sent with.
	Params triangulation.Params

	// Geometry is the built geometry, or nil on failure.
	Geometry geometry.Geometry

	// Applied is false when the request failed or a newer result superseded it.
	Applied bool

	// Err is the transport, status, decode or install error.
	Err error
}

// viewer implements the Viewer interface.
type viewer struct {
	mu sync.Mutex

	hosts  scene.HostResolver
	client triangulation.Client

	manager    scene.Manager
	controller swap.Controller
	pool       worker.DynamicWorkerPool
	taskID     atomic.Int64

	params triangulation.Params
	host   window.Window
	ctx    context.Context
	cancel context.CancelFunc

	// mount is bumped on every unmount; results carry the value from their Submit.
	mount uint64

	// Pre-creation config collected from builder options
	workers        int
	color          uint32
	sequencing     swap.Sequencing
	cameraDistance float32
	rotationStep   float32
	profiling      bool
	managerOptions []scene.ManagerBuilderOption
	onResult       func(Result)
	logger         *slog.Logger
}

// Viewer is the cone viewer.
//
// Usage pattern:
//  1. Mount on a registered host window; this starts the render loop
//  2. Edit the parameters and Submit; results are installed on the host's loop
//  3. Unmount when done
type Viewer interface {
	// Mount initializes the scene on the host registered under hostID.
	// Mounting again first tears the previous mount down.
	//
	// Parameters:
	//   - hostID: the host window's id
	//
	// Returns:
	//   - error: scene.ErrHostNotFound, or the renderer's error
	Mount(hostID string) error

	// Unmount cancels in-flight requests, tears the scene down and forgets the displayed
	// geometry. Results of requests submitted before Unmount are never installed, even if the
	// viewer is mounted again. Safe to call more than once.
	Unmount()

	// Params returns the current form values.
	Params() triangulation.Params

	// SetParams replaces the form values. Values are not validated.
	SetParams(p triangulation.Params)

	// SetHeight sets the cone height.
	SetHeight(h float64)

	// SetRadius sets the cone radius.
	SetRadius(r float64)

	// SetSegments sets the segment count.
	SetSegments(n int)

	// Submit requests a triangulation for the current values on a worker goroutine.
	// The result is installed on the host's loop; failures are logged and leave the
	// displayed mesh unchanged.
	//
	// Returns:
	//   - uint64: the request's sequence number
	//   - error: ErrNotMounted
	Submit() (uint64, error)

	// Manager returns the scene lifecycle manager.
	Manager() scene.Manager

	// Controller returns the geometry swap controller.
	Controller() swap.Controller

	// Geometry returns the displayed geometry, or nil.
	Geometry() geometry.Geometry
}

var _ Viewer = &viewer{}

// NewViewer creates a Viewer.
//
// Parameters:
//   - hosts: resolves host ids to windows
//   - client: the triangulation service client
//   - options: functional options to configure the viewer
//
// Returns:
//   - Viewer: the new viewer
func NewViewer(hosts scene.HostResolver, client triangulation.Client, options ...ViewerBuilderOption) Viewer {
	if hosts == nil || client == nil {
		panic("engine: NewViewer requires a HostResolver and a Client")
	}
	v := &viewer{
		hosts:          hosts,
		client:         client,
		params:         triangulation.DefaultParams(),
		workers:        2,
		color:          swap.DefaultColor,
		sequencing:     swap.LastResolvedWins,
		cameraDistance: scene.DefaultCameraDistance,
		rotationStep:   render_loop.DefaultRotationStep,
	}
	for _, opt := range options {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}

	loopOptions := []render_loop.DriverBuilderOption{render_loop.WithRotationStep(v.rotationStep)}
	if v.profiling {
		loopOptions = append(loopOptions, render_loop.WithProfiler(profiler.NewProfiler(profiler.WithLogger(v.logger))))
	}

	managerOptions := []scene.ManagerBuilderOption{
		scene.WithLogger(v.logger),
		scene.WithCameraDistance(v.cameraDistance),
		scene.WithLoopOptions(loopOptions...),
	}
	v.manager = scene.NewManager(hosts, append(managerOptions, v.managerOptions...)...)
	v.controller = swap.NewController(v.manager,
		swap.WithColor(v.color),
		swap.WithSequencing(v.sequencing),
		swap.WithLogger(v.logger),
	)
	v.pool = worker.NewDynamicWorkerPool(v.workers, 256, time.Second)
	return v
}

func (v *viewer) Mount(hostID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.unmountLocked()
	ctx, err := v.manager.Initialize(hostID)
	if err != nil {
		return err
	}
	v.host = ctx.Host
	v.ctx, v.cancel = context.WithCancel(context.Background())
	v.logger.Info("viewer mounted", "host", hostID, "endpoint", v.client.Endpoint())
	return nil
}

func (v *viewer) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.unmountLocked()
}

func (v *viewer) unmountLocked() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	if v.host != nil {
		v.logger.Info("viewer unmounted", "host", v.host.ID())
	}
	v.host = nil
	v.ctx = nil
	v.mount++
	v.manager.Teardown()
	v.controller.Reset()
}

func (v *viewer) Params() triangulation.Params {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.params
}

func (v *viewer) SetParams(p triangulation.Params) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params = p
}

func (v *viewer) SetHeight(h float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.Height = h
}

func (v *viewer) SetRadius(r float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.Radius = r
}

func (v *viewer) SetSegments(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.Segments = n
}

func (v *viewer) Submit() (uint64, error) {
	v.mu.Lock()
	host, ctx, p, mount := v.host, v.ctx, v.params, v.mount
	v.mu.Unlock()
	if host == nil {
		return 0, ErrNotMounted
	}

	seq := v.controller.NextSequence()
	v.logger.Debug("submitting", "seq", seq, "height", p.Height, "radius", p.Radius, "segments", p.Segments)

	v.pool.SubmitTask(worker.Task{
		ID: int(v.taskID.Add(1)),
		Do: func() (any, error) {
			g, err := v.compute(ctx, seq, p)
			// Results are applied on the host loop so a swap never lands mid-frame.
			if postErr := host.Post(func() { v.apply(mount, Result{Seq: seq, Params: p, Geometry: g, Err: err}) }); postErr != nil {
				v.logger.Debug("dropping result for closed host", "seq", seq, "error", postErr)
			}
			return g, err
		},
	})
	return seq, nil
}

// compute runs on a worker goroutine.
func (v *viewer) compute(ctx context.Context, seq uint64, p triangulation.Params) (geometry.Geometry, error) {
	list, err := v.client.Compute(ctx, p)
	if err != nil {
		return nil, err
	}
	label := fmt.Sprintf("cone-%d", seq)
	g, err := geometry.FromTriangles(list, geometry.WithLabel(label))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", triangulation.ErrMalformedResponse, err)
	}
	return g, nil
}

// apply runs on the host loop goroutine. The mount check and the install happen under the
// viewer's lock so an Unmount or Mount cannot slip between them.
func (v *viewer) apply(mount uint64, r Result) {
	v.mu.Lock()
	switch {
	case mount != v.mount:
		r.Err = ErrStaleMount
	case r.Err == nil:
		r.Applied, r.Err = v.controller.Accept(r.Seq, r.Geometry)
	}
	v.mu.Unlock()

	switch {
	case errors.Is(r.Err, ErrStaleMount):
		v.logger.Debug("dropping result from an earlier mount", "seq", r.Seq)
	case r.Err != nil && errors.Is(r.Err, context.Canceled):
		v.logger.Debug("triangulation cancelled", "seq", r.Seq)
	case r.Err != nil:
		v.logger.Error("error while computing", "seq", r.Seq, "error", r.Err)
	case !r.Applied:
		v.logger.Debug("triangulation superseded", "seq", r.Seq)
	default:
		v.logger.Info("geometry updated", "seq", r.Seq, "vertices", r.Geometry.VertexCount(), "triangles", r.Geometry.TriangleCount())
	}

	if v.onResult != nil {
		v.onResult(r)
	}
}

func (v *viewer) Manager() scene.Manager {
	return v.manager
}

func (v *viewer) Controller() swap.Controller {
	return v.controller
}

func (v *viewer) Geometry() geometry.Geometry {
	return v.controller.Current()
}
