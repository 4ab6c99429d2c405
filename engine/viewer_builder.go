package engine

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-cone/common"
	"github.com/Carmen-Shannon/oxy-cone/engine/scene"
	"github.com/Carmen-Shannon/oxy-cone/engine/swap"
	"github.com/Carmen-Shannon/oxy-cone/engine/triangulation"
)

// ViewerBuilderOption is a functional option for configuring a Viewer.
// Use the With* functions to create options that are applied directly to the viewer instance.
type ViewerBuilderOption func(*viewer)

// WithParams sets the initial form values.
//
// Parameters:
//   - p: the cone parameters
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithParams(p triangulation.Params) ViewerBuilderOption {
	return func(v *viewer) {
		v.params = p
	}
}

// WithWorkers sets how many triangulation requests may be in flight at once.
// Values below 1 are treated as 1.
//
// Parameters:
//   - n: the worker count (default 2)
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithWorkers(n int) ViewerBuilderOption {
	return func(v *viewer) {
		v.workers = max(n, 1)
	}
}

// WithColor sets the hex RGB color of the displayed mesh.
//
// Parameters:
//   - hex: the color (default 0x00ff00)
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithColor(hex uint32) ViewerBuilderOption {
	return func(v *viewer) {
		v.color = hex
	}
}

// WithSequencing sets how overlapping requests are ordered.
//
// Parameters:
//   - s: the sequencing mode (default swap.LastResolvedWins)
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithSequencing(s swap.Sequencing) ViewerBuilderOption {
	return func(v *viewer) {
		v.sequencing = s
	}
}

// WithRendererFactory sets how renderers are created on Mount.
func WithRendererFactory(factory scene.RendererFactory) ViewerBuilderOption {
	return func(v *viewer) {
		v.managerOptions = append(v.managerOptions, scene.WithRendererFactory(factory))
	}
}

// WithCameraDistance sets the camera's distance along +Z from the mesh.
func WithCameraDistance(distance float32) ViewerBuilderOption {
	return func(v *viewer) {
		v.cameraDistance = distance
	}
}

// WithRotationStep sets the per-frame rotation in radians.
func WithRotationStep(step float32) ViewerBuilderOption {
	return func(v *viewer) {
		v.rotationStep = step
	}
}

// WithProfiling enables or disables frame-rate and memory profiling output.
//
// Parameters:
//   - enabled: if true, the render loop logs profiler stats once per second
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithProfiling(enabled bool) ViewerBuilderOption {
	return func(v *viewer) {
		v.profiling = enabled
	}
}

// WithResultCallback sets a function called with every Submit's outcome, on the host loop.
func WithResultCallback(callback func(Result)) ViewerBuilderOption {
	return func(v *viewer) {
		v.onResult = callback
	}
}

// WithLogger sets the viewer's logger, shared with the scene, loop and controller.
func WithLogger(logger *slog.Logger) ViewerBuilderOption {
	return func(v *viewer) {
		v.logger = logger
	}
}

// WithClearColor sets the scene's background color.
func WithClearColor(hex uint32) ViewerBuilderOption {
	return func(v *viewer) {
		v.managerOptions = append(v.managerOptions, scene.WithClearColor(common.HexColor(hex)))
	}
}
