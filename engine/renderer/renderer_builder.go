package renderer

import "log/slog"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
// Only GPU backends present to a display; the software backend ignores it.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.cfg.PresentMode = mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for GPU backends.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
//
// Parameters:
//   - count: the MSAASampleCount to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.cfg.MSAA = count
	}
}

// WithSupersample sets the software backend's supersampling factor. The frame is rasterized at
// factor times the output size and downsampled, which smooths edges. Values below 1 are treated as 1.
//
// Parameters:
//   - factor: the supersampling factor
//
// Returns:
//   - RendererBuilderOption: a function that applies the supersample option to a renderer
func WithSupersample(factor int) RendererBuilderOption {
	return func(r *renderer) {
		r.cfg.Supersample = max(factor, 1)
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.cfg.ForceFallbackAdapter = force
	}
}

// WithLogger sets the logger used for backend diagnostics.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *slog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
