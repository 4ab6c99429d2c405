package scene

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-cone/common"
	"github.com/Carmen-Shannon/oxy-cone/engine/render_loop"
)

// ManagerBuilderOption is a functional option for configuring a Manager.
type ManagerBuilderOption func(m *manager)

// WithRendererFactory sets how renderers are created for hosts.
// Defaults to a software renderer.
//
// Parameters:
//   - factory: the renderer factory
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithRendererFactory(factory RendererFactory) ManagerBuilderOption {
	return func(m *manager) {
		m.factory = factory
	}
}

// WithCameraDistance sets the camera's distance along +Z from an installed mesh.
//
// Parameters:
//   - distance: the framing distance
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithCameraDistance(distance float32) ManagerBuilderOption {
	return func(m *manager) {
		m.distance = distance
	}
}

// WithClearColor sets the background color of every scene the manager creates.
func WithClearColor(c common.Color) ManagerBuilderOption {
	return func(m *manager) {
		m.background = append(m.background, WithBackgroundColor(c))
	}
}

// WithLoopOptions configures the render loop started by Initialize.
func WithLoopOptions(options ...render_loop.DriverBuilderOption) ManagerBuilderOption {
	return func(m *manager) {
		m.loopOptions = append(m.loopOptions, options...)
	}
}

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) ManagerBuilderOption {
	return func(m *manager) {
		m.logger = logger
	}
}
