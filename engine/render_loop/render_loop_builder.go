package render_loop

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-cone/engine/profiler"
)

// DriverBuilderOption is a functional option for configuring a Driver.
type DriverBuilderOption func(d *driver)

// WithRotationStep sets the per-frame rotation in radians applied to the X and Y axes.
//
// Parameters:
//   - step: radians per frame
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithRotationStep(step float32) DriverBuilderOption {
	return func(d *driver) {
		d.step = step
	}
}

// WithProfiler ticks p after every rendered frame.
func WithProfiler(p *profiler.Profiler) DriverBuilderOption {
	return func(d *driver) {
		d.profiler = p
	}
}

// WithLogger sets the driver's logger.
func WithLogger(logger *slog.Logger) DriverBuilderOption {
	return func(d *driver) {
		d.logger = logger
	}
}
