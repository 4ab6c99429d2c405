package swap

import "log/slog"

// ControllerBuilderOption is a functional option for configuring a Controller.
type ControllerBuilderOption func(c *controller)

// WithColor sets the hex RGB color of installed meshes.
//
// Parameters:
//   - hex: the color, e.g. 0x00ff00
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithColor(hex uint32) ControllerBuilderOption {
	return func(c *controller) {
		c.color = hex
	}
}

// WithSequencing sets how overlapping results are ordered. Defaults to LastResolvedWins.
//
// Parameters:
//   - s: the sequencing mode
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithSequencing(s Sequencing) ControllerBuilderOption {
	return func(c *controller) {
		c.sequencing = s
	}
}

// WithLogger sets the controller's logger.
func WithLogger(logger *slog.Logger) ControllerBuilderOption {
	return func(c *controller) {
		c.logger = logger
	}
}
