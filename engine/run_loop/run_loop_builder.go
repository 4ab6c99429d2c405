package run_loop

import "log/slog"

// LoopBuilderOption is a functional option for configuring a Loop.
type LoopBuilderOption func(*loop)

// WithLogger sets the logger used to report recovered callback panics.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) LoopBuilderOption {
	return func(l *loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}
