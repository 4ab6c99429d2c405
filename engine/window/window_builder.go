package window

import "log/slog"

// WindowBuilderOption configures a window created by NewWindow.
type WindowBuilderOption func(w *engineWindow)

// WithID sets the id the window is registered under, DefaultID when unset.
//
// Parameters:
//   - id: the host id
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithID(id string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.id = id
	}
}

// WithTitle sets the caption shown by desktop platforms.
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the viewport size requested from the platform. The platform may report a
// different size when it opens, and that size wins.
//
// Parameters:
//   - width: requested width in pixels
//   - height: requested height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width, w.height = width, height
	}
}

// WithSizeBounds limits the sizes Resize accepts. A zero maximum leaves that axis unbounded.
//
// Parameters:
//   - minWidth, minHeight: the smallest accepted size
//   - maxWidth, maxHeight: the largest accepted size
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeBounds(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth, w.minHeight = minWidth, minHeight
		w.maxWidth, w.maxHeight = maxWidth, maxHeight
	}
}

// WithFrameRate sets how many loop iterations per second Run performs.
// Zero or negative runs unpaced.
func WithFrameRate(fps float64) WindowBuilderOption {
	return func(w *engineWindow) {
		w.frameRate = fps
	}
}

// WithPlatform sets the native platform. Defaults to a headless platform.
func WithPlatform(p Platform) WindowBuilderOption {
	return func(w *engineWindow) {
		w.platform = p
	}
}

// WithLogger sets the window's logger.
func WithLogger(logger *slog.Logger) WindowBuilderOption {
	return func(w *engineWindow) {
		w.logger = logger
	}
}
