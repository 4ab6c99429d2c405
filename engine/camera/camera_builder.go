package camera

// CameraBuilderOption is a functional option applied by NewCamera.
type CameraBuilderOption func(*frameCamera)

// WithFraming places the eye distance units along +Z from the origin, looking at it.
//
// Parameters:
//   - distance: the eye's distance from the origin
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithFraming(distance float32) CameraBuilderOption {
	return func(c *frameCamera) {
		c.eye = [3]float32{0, 0, distance}
		c.target = [3]float32{}
	}
}

// WithLookAt sets the eye and target directly.
func WithLookAt(eye, target [3]float32) CameraBuilderOption {
	return func(c *frameCamera) {
		c.eye, c.target = eye, target
	}
}

// WithUp overrides the +Y up vector.
func WithUp(up [3]float32) CameraBuilderOption {
	return func(c *frameCamera) {
		c.up = up
	}
}

// WithProjection replaces the whole projection. Zero fields keep their defaults.
//
// Parameters:
//   - p: the projection settings
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithProjection(p Projection) CameraBuilderOption {
	return func(c *frameCamera) {
		if p.FovDegrees > 0 {
			c.proj.FovDegrees = p.FovDegrees
		}
		if p.Aspect > 0 {
			c.proj.Aspect = p.Aspect
		}
		if p.Near > 0 {
			c.proj.Near = p.Near
		}
		if p.Far > 0 {
			c.proj.Far = p.Far
		}
	}
}

// WithViewport derives the aspect ratio from a viewport size.
//
// Parameters:
//   - width: the viewport width in pixels
//   - height: the viewport height in pixels
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithViewport(width, height int) CameraBuilderOption {
	return func(c *frameCamera) {
		c.proj.Aspect = aspectOf(width, height)
	}
}
