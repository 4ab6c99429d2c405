// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "image/color"

// Color is a linear RGBA color with components in [0, 1].
type Color [4]float32

// HexColor converts a 0xRRGGBB value into an opaque Color.
//
// Parameters:
//   - hex: the packed 24-bit RGB value, e.g. 0x00ff00
//
// Returns:
//   - Color: the equivalent opaque color
func HexColor(hex uint32) Color {
	return Color{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
		1,
	}
}

// R returns the red component.
func (c Color) R() float32 { return c[0] }

// G returns the green component.
func (c Color) G() float32 { return c[1] }

// B returns the blue component.
func (c Color) B() float32 { return c[2] }

// A returns the alpha component.
func (c Color) A() float32 { return c[3] }

// RGBA converts the color to an 8-bit non-premultiplied image/color value.
//
// Returns:
//   - color.NRGBA: the 8-bit color
func (c Color) RGBA() color.NRGBA {
	return color.NRGBA{
		R: to8(c[0]),
		G: to8(c[1]),
		B: to8(c[2]),
		A: to8(c[3]),
	}
}

func to8(v float32) uint8 {
	return uint8(Clamp(v, 0, 1)*255 + 0.5)
}
