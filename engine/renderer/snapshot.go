package renderer

import (
	"fmt"
	"image"

	"github.com/fogleman/fauxgl"
)

// SavePNG writes img to path as a PNG file.
//
// Parameters:
//   - path: destination file path
//   - img: the image to write
//
// Returns:
//   - error: an error if the file could not be written
func SavePNG(path string, img image.Image) error {
	if err := fauxgl.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to save snapshot %q: %w", path, err)
	}
	return nil
}
