package renderer

import (
	"image/color"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// RGB8 is a tone-mapped 8-bit pixel
type RGB8 struct {
	R, G, B uint8
}

// RGBA converts the pixel to an opaque color.RGBA
func (c RGB8) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// ToneMap averages an accumulated sample sum and applies gamma 2 correction.
// Each channel is clamped to [0, 0.999] before scaling to [0, 255]; NaN maps to 0.
func ToneMap(sum core.Vec3, samples int) RGB8 {
	if samples <= 0 {
		return RGB8{}
	}
	scale := 1.0 / float64(samples)
	return RGB8{
		R: toByte(sum.X * scale),
		G: toByte(sum.Y * scale),
		B: toByte(sum.Z * scale),
	}
}

func toByte(v float64) uint8 {
	c := math.Sqrt(v)
	if math.IsNaN(c) {
		return 0
	}
	c = math.Max(0, math.Min(0.999, c))
	return uint8(256 * c)
}
