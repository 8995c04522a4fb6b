package renderer

import (
	"fmt"
	"io"

	"github.com/fogleman/gg"
)

const captionMargin = 6.0

// newCaptionedContext draws the framebuffer and, if caption is set, a shadowed
// caption in the bottom-left corner
func newCaptionedContext(fb *Framebuffer, caption string) *gg.Context {
	dc := gg.NewContextForRGBA(fb.ToImage())
	if caption == "" {
		return dc
	}

	y := float64(fb.Height) - captionMargin
	dc.SetRGB(0, 0, 0)
	dc.DrawString(caption, captionMargin+1, y+1)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(caption, captionMargin, y)
	return dc
}

// EncodePNG writes the framebuffer as PNG
func EncodePNG(w io.Writer, fb *Framebuffer, caption string) error {
	if err := newCaptionedContext(fb, caption).EncodePNG(w); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// SavePNG writes the framebuffer to a PNG file at path
func SavePNG(path string, fb *Framebuffer, caption string) error {
	if err := newCaptionedContext(fb, caption).SavePNG(path); err != nil {
		return fmt.Errorf("saving png %s: %w", path, err)
	}
	return nil
}
