package renderer

import (
	"image"
)

// Framebuffer holds a finished 8-bit RGB image, row-major with the top scanline first
type Framebuffer struct {
	Width  int
	Height int
	Pix    []RGB8
}

// NewFramebuffer allocates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pix:    make([]RGB8, width*height),
	}
}

// Set writes the pixel at column x of the given row
func (fb *Framebuffer) Set(x, row int, c RGB8) {
	fb.Pix[row*fb.Width+x] = c
}

// At returns the pixel at column x of the given row
func (fb *Framebuffer) At(x, row int) RGB8 {
	return fb.Pix[row*fb.Width+x]
}

// Row returns a slice aliasing one scanline
func (fb *Framebuffer) Row(row int) []RGB8 {
	return fb.Pix[row*fb.Width : (row+1)*fb.Width]
}

// ToImage converts the framebuffer to an opaque RGBA image
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for row := 0; row < fb.Height; row++ {
		for x, c := range fb.Row(row) {
			img.SetRGBA(x, row, c.RGBA())
		}
	}
	return img
}
