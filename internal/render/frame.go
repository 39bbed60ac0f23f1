// Package render draws top-down views of transfer plans: the origin and
// destination orbits, the propagated trajectory, and the positions where
// thrust is applied. Everything is software-rasterized into an RGBA frame
// so headless runs can dump PNG files without a display.
package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

// Frame is a fixed-size RGBA frame buffer.
type Frame struct {
	img *image.RGBA
	w   int
	h   int
}

// NewFrame allocates a frame filled with the background color.
func NewFrame(w, h int, bg color.RGBA) *Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, bg)
		}
	}
	return &Frame{img: img, w: w, h: h}
}

// Set writes one pixel, ignoring coordinates outside the frame.
func (f *Frame) Set(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return
	}
	f.img.SetRGBA(x, y, c)
}

// At reads one pixel; out-of-bounds reads return zero.
func (f *Frame) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return color.RGBA{}
	}
	return f.img.RGBAAt(x, y)
}

// Size returns the frame dimensions in pixels.
func (f *Frame) Size() (int, int) { return f.w, f.h }

// Image exposes the underlying image for encoding or compositing.
func (f *Frame) Image() *image.RGBA { return f.img }

// WritePNG encodes the frame as PNG.
func (f *Frame) WritePNG(w io.Writer) error {
	return png.Encode(w, f.img)
}
