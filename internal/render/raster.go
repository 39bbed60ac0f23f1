package render

import (
	"image/color"

	"github.com/chewxy/math32"
)

// Viewport is an orthographic top-down projection of the XY plane of the
// primary's inertial frame onto pixel coordinates. +X maps right, +Y maps
// up (so pixel rows are flipped).
type Viewport struct {
	// CenterX/CenterY is the world point, in metres, mapped to the
	// frame centre.
	CenterX, CenterY float32
	// MetresPerPixel sets the zoom.
	MetresPerPixel float32
	// W, H are the target frame dimensions.
	W, H int
}

// FitRadius builds a viewport centred on the origin that fits a circle of
// the given radius (metres) with a small margin.
func FitRadius(w, h int, radius float64) Viewport {
	extent := math32.Min(float32(w), float32(h))
	return Viewport{
		MetresPerPixel: 2.2 * float32(radius) / extent,
		W:              w,
		H:              h,
	}
}

// Project maps world metres to pixel coordinates.
func (v Viewport) Project(x, y float64) (int, int) {
	px := (float32(x) - v.CenterX) / v.MetresPerPixel
	py := (float32(y) - v.CenterY) / v.MetresPerPixel
	return v.W/2 + int(math32.Round(px)), v.H/2 - int(math32.Round(py))
}

// DrawLine rasterizes a line segment between two pixel points.
func DrawLine(f *Frame, x0, y0, x1, y1 int, c color.RGBA) {
	dx := math32.Abs(float32(x1 - x0))
	dy := math32.Abs(float32(y1 - y0))
	steps := int(math32.Max(dx, dy))
	if steps == 0 {
		f.Set(x0, y0, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float32(i) / float32(steps)
		x := float32(x0) + t*float32(x1-x0)
		y := float32(y0) + t*float32(y1-y0)
		f.Set(int(math32.Round(x)), int(math32.Round(y)), c)
	}
}

// DrawCircle sweeps a circle of the given world radius around a world
// centre point.
func DrawCircle(f *Frame, v Viewport, cx, cy, radius float64, c color.RGBA) {
	// Step fine enough that adjacent samples land on neighbouring
	// pixels at the circle's projected size.
	rPix := float32(radius) / v.MetresPerPixel
	steps := int(math32.Max(64, 8*rPix))
	prevX, prevY := 0, 0
	for i := 0; i <= steps; i++ {
		theta := 2 * math32.Pi * float32(i) / float32(steps)
		wx := cx + radius*float64(math32.Cos(theta))
		wy := cy + radius*float64(math32.Sin(theta))
		x, y := v.Project(wx, wy)
		if i > 0 {
			DrawLine(f, prevX, prevY, x, y, c)
		}
		prevX, prevY = x, y
	}
}

// FillCircle paints a filled disc of the given pixel radius around a
// world centre point. Used for body and burn markers.
func FillCircle(f *Frame, v Viewport, cx, cy float64, pixRadius int, c color.RGBA) {
	x0, y0 := v.Project(cx, cy)
	r2 := pixRadius * pixRadius
	for dy := -pixRadius; dy <= pixRadius; dy++ {
		for dx := -pixRadius; dx <= pixRadius; dx++ {
			if dx*dx+dy*dy <= r2 {
				f.Set(x0+dx, y0+dy, c)
			}
		}
	}
}

// DrawPolyline connects consecutive world-space points.
func DrawPolyline(f *Frame, v Viewport, pts [][2]float64, c color.RGBA) {
	for i := 1; i < len(pts); i++ {
		x0, y0 := v.Project(pts[i-1][0], pts[i-1][1])
		x1, y1 := v.Project(pts[i][0], pts[i][1])
		DrawLine(f, x0, y0, x1, y1, c)
	}
}
