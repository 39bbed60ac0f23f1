package render

import (
	"image/color"
	"math"

	"github.com/spacegps/transfer-planner/model"
)

// Palette used by plan views.
var (
	Background = color.RGBA{R: 8, G: 8, B: 16, A: 255}
	OrbitColor = color.RGBA{R: 70, G: 70, B: 110, A: 255}
	PathColor  = color.RGBA{R: 90, G: 200, B: 120, A: 255}
	BurnColor  = color.RGBA{R: 230, G: 90, B: 60, A: 255}
	BodyColor  = color.RGBA{R: 200, G: 200, B: 230, A: 255}
)

// PlanView renders a transfer plan into a fresh frame: the primary at the
// centre, a circle per burn radius, the sampled trajectory, and a marker
// at each thrust position.
func PlanView(w, h int, plan *model.TransferPlan, trajectory []model.Vec3) *Frame {
	f := NewFrame(w, h, Background)
	if plan == nil {
		return f
	}

	maxR := 0.0
	for _, b := range plan.Burns {
		if r := math.Hypot(b.Position.X, b.Position.Y); r > maxR {
			maxR = r
		}
	}
	for _, p := range trajectory {
		if r := math.Hypot(p.X, p.Y); r > maxR {
			maxR = r
		}
	}
	if maxR == 0 {
		return f
	}
	vp := FitRadius(w, h, maxR)

	// One reference circle per distinct burn radius.
	drawn := map[int64]bool{}
	for _, b := range plan.Burns {
		r := math.Hypot(b.Position.X, b.Position.Y)
		key := int64(r / 1000) // collapse radii within a kilometre
		if r == 0 || drawn[key] {
			continue
		}
		drawn[key] = true
		DrawCircle(f, vp, 0, 0, r, OrbitColor)
	}

	if len(trajectory) > 1 {
		pts := make([][2]float64, len(trajectory))
		for i, p := range trajectory {
			pts[i] = [2]float64{p.X, p.Y}
		}
		DrawPolyline(f, vp, pts, PathColor)
	}

	for _, b := range plan.Burns {
		FillCircle(f, vp, b.Position.X, b.Position.Y, 3, BurnColor)
	}

	// Primary body marker last so nearby burn markers can't cover the
	// frame centre.
	FillCircle(f, vp, 0, 0, 4, BodyColor)

	return f
}
