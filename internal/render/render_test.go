package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/spacegps/transfer-planner/model"
)

func TestProjectCentersWorldOrigin(t *testing.T) {
	vp := Viewport{MetresPerPixel: 1000, W: 200, H: 100}
	x, y := vp.Project(0, 0)
	if x != 100 || y != 50 {
		t.Fatalf("Project(0,0) = (%d,%d), want (100,50)", x, y)
	}

	// +Y world maps up, i.e. to a smaller row index.
	_, yUp := vp.Project(0, 10000)
	if yUp >= y {
		t.Fatalf("+Y projected to row %d, want above %d", yUp, y)
	}
}

func TestFitRadiusKeepsCircleInFrame(t *testing.T) {
	vp := FitRadius(400, 400, 42164e3)
	x, _ := vp.Project(42164e3, 0)
	if x < 200 || x >= 400 {
		t.Fatalf("circle edge projected to x=%d, want inside right half", x)
	}
}

func TestDrawLinePaintsEndpoints(t *testing.T) {
	f := NewFrame(32, 32, color.RGBA{})
	c := color.RGBA{R: 255, A: 255}
	DrawLine(f, 2, 2, 29, 17, c)
	if f.At(2, 2) != c || f.At(29, 17) != c {
		t.Fatalf("line endpoints not painted")
	}
}

func TestFillCircleRespectsBounds(t *testing.T) {
	f := NewFrame(16, 16, color.RGBA{})
	vp := Viewport{MetresPerPixel: 1, W: 16, H: 16}
	// Centre far outside the frame: must not panic, must not paint.
	FillCircle(f, vp, 1e6, 1e6, 3, color.RGBA{R: 255, A: 255})
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if f.At(x, y) != (color.RGBA{}) {
				t.Fatalf("out-of-frame circle painted pixel (%d,%d)", x, y)
			}
		}
	}
}

func samplePlan() *model.TransferPlan {
	return &model.TransferPlan{
		ID:            "plan-1",
		OriginID:      "earth",
		DestinationID: "moon",
		Burns: []model.ThrustTuple{
			{
				Label:    model.BurnDeparture,
				Position: model.Vec3{X: 6.678e6},
				DeltaV:   model.Vec3{Y: 3100},
			},
			{
				Label:    model.BurnArrival,
				Position: model.Vec3{X: -3.844e8},
				DeltaV:   model.Vec3{Y: -830},
				Epoch:    103 * time.Hour,
			},
		},
	}
}

func TestPlanViewMarksBurns(t *testing.T) {
	plan := samplePlan()
	f := PlanView(256, 256, plan, nil)

	vp := FitRadius(256, 256, 3.844e8)
	x, y := vp.Project(plan.Burns[1].Position.X, plan.Burns[1].Position.Y)
	if f.At(x, y) != BurnColor {
		t.Fatalf("arrival burn marker missing at (%d,%d)", x, y)
	}

	// Primary marker at the centre.
	if f.At(128, 128) != BodyColor {
		t.Fatalf("primary marker missing at frame centre")
	}
}

func TestPlanViewDrawsTrajectory(t *testing.T) {
	plan := samplePlan()
	traj := []model.Vec3{
		{X: 6.678e6},
		{X: 1e8, Y: 1e8},
		{X: -3.844e8},
	}
	f := PlanView(256, 256, plan, traj)

	vp := FitRadius(256, 256, 3.844e8)
	x, y := vp.Project(1e8, 1e8)
	if f.At(x, y) != PathColor {
		t.Fatalf("trajectory waypoint not painted at (%d,%d)", x, y)
	}
}

func TestPlanViewEmptyPlan(t *testing.T) {
	f := PlanView(64, 64, nil, nil)
	if w, h := f.Size(); w != 64 || h != 64 {
		t.Fatalf("frame size = %dx%d, want 64x64", w, h)
	}
}

func TestWritePNGRoundTrips(t *testing.T) {
	f := PlanView(64, 64, samplePlan(), nil)

	var buf bytes.Buffer
	if err := f.WritePNG(&buf); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode rendered PNG: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Fatalf("decoded size = %v, want 64x64", img.Bounds())
	}
}
