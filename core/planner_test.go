package core

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/spacegps/transfer-planner/kb"
	"github.com/spacegps/transfer-planner/model"
)

const moonOrbit = 384400e3

func testEphemeris(t *testing.T) (*kb.KnowledgeBase, time.Time) {
	t.Helper()
	store := kb.NewKnowledgeBase()
	bodies := []*model.Astre{
		{ID: "sun", Name: "Sun", GM: sunGM, Radius: 6.96e8},
		{ID: "earth", Name: "Earth", GM: earthGM, Radius: 6.371e6, ParentID: "sun", OrbitRadius: earthOrbit},
		{ID: "mars", Name: "Mars", GM: marsGM, Radius: 3.3895e6, ParentID: "sun", OrbitRadius: marsOrbit},
		{ID: "moon", Name: "Moon", GM: 4.9048695e12, Radius: 1.7374e6, ParentID: "earth", OrbitRadius: moonOrbit},
	}
	for _, b := range bodies {
		if err := store.AddAstre(b); err != nil {
			t.Fatalf("AddAstre(%s): %v", b.ID, err)
		}
	}
	return store, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func testCraft() *model.Spacecraft {
	return &model.Spacecraft{
		ID:              "gps-1",
		Name:            "Space GPS 1",
		WetMass:         12000,
		MaxThrust:       400e3,
		ExhaustVelocity: 4400,
		PrimaryID:       "earth",
		ParkingRadius:   leoR,
	}
}

func TestPlanEarthToMoon(t *testing.T) {
	store, epoch := testEphemeris(t)
	p := NewPlanner(store, epoch)

	plan, err := p.Plan(PlanRequest{
		Craft:         testCraft(),
		OriginID:      "earth",
		DestinationID: "moon",
		Departure:     epoch,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if len(plan.Burns) != 2 {
		t.Fatalf("got %d burns, want 2", len(plan.Burns))
	}
	if plan.Burns[0].Label != model.BurnDeparture {
		t.Errorf("first burn label = %s, want DEPARTURE", plan.Burns[0].Label)
	}

	// Classic trans-lunar figures from a 300 km parking orbit.
	if dv := plan.Burns[0].DeltaVMag(); math.Abs(dv-3106.5) > 5 {
		t.Errorf("departure dv = %.1f, want ~3106.5", dv)
	}
	if dv := plan.Burns[1].DeltaVMag(); math.Abs(dv-830.1) > 5 {
		t.Errorf("arrival dv = %.1f, want ~830.1", dv)
	}

	days := plan.TransferTime.Hours() / 24
	if math.Abs(days-4.98) > 0.1 {
		t.Errorf("transfer time = %.2f days, want ~4.98", days)
	}

	if plan.PrimaryID != "earth" {
		t.Errorf("primary = %s, want earth", plan.PrimaryID)
	}
	if plan.PropellantMass <= 0 || plan.PropellantMass >= 12000 {
		t.Errorf("propellant mass = %.1f kg, want in (0, wet mass)", plan.PropellantMass)
	}
	if plan.Burns[0].Duration <= 0 {
		t.Errorf("departure burn has no finite duration")
	}
}

func TestPlanRendezvousAlignment(t *testing.T) {
	store, epoch := testEphemeris(t)
	p := NewPlanner(store, epoch)

	plan, err := p.Plan(PlanRequest{
		Craft:         testCraft(),
		OriginID:      "earth",
		DestinationID: "moon",
		Departure:     epoch,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	// At the arrival epoch the Moon must sit where the arrival burn
	// fires — that's the whole point of the launch window.
	moon := store.GetAstre("moon")
	arrival := epoch.Add(plan.Burns[1].Epoch)
	moonPos, err := p.BodyPositionAt(moon, arrival)
	if err != nil {
		t.Fatalf("BodyPositionAt: %v", err)
	}

	burnPos := FromModel(plan.Burns[1].Position)
	if d := moonPos.DistanceTo(burnPos); d > 0.001*moonOrbit {
		t.Fatalf("arrival burn misses the Moon by %.0f km", d/1000)
	}
}

func TestPlanEarthToMars(t *testing.T) {
	store, epoch := testEphemeris(t)
	p := NewPlanner(store, epoch)

	plan, err := p.Plan(PlanRequest{
		Craft:         testCraft(),
		OriginID:      "earth",
		DestinationID: "mars",
		Departure:     epoch,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if plan.PrimaryID != "sun" {
		t.Errorf("primary = %s, want sun", plan.PrimaryID)
	}
	if len(plan.Burns) != 2 {
		t.Fatalf("got %d burns, want 2", len(plan.Burns))
	}
	if plan.Burns[1].Label != model.BurnInjection {
		t.Errorf("capture burn label = %s, want INJECTION", plan.Burns[1].Label)
	}

	if dv := plan.Burns[0].DeltaVMag(); math.Abs(dv-3590) > 10 {
		t.Errorf("ejection dv = %.1f, want ~3590", dv)
	}
	if dv := plan.Burns[1].DeltaVMag(); math.Abs(dv-2102.7) > 10 {
		t.Errorf("capture dv = %.1f, want ~2102.7", dv)
	}

	days := plan.TransferTime.Hours() / 24
	if math.Abs(days-258.9) > 1 {
		t.Errorf("transfer time = %.1f days, want ~258.9", days)
	}
	if plan.WaitTime < 0 {
		t.Errorf("wait time is negative: %v", plan.WaitTime)
	}
}

func TestPlanSameRadiusIsZeroBurn(t *testing.T) {
	store, epoch := testEphemeris(t)
	p := NewPlanner(store, epoch)

	craft := testCraft()
	craft.ParkingRadius = moonOrbit

	plan, err := p.Plan(PlanRequest{
		Craft:         craft,
		OriginID:      "earth",
		DestinationID: "moon",
		Departure:     epoch,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Burns) != 0 {
		t.Fatalf("same-radius plan has %d burns, want 0", len(plan.Burns))
	}
	if plan.TotalDeltaV != 0 {
		t.Fatalf("same-radius plan total dv = %v, want 0", plan.TotalDeltaV)
	}
}

func TestPlanPlaneChangeFoldedIntoArrival(t *testing.T) {
	store, epoch := testEphemeris(t)
	p := NewPlanner(store, epoch)

	coplanar, err := p.Plan(PlanRequest{
		Craft:         testCraft(),
		OriginID:      "earth",
		DestinationID: "moon",
		Departure:     epoch,
	})
	if err != nil {
		t.Fatalf("coplanar Plan: %v", err)
	}

	inclined, err := p.Plan(PlanRequest{
		Craft:          testCraft(),
		OriginID:       "earth",
		DestinationID:  "moon",
		Departure:      epoch,
		InclinationRad: 28.5 * math.Pi / 180,
	})
	if err != nil {
		t.Fatalf("inclined Plan: %v", err)
	}

	if inclined.Burns[1].Label != model.BurnPlaneChange {
		t.Errorf("inclined arrival label = %s, want PLANE_CHANGE", inclined.Burns[1].Label)
	}
	if inclined.TotalDeltaV <= coplanar.TotalDeltaV {
		t.Errorf("plane change did not cost delta-v: %.1f <= %.1f",
			inclined.TotalDeltaV, coplanar.TotalDeltaV)
	}

	// The out-of-plane share of the combined burn lands on Z, and its
	// magnitude follows the law of cosines with the transfer arrival
	// speed and the target circular speed.
	incl := 28.5 * math.Pi / 180
	vArr := VisViva(earthGM, moonOrbit, (leoR+moonOrbit)/2)
	vCirc := CircularVelocity(earthGM, moonOrbit)
	arrival := FromModel(inclined.Burns[1].DeltaV)

	if wantZ := vCirc * math.Sin(incl); math.Abs(arrival.Z-wantZ) > 0.5 {
		t.Errorf("arrival burn Z = %.1f, want %.1f", arrival.Z, wantZ)
	}
	wantMag := math.Sqrt(vArr*vArr + vCirc*vCirc - 2*vArr*vCirc*math.Cos(incl))
	if math.Abs(arrival.Norm()-wantMag) > 0.5 {
		t.Errorf("arrival burn magnitude = %.1f, want %.1f", arrival.Norm(), wantMag)
	}

	res, err := VerifyPlan(earthGM, inclined, moonOrbit, time.Minute)
	if err != nil {
		t.Fatalf("VerifyPlan: %v", err)
	}
	if !res.Converged {
		t.Errorf("inclined plan did not converge: radial err %.4f, final speed %.1f",
			res.RadialError, res.FinalSpeed)
	}
}

func TestPlanNoSharedPrimary(t *testing.T) {
	store, epoch := testEphemeris(t)
	p := NewPlanner(store, epoch)

	// Moon → Mars crosses two primaries; the planner refuses.
	_, err := p.Plan(PlanRequest{
		Craft:         testCraft(),
		OriginID:      "moon",
		DestinationID: "mars",
		Departure:     epoch,
	})
	if !errors.Is(err, ErrNoSharedPrimary) {
		t.Fatalf("err = %v, want ErrNoSharedPrimary", err)
	}
}

func TestPlanUnknownBodies(t *testing.T) {
	store, epoch := testEphemeris(t)
	p := NewPlanner(store, epoch)

	_, err := p.Plan(PlanRequest{
		Craft:         testCraft(),
		OriginID:      "vulcan",
		DestinationID: "moon",
		Departure:     epoch,
	})
	if !errors.Is(err, ErrUnknownBody) {
		t.Fatalf("err = %v, want ErrUnknownBody", err)
	}

	_, err = p.Plan(PlanRequest{
		Craft:         testCraft(),
		OriginID:      "earth",
		DestinationID: "nibiru",
		Departure:     epoch,
	})
	if !errors.Is(err, ErrUnknownBody) {
		t.Fatalf("err = %v, want ErrUnknownBody", err)
	}
}

func TestPlanVerifiesNumerically(t *testing.T) {
	store, epoch := testEphemeris(t)
	p := NewPlanner(store, epoch)

	plan, err := p.Plan(PlanRequest{
		Craft:         testCraft(),
		OriginID:      "earth",
		DestinationID: "moon",
		Departure:     epoch,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	res, err := VerifyPlan(earthGM, plan, moonOrbit, 10*time.Second)
	if err != nil {
		t.Fatalf("VerifyPlan: %v", err)
	}
	if !res.Converged {
		t.Fatalf("planned transfer failed verification: radial error %.4f", res.RadialError)
	}
}
