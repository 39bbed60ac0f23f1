package core

import (
	"math"
	"testing"
	"time"

	"github.com/spacegps/transfer-planner/model"
)

func circularState(mu, r float64) State {
	return State{
		Pos: Vec3{X: r},
		Vel: Vec3{Y: CircularVelocity(mu, r)},
	}
}

func TestPropagateCircularOrbitCloses(t *testing.T) {
	prop := &Propagator{Mu: earthGM, Step: time.Second}
	start := circularState(earthGM, leoR)

	period := OrbitalPeriod(earthGM, leoR)
	end := prop.Propagate(start, period)

	// One full revolution should return to the start within metres.
	if d := end.Pos.DistanceTo(start.Pos); d > 100 {
		t.Fatalf("orbit did not close: drifted %.1f m after one period", d)
	}
}

func TestPropagateConservesEnergy(t *testing.T) {
	prop := &Propagator{Mu: earthGM, Step: 10 * time.Second}
	start := circularState(earthGM, leoR)

	energy := func(st State) float64 {
		return st.Vel.Norm()*st.Vel.Norm()/2 - earthGM/st.Pos.Norm()
	}

	end := prop.Propagate(start, 6*time.Hour)
	e0, e1 := energy(start), energy(end)
	if rel := math.Abs(e1-e0) / math.Abs(e0); rel > 1e-6 {
		t.Fatalf("specific energy drifted by %.2e relative", rel)
	}
}

func TestPropagateKeepsRadiusOnCircularOrbit(t *testing.T) {
	prop := &Propagator{Mu: earthGM, Step: time.Second}
	maxDev := 0.0
	prop.OnStep = func(_ time.Duration, st State) {
		if dev := math.Abs(st.Pos.Norm() - leoR); dev > maxDev {
			maxDev = dev
		}
	}
	prop.Propagate(circularState(earthGM, leoR), time.Hour)
	if maxDev > 10 {
		t.Fatalf("circular orbit radius deviated by %.2f m", maxDev)
	}
}

func TestPropagateExactElapsedTime(t *testing.T) {
	prop := &Propagator{Mu: earthGM, Step: 7 * time.Second}
	var last time.Duration
	prop.OnStep = func(elapsed time.Duration, _ State) { last = elapsed }

	// 100s is not a multiple of the 7s step; the tail step must shrink.
	prop.Propagate(circularState(earthGM, leoR), 100*time.Second)
	if last != 100*time.Second {
		t.Fatalf("final elapsed = %v, want 100s", last)
	}
}

func TestApplyImpulse(t *testing.T) {
	st := State{Vel: Vec3{Y: 100}}
	got := ApplyImpulse(st, Vec3{Y: 50, Z: -25})
	if got.Vel != (Vec3{Y: 150, Z: -25}) {
		t.Fatalf("ApplyImpulse vel = %v", got.Vel)
	}
}

func TestVerifyPlanHohmannConverges(t *testing.T) {
	sol, err := SolveHohmann(earthGM, leoR, geoR)
	if err != nil {
		t.Fatalf("SolveHohmann: %v", err)
	}

	plan := &model.TransferPlan{
		Burns: []model.ThrustTuple{
			{
				Label:    model.BurnDeparture,
				Position: OnCircle(leoR, 0).ToModel(),
				DeltaV:   TangentAt(0).Scale(sol.DepartureDV).ToModel(),
				Epoch:    0,
			},
			{
				Label:    model.BurnArrival,
				Position: OnCircle(geoR, math.Pi).ToModel(),
				DeltaV:   TangentAt(math.Pi).Scale(sol.ArrivalDV).ToModel(),
				Epoch:    sol.TransferTime,
			},
		},
	}

	res, err := VerifyPlan(earthGM, plan, geoR, 5*time.Second)
	if err != nil {
		t.Fatalf("VerifyPlan: %v", err)
	}
	if !res.Converged {
		t.Fatalf("plan did not converge: radial error %.4f", res.RadialError)
	}
	if math.Abs(res.FinalSpeed-res.CircularSpeed) > 20 {
		t.Fatalf("final speed %.1f m/s, want ~circular %.1f", res.FinalSpeed, res.CircularSpeed)
	}
	if res.Steps == 0 {
		t.Fatalf("verification reported zero integration steps")
	}
}

func TestVerifyPlanRejectsEmptyPlan(t *testing.T) {
	if _, err := VerifyPlan(earthGM, &model.TransferPlan{}, geoR, time.Second); err == nil {
		t.Fatalf("expected error for plan without burns")
	}
	if _, err := VerifyPlan(earthGM, nil, geoR, time.Second); err == nil {
		t.Fatalf("expected error for nil plan")
	}
}
