package core

import (
	"math"
	"testing"
	"time"

	"github.com/spacegps/transfer-planner/model"
)

// ISS TLE, same vintage the simulator has always shipped for smoke tests.
const (
	issTLE1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	issTLE2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

func TestCircularMotionModelAdvances(t *testing.T) {
	epoch := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	m := &CircularMotionModel{Mu: earthGM, Radius: leoR, Epoch: epoch}
	craft := &model.Spacecraft{ID: "gps-1"}

	m.UpdateState(epoch, craft)
	if got := FromModel(craft.State.Position); math.Abs(got.X-leoR) > 1e-6 || math.Abs(got.Y) > 1e-6 {
		t.Fatalf("position at epoch = %v, want (+leoR, 0)", got)
	}

	// A quarter period later the craft is a quarter turn around.
	quarter := time.Duration(OrbitalPeriod(earthGM, leoR).Nanoseconds() / 4)
	m.UpdateState(epoch.Add(quarter), craft)
	got := FromModel(craft.State.Position)
	if math.Abs(got.Y-leoR) > leoR*1e-3 || math.Abs(got.X) > leoR*1e-3 {
		t.Fatalf("position after quarter period = %v, want (0, +leoR)", got)
	}

	// Speed stays circular throughout.
	v := FromModel(craft.State.Velocity).Norm()
	if math.Abs(v-CircularVelocity(earthGM, leoR)) > 1e-6 {
		t.Fatalf("speed = %v, want circular", v)
	}
}

func TestDeriveParkingOrbitFromISS(t *testing.T) {
	at := time.Date(2021, time.October, 2, 14, 0, 0, 0, time.UTC)
	orbit, err := DeriveParkingOrbit(issTLE1, issTLE2, at)
	if err != nil {
		t.Fatalf("DeriveParkingOrbit: %v", err)
	}

	// ISS: ~420 km altitude, 51.6° inclination.
	altKm := (orbit.Radius - 6.371e6) / 1000
	if altKm < 350 || altKm > 500 {
		t.Errorf("derived altitude = %.0f km, want ~420", altKm)
	}
	inclDeg := orbit.InclinationRad * 180 / math.Pi
	if math.Abs(inclDeg-51.6) > 1 {
		t.Errorf("derived inclination = %.2f°, want ~51.6", inclDeg)
	}
}

func TestDeriveParkingOrbitRequiresBothLines(t *testing.T) {
	if _, err := DeriveParkingOrbit(issTLE1, "", time.Now()); err == nil {
		t.Fatalf("expected error with missing TLE line")
	}
}

func TestNewMotionModelSelection(t *testing.T) {
	epoch := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	tleCraft := &model.Spacecraft{
		MotionSource: model.MotionSourceTLE,
		TLELine1:     issTLE1,
		TLELine2:     issTLE2,
	}
	if _, ok := NewMotionModel(tleCraft, earthGM, epoch).(*CircularMotionModel); !ok {
		t.Errorf("TLE craft should get a circular model at the derived radius")
	}

	circCraft := &model.Spacecraft{
		MotionSource:  model.MotionSourceCircular,
		ParkingRadius: leoR,
	}
	if _, ok := NewMotionModel(circCraft, earthGM, epoch).(*CircularMotionModel); !ok {
		t.Errorf("circular craft should get a circular model")
	}

	unknown := &model.Spacecraft{}
	if _, ok := NewMotionModel(unknown, earthGM, epoch).(*StaticMotionModel); !ok {
		t.Errorf("craft without motion source should be static")
	}

	badTLE := &model.Spacecraft{MotionSource: model.MotionSourceTLE}
	if _, ok := NewMotionModel(badTLE, earthGM, epoch).(*StaticMotionModel); !ok {
		t.Errorf("craft with unusable TLE should fall back to static")
	}
}
