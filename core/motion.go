package core

import (
	"errors"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/spacegps/transfer-planner/model"
)

// MotionModel updates a spacecraft's state for a given simulation time.
type MotionModel interface {
	UpdateState(simTime time.Time, c *model.Spacecraft)
}

// StaticMotionModel leaves the spacecraft's state unchanged.
type StaticMotionModel struct{}

// UpdateState for static motion does nothing.
func (m *StaticMotionModel) UpdateState(simTime time.Time, c *model.Spacecraft) {
	// no-op
}

// CircularMotionModel keeps the craft on an ideal circular prograde orbit
// in the XY plane of its primary's inertial frame.
type CircularMotionModel struct {
	// Mu is the primary's gravitational parameter.
	Mu float64
	// Radius is the orbit radius in metres.
	Radius float64
	// Epoch is the instant at which the craft sits at PhaseAtEpoch.
	Epoch time.Time
	// PhaseAtEpoch is the angle from +X at Epoch, radians.
	PhaseAtEpoch float64
}

// UpdateState places the craft at its orbital angle for simTime.
func (m *CircularMotionModel) UpdateState(simTime time.Time, c *model.Spacecraft) {
	n := MeanMotion(m.Mu, m.Radius)
	theta := WrapAngle(m.PhaseAtEpoch + n*simTime.Sub(m.Epoch).Seconds())

	v := CircularVelocity(m.Mu, m.Radius)
	c.State = model.State{
		Position: OnCircle(m.Radius, theta).ToModel(),
		Velocity: TangentAt(theta).Scale(v).ToModel(),
	}
}

// EarthGM is used when deriving parking orbits from TLEs; SGP4 itself
// carries its own gravity constants.
const EarthGM = 3.986004418e14

// ParkingOrbit is a circular approximation of an orbit recovered from
// two-line elements.
type ParkingOrbit struct {
	// Radius is the semi-major axis in metres. For the near-circular
	// orbits TLEs describe this doubles as the parking radius.
	Radius float64
	// InclinationRad is the orbit's inclination in radians.
	InclinationRad float64
}

// DeriveParkingOrbit recovers a circular parking orbit from a TLE by
// propagating it with SGP4 at the given epoch and reading the semi-major
// axis and inclination off the resulting state vector.
// go-satellite works in kilometres; we return metres.
func DeriveParkingOrbit(line1, line2 string, at time.Time) (*ParkingOrbit, error) {
	if line1 == "" || line2 == "" {
		return nil, errors.New("both TLE lines are required")
	}
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)

	year, month, day := at.Date()
	hour, min, sec := at.Clock()
	posKm, velKm := satellite.Propagate(sat, year, int(month), day, hour, min, sec)

	const kmToM = 1000.0
	pos := Vec3{X: posKm.X * kmToM, Y: posKm.Y * kmToM, Z: posKm.Z * kmToM}
	vel := Vec3{X: velKm.X * kmToM, Y: velKm.Y * kmToM, Z: velKm.Z * kmToM}

	r := pos.Norm()
	v := vel.Norm()
	if r == 0 || v == 0 {
		return nil, errors.New("SGP4 propagation produced a degenerate state")
	}

	// Semi-major axis from the vis-viva relation.
	a := 1 / (2/r - v*v/EarthGM)
	if a <= 0 {
		return nil, errors.New("TLE describes a non-elliptical orbit")
	}

	// Inclination from the angular momentum vector.
	h := pos.Cross(vel)
	incl := math.Acos(h.Z / h.Norm())

	return &ParkingOrbit{Radius: a, InclinationRad: incl}, nil
}

// NewMotionModel chooses an appropriate MotionModel for the spacecraft.
// TLE-sourced craft get a circular model at their derived parking orbit;
// circular-sourced craft use their declared parking radius; anything else
// is static.
func NewMotionModel(c *model.Spacecraft, mu float64, epoch time.Time) MotionModel {
	switch c.MotionSource {
	case model.MotionSourceTLE:
		orbit, err := DeriveParkingOrbit(c.TLELine1, c.TLELine2, epoch)
		if err != nil {
			return &StaticMotionModel{}
		}
		return &CircularMotionModel{Mu: mu, Radius: orbit.Radius, Epoch: epoch}
	case model.MotionSourceCircular:
		if c.ParkingRadius > 0 {
			return &CircularMotionModel{Mu: mu, Radius: c.ParkingRadius, Epoch: epoch}
		}
	}
	return &StaticMotionModel{}
}
