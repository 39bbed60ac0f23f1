package core

import (
	"fmt"
	"math"
	"time"
)

// HohmannSolution describes the classic two-burn transfer between two
// circular coplanar orbits about the same primary.
type HohmannSolution struct {
	// R1 and R2 are the origin and destination orbit radii in metres.
	R1, R2 float64
	// Mu is the primary's gravitational parameter.
	Mu float64

	// DepartureDV and ArrivalDV are the scalar burn magnitudes in m/s.
	// Both are positive; the burn direction (prograde for an outward
	// transfer, retrograde for an inward one) is carried by the planner
	// when it turns the solution into thrust tuples.
	DepartureDV float64
	ArrivalDV   float64

	// TransferTime is half the period of the transfer ellipse.
	TransferTime time.Duration

	// PhaseAngle is the required angular lead of the destination over
	// the origin at the departure burn, in radians. Negative values mean
	// the destination must trail.
	PhaseAngle float64
}

// TotalDV returns the summed scalar delta-v of both burns.
func (h *HohmannSolution) TotalDV() float64 {
	return h.DepartureDV + h.ArrivalDV
}

// Outward reports whether the transfer raises the orbit.
func (h *HohmannSolution) Outward() bool {
	return h.R2 > h.R1
}

// SolveHohmann computes the two-burn transfer between circular coplanar
// orbits of radii r1 and r2 about a primary with parameter mu.
//
// When r1 == r2 the solution is a degenerate zero-burn plan with zero
// transfer time.
func SolveHohmann(mu, r1, r2 float64) (*HohmannSolution, error) {
	if err := validateOrbit(mu, r1); err != nil {
		return nil, fmt.Errorf("origin orbit: %w", err)
	}
	if err := validateOrbit(mu, r2); err != nil {
		return nil, fmt.Errorf("destination orbit: %w", err)
	}

	sol := &HohmannSolution{R1: r1, R2: r2, Mu: mu}
	if r1 == r2 {
		return sol, nil
	}

	a := (r1 + r2) / 2
	v1 := CircularVelocity(mu, r1)
	v2 := CircularVelocity(mu, r2)

	// Speeds on the transfer ellipse at its two apsides.
	vt1 := VisViva(mu, r1, a)
	vt2 := VisViva(mu, r2, a)

	sol.DepartureDV = math.Abs(vt1 - v1)
	sol.ArrivalDV = math.Abs(v2 - vt2)

	tSecs := math.Pi * math.Sqrt(a*a*a/mu)
	sol.TransferTime = time.Duration(tSecs * float64(time.Second))

	// During the transfer the destination sweeps n2·t; the craft sweeps
	// π. The destination must lead by the difference at departure.
	n2 := MeanMotion(mu, r2)
	sol.PhaseAngle = math.Pi - n2*tSecs

	return sol, nil
}

// SynodicPeriod returns the time between successive identical phase
// alignments of two circular orbits. Returns 0 when the orbits have the
// same radius (the phase never changes).
func SynodicPeriod(mu, r1, r2 float64) time.Duration {
	n1 := MeanMotion(mu, r1)
	n2 := MeanMotion(mu, r2)
	dn := math.Abs(n1 - n2)
	if dn == 0 {
		return 0
	}
	return time.Duration(2 * math.Pi / dn * float64(time.Second))
}

// WaitForWindow returns how long after the given epoch phase the launch
// window opens: the time until the destination's lead over the origin
// equals the required phase angle. currentPhase is destination phase minus
// origin phase at the epoch, in radians.
func WaitForWindow(mu, r1, r2, currentPhase, requiredPhase float64) time.Duration {
	n1 := MeanMotion(mu, r1)
	n2 := MeanMotion(mu, r2)
	dn := n2 - n1
	if dn == 0 {
		return 0
	}

	// Solve currentPhase + dn·t ≡ requiredPhase (mod 2π) for the
	// smallest non-negative t.
	diff := WrapAngle(requiredPhase - currentPhase)
	if diff == 0 {
		return 0
	}
	if dn < 0 {
		// Phase decreases over time; reach the target going the other
		// way around.
		diff = diff - 2*math.Pi
	}
	t := diff / dn
	return time.Duration(t * float64(time.Second))
}
