package core

import (
	"fmt"
	"math"
)

// InterplanetarySolution extends a heliocentric Hohmann transfer with the
// patched-conic escape and capture burns performed deep in the origin and
// destination bodies' gravity wells.
type InterplanetarySolution struct {
	// Heliocentric is the transfer between the two bodies' circular
	// orbits about their shared primary.
	Heliocentric *HohmannSolution

	// DepartureVInf and ArrivalVInf are the hyperbolic excess speeds at
	// the origin and destination spheres of influence, in m/s.
	DepartureVInf float64
	ArrivalVInf   float64

	// EjectionDV is the single burn from the origin parking orbit onto
	// the escape hyperbola. CaptureDV circularizes into the destination
	// parking orbit.
	EjectionDV float64
	CaptureDV  float64
}

// TotalDV returns the summed scalar delta-v of ejection and capture.
func (s *InterplanetarySolution) TotalDV() float64 {
	return s.EjectionDV + s.CaptureDV
}

// SolveInterplanetary computes a patched-conic transfer from a circular
// parking orbit of radius rPark1 about the origin body to one of radius
// rPark2 about the destination body. Both bodies move on circular orbits
// of radii rOrbit1 and rOrbit2 about a shared primary with parameter
// muPrimary; muBody1 and muBody2 are the bodies' own parameters.
func SolveInterplanetary(muPrimary, rOrbit1, rOrbit2, muBody1, rPark1, muBody2, rPark2 float64) (*InterplanetarySolution, error) {
	helio, err := SolveHohmann(muPrimary, rOrbit1, rOrbit2)
	if err != nil {
		return nil, fmt.Errorf("heliocentric leg: %w", err)
	}
	if err := validateOrbit(muBody1, rPark1); err != nil {
		return nil, fmt.Errorf("origin parking orbit: %w", err)
	}
	if err := validateOrbit(muBody2, rPark2); err != nil {
		return nil, fmt.Errorf("destination parking orbit: %w", err)
	}

	sol := &InterplanetarySolution{
		Heliocentric:  helio,
		DepartureVInf: helio.DepartureDV,
		ArrivalVInf:   helio.ArrivalDV,
	}

	// Burn from circular parking speed onto the hyperbola with the
	// required excess speed, evaluated at the parking radius.
	sol.EjectionDV = hyperbolicInjectionDV(muBody1, rPark1, sol.DepartureVInf)
	sol.CaptureDV = hyperbolicInjectionDV(muBody2, rPark2, sol.ArrivalVInf)

	return sol, nil
}

// hyperbolicInjectionDV returns the burn needed at periapsis radius rp to
// move between a circular orbit and a hyperbola with excess speed vInf.
func hyperbolicInjectionDV(mu, rp, vInf float64) float64 {
	vHyp := math.Sqrt(vInf*vInf + 2*mu/rp)
	vCirc := CircularVelocity(mu, rp)
	return vHyp - vCirc
}
