package core

import (
	"fmt"
	"math"
	"time"
)

// Two-body circular-orbit relations. Everything here is SI: metres,
// seconds, m/s, radians. No relativistic corrections.

// CircularVelocity returns the speed of a circular orbit of radius r
// about a primary with gravitational parameter mu.
func CircularVelocity(mu, r float64) float64 {
	return math.Sqrt(mu / r)
}

// OrbitalPeriod returns the period of a circular orbit of radius r.
func OrbitalPeriod(mu, r float64) time.Duration {
	secs := 2 * math.Pi * math.Sqrt(r*r*r/mu)
	return time.Duration(secs * float64(time.Second))
}

// MeanMotion returns the angular rate in rad/s of a circular orbit.
func MeanMotion(mu, r float64) float64 {
	return math.Sqrt(mu / (r * r * r))
}

// VisViva returns the orbital speed at radius r on an orbit with
// semi-major axis a about a primary with gravitational parameter mu.
func VisViva(mu, r, a float64) float64 {
	return math.Sqrt(mu * (2/r - 1/a))
}

// SOIRadius returns the sphere-of-influence radius of a body with
// gravitational parameter gm, orbiting at distance d from a primary with
// parameter parentGM, using the Laplace approximation d·(m/M)^(2/5).
func SOIRadius(gm, parentGM, d float64) float64 {
	if gm <= 0 || parentGM <= 0 || d <= 0 {
		return 0
	}
	return d * math.Pow(gm/parentGM, 0.4)
}

// EscapeVelocity returns the escape speed from radius r.
func EscapeVelocity(mu, r float64) float64 {
	return math.Sqrt(2 * mu / r)
}

// validateOrbit rejects non-physical orbit parameters early so the
// planner can surface a clean error instead of NaNs.
func validateOrbit(mu, r float64) error {
	if mu <= 0 {
		return fmt.Errorf("gravitational parameter must be positive, got %g", mu)
	}
	if r <= 0 {
		return fmt.Errorf("orbit radius must be positive, got %g", r)
	}
	return nil
}
