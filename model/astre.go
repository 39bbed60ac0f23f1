package model

// Astre represents a celestial body (planet, moon, star) that can act as
// the origin or destination of a transfer, or as the primary another body
// orbits. All bodies are treated as point masses on circular orbits.
type Astre struct {
	ID   string
	Name string

	// GM is the standard gravitational parameter in m³/s².
	GM float64
	// Radius is the mean body radius in metres.
	Radius float64

	// ParentID identifies the primary this body orbits. Empty for the
	// root of the hierarchy (the Sun in the shipped ephemeris).
	ParentID string
	// OrbitRadius is the radius of the body's circular orbit about its
	// parent, in metres. Zero for the root body.
	OrbitRadius float64
	// PhaseAtEpoch is the angular position on that orbit at the
	// ephemeris epoch, in radians measured from the +X axis.
	PhaseAtEpoch float64
}

// IsRoot reports whether the body orbits nothing.
func (a *Astre) IsRoot() bool {
	return a.ParentID == ""
}
