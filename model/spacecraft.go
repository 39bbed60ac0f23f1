package model

// MotionSource indicates how a spacecraft's initial orbit is determined.
type MotionSource int

const (
	MotionSourceUnknown MotionSource = iota
	// MotionSourceCircular places the craft on an idealized circular
	// parking orbit described by ParkingRadius.
	MotionSourceCircular
	// MotionSourceTLE derives the parking orbit from two-line elements
	// via SGP4 propagation.
	MotionSourceTLE
)

// State is a position/velocity pair in the inertial frame of the craft's
// current primary. Position in metres, velocity in m/s.
type State struct {
	Position Vec3
	Velocity Vec3
}

// Spacecraft represents the vehicle a transfer is planned for.
type Spacecraft struct {
	ID   string
	Name string

	// WetMass is the total mass including propellant, in kilograms.
	WetMass float64
	// MaxThrust is the engine thrust in newtons, used to turn impulsive
	// delta-v into finite burn durations.
	MaxThrust float64
	// ExhaustVelocity is the effective exhaust velocity in m/s, used for
	// propellant accounting via the rocket equation.
	ExhaustVelocity float64

	// PrimaryID is the body the craft currently orbits.
	PrimaryID string
	// ParkingRadius is the circular parking orbit radius in metres,
	// measured from the primary's centre.
	ParkingRadius float64

	MotionSource MotionSource
	// TLELine1 and TLELine2 hold two-line elements when MotionSourceTLE.
	TLELine1 string
	TLELine2 string

	State State
}

// Vec3 is a Cartesian vector in the primary-centred inertial frame.
// The model package keeps it free of behaviour; geometry operations live
// in core.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}
