package model

import (
	"math"
	"time"
)

// BurnLabel classifies the role of a thrust tuple within a plan.
type BurnLabel string

const (
	BurnDeparture   BurnLabel = "DEPARTURE"
	BurnArrival     BurnLabel = "ARRIVAL"
	BurnPlaneChange BurnLabel = "PLANE_CHANGE"
	BurnInjection   BurnLabel = "INJECTION"
)

// ThrustTuple is one (pos, tst) entry of a transfer plan: the position at
// which the engine fires and the thrust to apply there, expressed as an
// impulsive delta-v. Positions are metres in the inertial frame of the
// plan's primary; delta-v is m/s.
type ThrustTuple struct {
	Label BurnLabel `json:"label"`

	Position Vec3 `json:"position"`
	DeltaV   Vec3 `json:"delta_v"`

	// Epoch is the offset from the plan's departure epoch at which the
	// burn occurs.
	Epoch time.Duration `json:"epoch"`
	// Duration is the finite burn time implied by the craft's thrust and
	// mass. Zero when the craft's thrust is unspecified.
	Duration time.Duration `json:"duration"`
}

// DeltaVMag returns the scalar magnitude of the burn in m/s.
func (t *ThrustTuple) DeltaVMag() float64 {
	v := t.DeltaV
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// TransferPlan is the planner's output: an ordered thrust sequence plus
// aggregate figures of merit.
type TransferPlan struct {
	ID string `json:"id"`

	OriginID      string `json:"origin_id"`
	DestinationID string `json:"destination_id"`
	// PrimaryID is the body whose inertial frame all positions use.
	PrimaryID string `json:"primary_id"`

	DepartureEpoch time.Time     `json:"departure_epoch"`
	Burns          []ThrustTuple `json:"burns"`

	// TotalDeltaV is the sum of burn magnitudes in m/s.
	TotalDeltaV float64 `json:"total_delta_v"`
	// TransferTime spans departure burn to arrival burn.
	TransferTime time.Duration `json:"transfer_time"`
	// WaitTime is how long after DepartureEpoch the launch window opens.
	WaitTime time.Duration `json:"wait_time"`
	// PropellantMass is the propellant consumed in kilograms, from the
	// rocket equation; zero when the craft's exhaust velocity is unset.
	PropellantMass float64 `json:"propellant_mass"`
}
