package core

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/spacegps/transfer-planner/kb"
	"github.com/spacegps/transfer-planner/model"
)

var (
	// ErrNoSharedPrimary is returned when origin and destination bodies
	// have no common primary the transfer can be planned about.
	ErrNoSharedPrimary = errors.New("origin and destination do not share a primary")
	// ErrUnknownBody is returned when a referenced astre is not in the KB.
	ErrUnknownBody = errors.New("unknown astre")
)

// DefaultParkingAltitude is the parking orbit altitude assumed above a
// destination body when the request does not specify one, in metres.
const DefaultParkingAltitude = 200e3

// PlanRequest describes one transfer to compute.
type PlanRequest struct {
	Craft *model.Spacecraft

	// OriginID is the body the craft is parked around; DestinationID is
	// the body to reach.
	OriginID      string
	DestinationID string

	// Departure is the earliest allowed departure epoch. The planner
	// pushes the departure burn to the next launch window after it.
	Departure time.Time

	// InclinationRad is the craft's parking-orbit inclination relative
	// to the transfer plane. A combined plane-change is folded into the
	// arrival burn when non-zero.
	InclinationRad float64

	// DestParkingRadius overrides the destination parking orbit radius
	// for interplanetary transfers. Zero selects the destination body's
	// radius plus DefaultParkingAltitude.
	DestParkingRadius float64
}

// Planner turns ephemeris state and a request into a TransferPlan of
// thrust tuples.
type Planner struct {
	store *kb.KnowledgeBase
	// epoch is the instant the ephemeris phase angles refer to.
	epoch time.Time
}

// NewPlanner constructs a planner over the given ephemeris store.
func NewPlanner(store *kb.KnowledgeBase, ephemerisEpoch time.Time) *Planner {
	return &Planner{store: store, epoch: ephemerisEpoch}
}

// BodyPhaseAt returns a body's angular position on its circular orbit at
// time t, in radians.
func (p *Planner) BodyPhaseAt(a *model.Astre, t time.Time) (float64, error) {
	parent := p.store.GetAstre(a.ParentID)
	if parent == nil {
		return 0, fmt.Errorf("%w: parent %q of %q", ErrUnknownBody, a.ParentID, a.ID)
	}
	n := MeanMotion(parent.GM, a.OrbitRadius)
	dt := t.Sub(p.epoch).Seconds()
	return WrapAngle(a.PhaseAtEpoch + n*dt), nil
}

// BodyPositionAt returns a body's position in its parent's inertial frame
// at time t.
func (p *Planner) BodyPositionAt(a *model.Astre, t time.Time) (Vec3, error) {
	theta, err := p.BodyPhaseAt(a, t)
	if err != nil {
		return Vec3{}, err
	}
	return OnCircle(a.OrbitRadius, theta), nil
}

// Plan computes the thrust sequence for the requested transfer.
//
// Two topologies are supported: the destination orbits the origin body
// (e.g. an Earth parking orbit to the Moon), and origin and destination
// are siblings about a shared primary (e.g. Earth to Mars). Anything else
// returns ErrNoSharedPrimary.
func (p *Planner) Plan(req PlanRequest) (*model.TransferPlan, error) {
	if req.Craft == nil {
		return nil, errors.New("plan request requires a spacecraft")
	}
	origin := p.store.GetAstre(req.OriginID)
	if origin == nil {
		return nil, fmt.Errorf("%w: origin %q", ErrUnknownBody, req.OriginID)
	}
	dest := p.store.GetAstre(req.DestinationID)
	if dest == nil {
		return nil, fmt.Errorf("%w: destination %q", ErrUnknownBody, req.DestinationID)
	}
	if err := validateOrbit(origin.GM, req.Craft.ParkingRadius); err != nil {
		return nil, fmt.Errorf("parking orbit: %w", err)
	}

	switch {
	case dest.ParentID == origin.ID:
		return p.planAboutOrigin(req, origin, dest)
	case origin.ParentID != "" && origin.ParentID == dest.ParentID:
		return p.planInterplanetary(req, origin, dest)
	default:
		return nil, fmt.Errorf("%w: %q and %q", ErrNoSharedPrimary, origin.ID, dest.ID)
	}
}

// planAboutOrigin handles transfers where the destination orbits the body
// the craft is parked around. The whole plan lives in the origin body's
// inertial frame.
func (p *Planner) planAboutOrigin(req PlanRequest, origin, dest *model.Astre) (*model.TransferPlan, error) {
	r1 := req.Craft.ParkingRadius
	r2 := dest.OrbitRadius

	sol, err := SolveHohmann(origin.GM, r1, r2)
	if err != nil {
		return nil, err
	}

	plan := &model.TransferPlan{
		OriginID:       origin.ID,
		DestinationID:  dest.ID,
		PrimaryID:      origin.ID,
		DepartureEpoch: req.Departure,
		TransferTime:   sol.TransferTime,
	}
	if r1 == r2 {
		// Already on the destination orbit; nothing to burn.
		finalizeBurns(req.Craft, plan)
		return plan, nil
	}

	destPhase, err := p.BodyPhaseAt(dest, req.Departure)
	if err != nil {
		return nil, err
	}

	// Current relative phase of the destination over the craft, taking
	// the craft's angle from its state when known.
	craftPhase := craftPhaseFromState(req.Craft)
	plan.WaitTime = WaitForWindow(origin.GM, r1, r2, destPhase-craftPhase, sol.PhaseAngle)

	// Angles at the departure burn. Both craft and destination have
	// advanced through the wait.
	wait := plan.WaitTime.Seconds()
	burnPhase := WrapAngle(craftPhase + MeanMotion(origin.GM, r1)*wait)
	arrivePhase := WrapAngle(burnPhase + math.Pi)

	dir := 1.0
	if !sol.Outward() {
		dir = -1
	}

	plan.Burns = append(plan.Burns, model.ThrustTuple{
		Label:    model.BurnDeparture,
		Position: OnCircle(r1, burnPhase).ToModel(),
		DeltaV:   TangentAt(burnPhase).Scale(dir * sol.DepartureDV).ToModel(),
		Epoch:    plan.WaitTime,
	})

	arrivalDV, arrivalLabel := arrivalDeltaV(
		TangentAt(arrivePhase),
		VisViva(origin.GM, r2, (r1+r2)/2),
		CircularVelocity(origin.GM, r2),
		req.InclinationRad,
	)
	plan.Burns = append(plan.Burns, model.ThrustTuple{
		Label:    arrivalLabel,
		Position: OnCircle(r2, arrivePhase).ToModel(),
		DeltaV:   arrivalDV.ToModel(),
		Epoch:    plan.WaitTime + sol.TransferTime,
	})

	finalizeBurns(req.Craft, plan)
	return plan, nil
}

// planInterplanetary handles sibling bodies via patched conics. Burn
// positions are expressed in the shared primary's frame, with the
// sub-SOI geometry collapsed to the body centres.
func (p *Planner) planInterplanetary(req PlanRequest, origin, dest *model.Astre) (*model.TransferPlan, error) {
	primary := p.store.GetAstre(origin.ParentID)
	if primary == nil {
		return nil, fmt.Errorf("%w: primary %q", ErrUnknownBody, origin.ParentID)
	}

	rPark2 := req.DestParkingRadius
	if rPark2 == 0 {
		rPark2 = dest.Radius + DefaultParkingAltitude
	}

	sol, err := SolveInterplanetary(
		primary.GM, origin.OrbitRadius, dest.OrbitRadius,
		origin.GM, req.Craft.ParkingRadius,
		dest.GM, rPark2,
	)
	if err != nil {
		return nil, err
	}
	helio := sol.Heliocentric

	originPhase, err := p.BodyPhaseAt(origin, req.Departure)
	if err != nil {
		return nil, err
	}
	destPhase, err := p.BodyPhaseAt(dest, req.Departure)
	if err != nil {
		return nil, err
	}

	plan := &model.TransferPlan{
		OriginID:       origin.ID,
		DestinationID:  dest.ID,
		PrimaryID:      primary.ID,
		DepartureEpoch: req.Departure,
		TransferTime:   helio.TransferTime,
		WaitTime: WaitForWindow(
			primary.GM, origin.OrbitRadius, dest.OrbitRadius,
			destPhase-originPhase, helio.PhaseAngle,
		),
	}

	wait := plan.WaitTime.Seconds()
	nOrigin := MeanMotion(primary.GM, origin.OrbitRadius)
	burnPhase := WrapAngle(originPhase + nOrigin*wait)
	arrivePhase := WrapAngle(burnPhase + math.Pi)

	dir := 1.0
	if !helio.Outward() {
		dir = -1
	}

	plan.Burns = append(plan.Burns, model.ThrustTuple{
		Label:    model.BurnDeparture,
		Position: OnCircle(origin.OrbitRadius, burnPhase).ToModel(),
		DeltaV:   TangentAt(burnPhase).Scale(dir * sol.EjectionDV).ToModel(),
		Epoch:    plan.WaitTime,
	})

	vPark := CircularVelocity(dest.GM, rPark2)
	captureDV, captureLabel := arrivalDeltaV(
		TangentAt(arrivePhase).Scale(dir),
		vPark+sol.CaptureDV,
		vPark,
		req.InclinationRad,
	)
	if captureLabel == model.BurnArrival {
		captureLabel = model.BurnInjection
	}
	plan.Burns = append(plan.Burns, model.ThrustTuple{
		Label:    captureLabel,
		Position: OnCircle(dest.OrbitRadius, arrivePhase).ToModel(),
		DeltaV:   captureDV.ToModel(),
		Epoch:    plan.WaitTime + helio.TransferTime,
	})

	finalizeBurns(req.Craft, plan)
	return plan, nil
}

// arrivalDeltaV builds the arrival burn vector, folding any inclination
// change into it. tangent is the unit direction of motion at the burn
// point, v1 the inbound speed along it, v2 the target circular speed.
// Tilting the target plane puts the out-of-plane share v2·sin(incl) on Z
// and shrinks the in-plane share to v2·cos(incl)−v1; the resulting
// magnitude is the usual law-of-cosines combined burn.
func arrivalDeltaV(tangent Vec3, v1, v2, incl float64) (Vec3, model.BurnLabel) {
	if incl == 0 {
		return tangent.Scale(v2 - v1), model.BurnArrival
	}
	dv := tangent.Scale(v2*math.Cos(incl) - v1)
	dv.Z = v2 * math.Sin(incl)
	return dv, model.BurnPlaneChange
}

// craftPhaseFromState derives the craft's angle on its parking orbit from
// its state vector, defaulting to 0 when no state is set.
func craftPhaseFromState(c *model.Spacecraft) float64 {
	pos := FromModel(c.State.Position)
	if pos.Norm() == 0 {
		return 0
	}
	return WrapAngle(math.Atan2(pos.Y, pos.X))
}

// finalizeBurns fills in totals, burn durations, and propellant use.
// Burns consume propellant sequentially, so later burns take longer for
// the same delta-v.
func finalizeBurns(c *model.Spacecraft, plan *model.TransferPlan) {
	mass := c.WetMass
	for i := range plan.Burns {
		dv := plan.Burns[i].DeltaVMag()
		plan.TotalDeltaV += dv

		if c.ExhaustVelocity <= 0 || mass <= 0 {
			continue
		}
		// Rocket equation: propellant burned for this impulse.
		mp := mass * (1 - math.Exp(-dv/c.ExhaustVelocity))
		plan.PropellantMass += mp
		if c.MaxThrust > 0 {
			// Thrust = mdot · ve, so burn time = mp·ve/F.
			secs := mp * c.ExhaustVelocity / c.MaxThrust
			plan.Burns[i].Duration = time.Duration(secs * float64(time.Second))
		}
		mass -= mp
	}
}
