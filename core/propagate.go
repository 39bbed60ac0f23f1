package core

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/spacegps/transfer-planner/model"
)

// State is the propagator's position/velocity pair, metres and m/s in a
// primary-centred inertial frame.
type State struct {
	Pos Vec3
	Vel Vec3
}

// ToModel converts to the storage representation.
func (s State) ToModel() model.State {
	return model.State{Position: s.Pos.ToModel(), Velocity: s.Vel.ToModel()}
}

// StateFromModel converts from the storage representation.
func StateFromModel(st model.State) State {
	return State{Pos: FromModel(st.Position), Vel: FromModel(st.Velocity)}
}

// Propagator integrates two-body motion with fixed-step RK4. Impulsive
// burns are applied between steps as instantaneous velocity changes.
type Propagator struct {
	// Mu is the primary's gravitational parameter in m³/s².
	Mu float64
	// Step is the integration step. Defaults to 10s when zero.
	Step time.Duration

	// OnStep, when set, is invoked after every integration step with the
	// elapsed time and the new state. Used by the renderer to sample the
	// trajectory and by the engine's metrics hooks.
	OnStep func(elapsed time.Duration, st State)
}

const defaultStep = 10 * time.Second

// accel returns two-body gravitational acceleration at pos.
func (p *Propagator) accel(pos Vec3) Vec3 {
	r := pos.Norm()
	if r == 0 {
		return Vec3{}
	}
	return pos.Scale(-p.Mu / (r * r * r))
}

// step advances the state by dt seconds using classic RK4.
func (p *Propagator) step(st State, dt float64) State {
	k1v := p.accel(st.Pos)
	k1p := st.Vel

	k2v := p.accel(st.Pos.Add(k1p.Scale(dt / 2)))
	k2p := st.Vel.Add(k1v.Scale(dt / 2))

	k3v := p.accel(st.Pos.Add(k2p.Scale(dt / 2)))
	k3p := st.Vel.Add(k2v.Scale(dt / 2))

	k4v := p.accel(st.Pos.Add(k3p.Scale(dt)))
	k4p := st.Vel.Add(k3v.Scale(dt))

	st.Pos = st.Pos.Add(k1p.Add(k2p.Scale(2)).Add(k3p.Scale(2)).Add(k4p).Scale(dt / 6))
	st.Vel = st.Vel.Add(k1v.Add(k2v.Scale(2)).Add(k3v.Scale(2)).Add(k4v).Scale(dt / 6))
	return st
}

// Propagate advances st by the given duration, reporting each step to
// OnStep when set. The final partial step is shortened so the total
// elapsed time is exact.
func (p *Propagator) Propagate(st State, d time.Duration) State {
	if d <= 0 {
		return st
	}
	stepD := p.Step
	if stepD <= 0 {
		stepD = defaultStep
	}

	elapsed := time.Duration(0)
	for elapsed < d {
		dt := stepD
		if remaining := d - elapsed; remaining < dt {
			dt = remaining
		}
		st = p.step(st, dt.Seconds())
		elapsed += dt
		if p.OnStep != nil {
			p.OnStep(elapsed, st)
		}
	}
	return st
}

// ApplyImpulse adds an instantaneous delta-v to the state.
func ApplyImpulse(st State, dv Vec3) State {
	st.Vel = st.Vel.Add(dv)
	return st
}

// VerificationTolerance is the acceptable arrival radius error as a
// fraction of the target radius.
const VerificationTolerance = 0.01

// VerificationResult reports how closely a propagated plan reaches its
// destination orbit.
type VerificationResult struct {
	FinalRadius   float64 `json:"final_radius"`
	TargetRadius  float64 `json:"target_radius"`
	RadialError   float64 `json:"radial_error"`
	FinalSpeed    float64 `json:"final_speed"`
	CircularSpeed float64 `json:"circular_speed"`
	Converged     bool    `json:"converged"`
	Steps         int     `json:"steps"`
}

// VerifyPlan numerically integrates the plan's thrust tuples about a
// primary with parameter mu and compares the end state against a circular
// orbit of targetRadius. The craft is assumed on a circular prograde
// orbit through the first burn's position when the integration starts.
func VerifyPlan(mu float64, plan *model.TransferPlan, targetRadius float64, step time.Duration) (*VerificationResult, error) {
	if plan == nil || len(plan.Burns) == 0 {
		return nil, errors.New("plan has no burns to verify")
	}
	if err := validateOrbit(mu, targetRadius); err != nil {
		return nil, fmt.Errorf("target orbit: %w", err)
	}

	first := plan.Burns[0]
	pos := FromModel(first.Position)
	r := pos.Norm()
	if r == 0 {
		return nil, errors.New("first burn has no position")
	}
	theta := math.Atan2(pos.Y, pos.X)
	st := State{
		Pos: pos,
		Vel: TangentAt(theta).Scale(CircularVelocity(mu, r)),
	}

	steps := 0
	prop := &Propagator{
		Mu:     mu,
		Step:   step,
		OnStep: func(time.Duration, State) { steps++ },
	}

	elapsed := first.Epoch
	for _, burn := range plan.Burns {
		if burn.Epoch > elapsed {
			st = prop.Propagate(st, burn.Epoch-elapsed)
			elapsed = burn.Epoch
		}
		st = ApplyImpulse(st, FromModel(burn.DeltaV))
	}

	res := &VerificationResult{
		FinalRadius:   st.Pos.Norm(),
		TargetRadius:  targetRadius,
		FinalSpeed:    st.Vel.Norm(),
		CircularSpeed: CircularVelocity(mu, targetRadius),
		Steps:         steps,
	}
	res.RadialError = math.Abs(res.FinalRadius-targetRadius) / targetRadius
	res.Converged = res.RadialError <= VerificationTolerance
	return res, nil
}
