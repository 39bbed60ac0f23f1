package core

import (
	"errors"
	"math"
	"time"

	"github.com/spacegps/transfer-planner/kb"
	"github.com/spacegps/transfer-planner/model"
)

// SimulationEngine flies a spacecraft through a transfer plan in
// simulation time. It is designed to hang off a timectrl listener: every
// tick propagates the craft and fires any burns whose epoch has passed.
type SimulationEngine struct {
	store   *kb.KnowledgeBase
	prop    *Propagator
	plan    *model.TransferPlan
	craftID string

	started  bool
	startAt  time.Time
	elapsed  time.Duration
	nextBurn int
	state    State

	tickListeners []func(simTime time.Time, st State)
	burnListeners []func(model.ThrustTuple)
}

// NewSimulationEngine constructs an engine for one craft and plan. mu is
// the gravitational parameter of the plan's primary.
func NewSimulationEngine(store *kb.KnowledgeBase, mu float64, craftID string, plan *model.TransferPlan) (*SimulationEngine, error) {
	if plan == nil || len(plan.Burns) == 0 {
		return nil, errors.New("simulation requires a plan with at least one burn")
	}
	if store.GetSpacecraft(craftID) == nil {
		return nil, errors.New("spacecraft not found in knowledge base")
	}

	return &SimulationEngine{
		store:   store,
		prop:    &Propagator{Mu: mu},
		plan:    plan,
		craftID: craftID,
	}, nil
}

// RegisterTickListener adds a callback invoked after every tick with the
// craft's new state.
func (se *SimulationEngine) RegisterTickListener(fn func(time.Time, State)) {
	se.tickListeners = append(se.tickListeners, fn)
}

// RegisterBurnListener adds a callback invoked whenever a burn fires.
func (se *SimulationEngine) RegisterBurnListener(fn func(model.ThrustTuple)) {
	se.burnListeners = append(se.burnListeners, fn)
}

// OnPropagationStep installs a hook invoked after every RK4 integration
// step, for metrics or trajectory sampling finer than the tick interval.
func (se *SimulationEngine) OnPropagationStep(fn func(elapsed time.Duration, st State)) {
	se.prop.OnStep = fn
}

// Start initializes the craft on a circular prograde orbit through the
// departure burn's position and arms the burn sequence. simTime becomes
// the plan's zero epoch.
func (se *SimulationEngine) Start(simTime time.Time) {
	first := se.plan.Burns[0]
	pos := FromModel(first.Position)
	r := pos.Norm()
	theta := math.Atan2(pos.Y, pos.X)

	se.state = State{
		Pos: pos,
		Vel: TangentAt(theta).Scale(CircularVelocity(se.prop.Mu, r)),
	}
	se.startAt = simTime
	se.elapsed = 0
	se.nextBurn = 0
	se.started = true

	se.publish(simTime)
}

// publish writes the current state back to the knowledge base and, when
// the write succeeds, notifies tick listeners. A failed write keeps the
// listeners quiet so consumers never see a state the store rejected.
func (se *SimulationEngine) publish(simTime time.Time) {
	if err := se.store.UpdateCraftState(se.craftID, se.state.ToModel()); err != nil {
		return
	}
	for _, fn := range se.tickListeners {
		fn(simTime, se.state)
	}
}

// Tick advances the simulation to simTime, propagating between burns and
// applying each burn exactly at its epoch offset.
func (se *SimulationEngine) Tick(simTime time.Time) {
	if !se.started {
		se.Start(simTime)
		return
	}

	target := simTime.Sub(se.startAt)
	for se.elapsed < target {
		// Propagate up to the next burn epoch or the tick boundary,
		// whichever comes first.
		until := target
		if se.nextBurn < len(se.plan.Burns) {
			if e := se.plan.Burns[se.nextBurn].Epoch; e < until {
				until = e
			}
		}
		if until > se.elapsed {
			se.state = se.prop.Propagate(se.state, until-se.elapsed)
			se.elapsed = until
		}

		if se.nextBurn < len(se.plan.Burns) && se.elapsed >= se.plan.Burns[se.nextBurn].Epoch {
			burn := se.plan.Burns[se.nextBurn]
			se.state = ApplyImpulse(se.state, FromModel(burn.DeltaV))
			se.nextBurn++
			for _, fn := range se.burnListeners {
				fn(burn)
			}
		}
	}

	se.publish(simTime)
}

// Done reports whether every burn in the plan has fired.
func (se *SimulationEngine) Done() bool {
	return se.started && se.nextBurn >= len(se.plan.Burns)
}

// State returns the craft's current propagated state.
func (se *SimulationEngine) State() State {
	return se.state
}
