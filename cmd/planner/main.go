// Command planner computes an orbital transfer between two astres and
// prints the resulting thrust sequence. It can optionally fly the plan
// through the simulation engine on an accelerated clock and render the
// flown trajectory to a PNG.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/spacegps/transfer-planner/core"
	"github.com/spacegps/transfer-planner/internal/logging"
	"github.com/spacegps/transfer-planner/internal/observability"
	"github.com/spacegps/transfer-planner/internal/render"
	"github.com/spacegps/transfer-planner/kb"
	"github.com/spacegps/transfer-planner/model"
	"github.com/spacegps/transfer-planner/timectrl"
)

func main() {
	ephemerisPath := flag.String("ephemeris", "configs/ephemeris.json", "path to a JSON ephemeris of bodies and spacecraft")
	craftID := flag.String("craft", "gps-1", "ID of the spacecraft to plan for")
	originID := flag.String("origin", "", "origin body ID (default: the craft's current primary)")
	destID := flag.String("dest", "moon", "destination body ID")
	departure := flag.String("departure", "", "earliest departure epoch, RFC 3339 (default: ephemeris epoch)")
	inclinationDeg := flag.Float64("inclination-deg", 0, "parking-orbit inclination relative to the transfer plane, degrees")
	destParking := flag.Float64("dest-parking-radius", 0, "destination parking orbit radius in metres (0 = body radius + 200 km)")
	simulate := flag.Bool("simulate", false, "fly the plan with the simulation engine after planning")
	tick := flag.Duration("tick", time.Minute, "simulated tick interval")
	accelerated := flag.Bool("accelerated", true, "run the simulation clock accelerated (vs real-time)")
	renderPath := flag.String("render", "", "write a PNG plan view of the flown trajectory to this path (requires -simulate)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	store := kb.NewKnowledgeBase()
	eph, err := loadEphemeris(store, *ephemerisPath)
	if err != nil {
		fatal(log, ctx, "failed to load ephemeris", err)
	}
	log.Info(ctx, "ephemeris loaded",
		logging.String("path", *ephemerisPath),
		logging.Int("bodies", len(eph.BodyIDs)),
		logging.Int("craft", len(eph.CraftIDs)))

	craft := store.GetSpacecraft(*craftID)
	if craft == nil {
		fatal(log, ctx, "unknown spacecraft", fmt.Errorf("%q not in ephemeris", *craftID))
	}

	depart := eph.Epoch
	if *departure != "" {
		depart, err = time.Parse(time.RFC3339, *departure)
		if err != nil {
			fatal(log, ctx, "bad -departure", err)
		}
	}

	incl := *inclinationDeg * degToRad
	if craft.MotionSource == model.MotionSourceTLE {
		park, err := core.DeriveParkingOrbit(craft.TLELine1, craft.TLELine2, depart)
		if err != nil {
			fatal(log, ctx, "failed to derive parking orbit from TLE", err)
		}
		craft.ParkingRadius = park.Radius
		if *inclinationDeg == 0 {
			incl = park.InclinationRad
		}
	}

	origin := *originID
	if origin == "" {
		origin = craft.PrimaryID
	}

	planner := core.NewPlanner(store, eph.Epoch)
	plan, err := planner.Plan(core.PlanRequest{
		Craft:             craft,
		OriginID:          origin,
		DestinationID:     *destID,
		Departure:         depart,
		InclinationRad:    incl,
		DestParkingRadius: *destParking,
	})
	if err != nil {
		fatal(log, ctx, "planning failed", err)
	}

	printPlan(plan, depart)

	if !*simulate {
		return
	}
	if plan.PrimaryID != plan.OriginID {
		fatal(log, ctx, "cannot simulate", fmt.Errorf("plan %s -> %s spans multiple frames", plan.OriginID, plan.DestinationID))
	}

	trajectory, err := flyPlan(log, store, craft.ID, plan, depart, *tick, *accelerated)
	if err != nil {
		fatal(log, ctx, "simulation failed", err)
	}

	if *renderPath != "" {
		if err := writePlanView(*renderPath, plan, trajectory); err != nil {
			fatal(log, ctx, "failed to render plan view", err)
		}
		log.Info(ctx, "plan view written", logging.String("path", *renderPath))
	}
}

func loadEphemeris(store *kb.KnowledgeBase, path string) (*core.Ephemeris, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return core.LoadEphemeris(store, f)
}

// printPlan writes the thrust sequence as (position, thrust) tuples, one
// burn per line, with absolute epochs.
func printPlan(plan *model.TransferPlan, depart time.Time) {
	fmt.Printf("Transfer %s -> %s (frame: %s)\n", plan.OriginID, plan.DestinationID, plan.PrimaryID)
	fmt.Printf("  wait for window: %s\n", plan.WaitTime.Round(time.Second))
	fmt.Printf("  transfer time:   %s\n", plan.TransferTime.Round(time.Second))
	fmt.Printf("  total delta-v:   %.1f m/s\n", plan.TotalDeltaV)
	if plan.PropellantMass > 0 {
		fmt.Printf("  propellant:      %.1f kg\n", plan.PropellantMass)
	}
	fmt.Println("  burns:")
	for _, b := range plan.Burns {
		fmt.Printf("    [%s] t=%s pos=(%.0f, %.0f, %.0f) m  dv=(%.1f, %.1f, %.1f) m/s  |dv|=%.1f  burn=%s\n",
			b.Label, depart.Add(b.Epoch).Format(time.RFC3339),
			b.Position.X, b.Position.Y, b.Position.Z,
			b.DeltaV.X, b.DeltaV.Y, b.DeltaV.Z,
			b.DeltaVMag(), b.Duration.Round(time.Second))
	}
}

// flyPlan runs the plan on the simulation engine, driven by the time
// controller, and returns the sampled trajectory.
func flyPlan(log logging.Logger, store *kb.KnowledgeBase, craftID string, plan *model.TransferPlan, depart time.Time, tick time.Duration, accelerated bool) ([]model.Vec3, error) {
	primary := store.GetAstre(plan.PrimaryID)
	if primary == nil {
		return nil, fmt.Errorf("primary %q not in ephemeris", plan.PrimaryID)
	}

	sim, err := observability.NewSimCollector(nil)
	if err != nil {
		return nil, err
	}

	engine, err := core.NewSimulationEngine(store, primary.GM, craftID, plan)
	if err != nil {
		return nil, err
	}

	var trajectory []model.Vec3
	engine.RegisterTickListener(func(_ time.Time, st core.State) {
		trajectory = append(trajectory, st.Pos.ToModel())
		sim.TicksTotal.Inc()
		sim.CraftRadiusMetres.Set(st.Pos.Norm())
	})
	engine.OnPropagationStep(func(time.Duration, core.State) {
		sim.PropagationSteps.Inc()
	})
	engine.RegisterBurnListener(func(b model.ThrustTuple) {
		sim.BurnsExecuted.Inc()
		log.Info(context.Background(), "burn executed",
			logging.String("label", string(b.Label)),
			logging.Float64("delta_v", b.DeltaVMag()))
	})

	mode := timectrl.RealTime
	if accelerated {
		mode = timectrl.Accelerated
	}
	tc := timectrl.NewTimeController(depart, tick, mode)
	engine.Start(depart)
	tc.AddListener(engine.Tick)

	// Run a little past arrival so the final orbit shows in the trajectory.
	total := plan.WaitTime + plan.TransferTime + 2*time.Hour
	<-tc.Start(total)

	if !engine.Done() {
		return nil, fmt.Errorf("engine still has pending burns after %s", total)
	}
	return trajectory, nil
}

func writePlanView(path string, plan *model.TransferPlan, trajectory []model.Vec3) error {
	frame := render.PlanView(1024, 1024, plan, trajectory)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return frame.WritePNG(f)
}

func fatal(log logging.Logger, ctx context.Context, msg string, err error) {
	log.Error(ctx, msg, logging.Err(err))
	os.Exit(1)
}

const degToRad = math.Pi / 180
