// core/ephemeris_loader.go
package core

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spacegps/transfer-planner/kb"
	"github.com/spacegps/transfer-planner/model"
)

// Ephemeris is a small summary of what was loaded from JSON. It's mainly
// useful for logging or debugging from main().
type Ephemeris struct {
	Epoch    time.Time
	BodyIDs  []string
	CraftIDs []string
}

// internal JSON shapes – keep them unexported so we're free to evolve them.
type ephemerisJSON struct {
	// Epoch anchors every body's phase angle, RFC 3339.
	Epoch  string           `json:"epoch"`
	Bodies []astreJSON      `json:"bodies"`
	Craft  []spacecraftJSON `json:"craft"`
}

type astreJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// GM in m³/s², radius and orbit radius in metres, phase in radians.
	GM           float64 `json:"gm"`
	Radius       float64 `json:"radius"`
	ParentID     string  `json:"parent_id"`
	OrbitRadius  float64 `json:"orbit_radius"`
	PhaseAtEpoch float64 `json:"phase_at_epoch"`
}

type spacecraftJSON struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	WetMass         float64 `json:"wet_mass"`
	MaxThrust       float64 `json:"max_thrust"`
	ExhaustVelocity float64 `json:"exhaust_velocity"`
	PrimaryID       string  `json:"primary_id"`
	ParkingRadius   float64 `json:"parking_radius"`
	MotionSource    string  `json:"motion_source"` // "circular" | "tle"
	TLELine1        string  `json:"tle_line_1"`
	TLELine2        string  `json:"tle_line_2"`
}

// LoadEphemeris reads a JSON ephemeris from r, populates the
// KnowledgeBase with bodies and spacecraft, and returns a summary of what
// was loaded.
//
// Bodies must appear before any body or craft that references them; the
// KB enforces parent existence on insert, and we surface its errors
// directly rather than re-validating here.
func LoadEphemeris(store *kb.KnowledgeBase, r io.Reader) (*Ephemeris, error) {
	if store == nil {
		return nil, fmt.Errorf("LoadEphemeris: store is nil")
	}

	var payload ephemerisJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadEphemeris: decode failed: %w", err)
	}

	epoch := time.Time{}
	if payload.Epoch != "" {
		parsed, err := time.Parse(time.RFC3339, payload.Epoch)
		if err != nil {
			return nil, fmt.Errorf("LoadEphemeris: bad epoch %q: %w", payload.Epoch, err)
		}
		epoch = parsed
	}

	result := &Ephemeris{
		Epoch:    epoch,
		BodyIDs:  make([]string, 0, len(payload.Bodies)),
		CraftIDs: make([]string, 0, len(payload.Craft)),
	}

	for _, b := range payload.Bodies {
		astre := &model.Astre{
			ID:           b.ID,
			Name:         b.Name,
			GM:           b.GM,
			Radius:       b.Radius,
			ParentID:     b.ParentID,
			OrbitRadius:  b.OrbitRadius,
			PhaseAtEpoch: b.PhaseAtEpoch,
		}
		if err := store.AddAstre(astre); err != nil {
			return nil, fmt.Errorf("LoadEphemeris: body %q: %w", b.ID, err)
		}
		result.BodyIDs = append(result.BodyIDs, b.ID)
	}

	for _, c := range payload.Craft {
		craft := &model.Spacecraft{
			ID:              c.ID,
			Name:            c.Name,
			WetMass:         c.WetMass,
			MaxThrust:       c.MaxThrust,
			ExhaustVelocity: c.ExhaustVelocity,
			PrimaryID:       c.PrimaryID,
			ParkingRadius:   c.ParkingRadius,
			MotionSource:    parseMotionSource(c.MotionSource),
			TLELine1:        c.TLELine1,
			TLELine2:        c.TLELine2,
		}
		if err := store.AddSpacecraft(craft); err != nil {
			return nil, fmt.Errorf("LoadEphemeris: spacecraft %q: %w", c.ID, err)
		}
		result.CraftIDs = append(result.CraftIDs, c.ID)
	}

	return result, nil
}

func parseMotionSource(s string) model.MotionSource {
	switch s {
	case "circular":
		return model.MotionSourceCircular
	case "tle":
		return model.MotionSourceTLE
	default:
		return model.MotionSourceUnknown
	}
}
