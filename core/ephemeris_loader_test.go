package core

import (
	"strings"
	"testing"
	"time"

	"github.com/spacegps/transfer-planner/kb"
	"github.com/spacegps/transfer-planner/model"
)

const sampleEphemeris = `{
  "epoch": "2026-03-01T00:00:00Z",
  "bodies": [
    {"id": "sun", "name": "Sun", "gm": 1.32712440018e20, "radius": 6.96e8},
    {"id": "earth", "name": "Earth", "gm": 3.986004418e14, "radius": 6.371e6,
     "parent_id": "sun", "orbit_radius": 1.496e11, "phase_at_epoch": 0.5},
    {"id": "moon", "name": "Moon", "gm": 4.9048695e12, "radius": 1.7374e6,
     "parent_id": "earth", "orbit_radius": 3.844e8}
  ],
  "craft": [
    {"id": "gps-1", "name": "Space GPS 1", "wet_mass": 12000,
     "max_thrust": 400000, "exhaust_velocity": 4400,
     "primary_id": "earth", "parking_radius": 6.678e6,
     "motion_source": "circular"}
  ]
}`

func TestLoadEphemeris(t *testing.T) {
	store := kb.NewKnowledgeBase()
	eph, err := LoadEphemeris(store, strings.NewReader(sampleEphemeris))
	if err != nil {
		t.Fatalf("LoadEphemeris: %v", err)
	}

	if len(eph.BodyIDs) != 3 || len(eph.CraftIDs) != 1 {
		t.Fatalf("loaded %d bodies, %d craft; want 3, 1", len(eph.BodyIDs), len(eph.CraftIDs))
	}
	wantEpoch := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !eph.Epoch.Equal(wantEpoch) {
		t.Fatalf("epoch = %v, want %v", eph.Epoch, wantEpoch)
	}

	earth := store.GetAstre("earth")
	if earth == nil {
		t.Fatalf("earth not in KB after load")
	}
	if earth.ParentID != "sun" || earth.PhaseAtEpoch != 0.5 {
		t.Fatalf("earth loaded wrong: %+v", earth)
	}

	craft := store.GetSpacecraft("gps-1")
	if craft == nil {
		t.Fatalf("craft not in KB after load")
	}
	if craft.MotionSource != model.MotionSourceCircular {
		t.Fatalf("craft motion source = %v, want circular", craft.MotionSource)
	}
}

func TestLoadEphemerisRejectsUnknownParent(t *testing.T) {
	const bad = `{"bodies": [
	  {"id": "moon", "name": "Moon", "gm": 1, "parent_id": "earth"}
	]}`
	store := kb.NewKnowledgeBase()
	if _, err := LoadEphemeris(store, strings.NewReader(bad)); err == nil {
		t.Fatalf("expected error for body with missing parent")
	}
}

func TestLoadEphemerisRejectsBadJSON(t *testing.T) {
	store := kb.NewKnowledgeBase()
	if _, err := LoadEphemeris(store, strings.NewReader("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLoadEphemerisRejectsBadEpoch(t *testing.T) {
	store := kb.NewKnowledgeBase()
	if _, err := LoadEphemeris(store, strings.NewReader(`{"epoch": "yesterday"}`)); err == nil {
		t.Fatalf("expected epoch parse error")
	}
}

func TestLoadEphemerisNilStore(t *testing.T) {
	if _, err := LoadEphemeris(nil, strings.NewReader("{}")); err == nil {
		t.Fatalf("expected error for nil store")
	}
}
