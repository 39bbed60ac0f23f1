// internal/planapi/plan_service.go
package planapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spacegps/transfer-planner/core"
	"github.com/spacegps/transfer-planner/internal/logging"
	"github.com/spacegps/transfer-planner/internal/observability"
	"github.com/spacegps/transfer-planner/kb"
	"github.com/spacegps/transfer-planner/model"
	"go.opentelemetry.io/otel/attribute"
)

// defaultVerifyStep bounds propagation error during plan verification.
const defaultVerifyStep = 10 * time.Second

// Service exposes the transfer planner over a JSON HTTP surface.
//
// Semantics:
//   - CreatePlan validates, plans, assigns an ID, and retains the plan
//     in memory so it can be fetched and verified later.
//   - Bodies are read-only views of the ephemeris store.
//   - VerifyPlan numerically propagates a stored plan and reports how
//     close the propagated orbit lands to the planned target.
type Service struct {
	store   *kb.KnowledgeBase
	planner *core.Planner
	log     logging.Logger
	metrics *observability.APICollector

	mu     sync.Mutex
	nextID int
	plans  map[string]*model.TransferPlan
}

// NewService constructs a plan service over the given ephemeris store and
// planner. log and metrics may be nil.
func NewService(store *kb.KnowledgeBase, planner *core.Planner, log logging.Logger, metrics *observability.APICollector) *Service {
	if log == nil {
		log = logging.Noop()
	}
	return &Service{
		store:   store,
		planner: planner,
		log:     log,
		metrics: metrics,
		plans:   make(map[string]*model.TransferPlan),
	}
}

// Handler builds the routed HTTP handler with per-route request-ID,
// tracing, and metrics middleware applied.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /v1/plans", s.route("/v1/plans", http.HandlerFunc(s.handleCreatePlan)))
	mux.Handle("GET /v1/plans/{id}", s.route("/v1/plans/{id}", http.HandlerFunc(s.handleGetPlan)))
	mux.Handle("POST /v1/plans/{id}", s.route("/v1/plans/{id}:verify", http.HandlerFunc(s.handleVerifyPlan)))
	mux.Handle("GET /v1/bodies", s.route("/v1/bodies", http.HandlerFunc(s.handleListBodies)))
	mux.Handle("GET /v1/bodies/{id}", s.route("/v1/bodies/{id}", http.HandlerFunc(s.handleGetBody)))
	return mux
}

func (s *Service) route(name string, h http.Handler) http.Handler {
	wrapped := TracingMiddleware(name, h)
	if s.metrics != nil {
		wrapped = s.metrics.Middleware(name, wrapped)
	}
	return RequestIDMiddleware(s.log, name, wrapped)
}

// planRequestJSON is the wire shape of POST /v1/plans. The craft is
// referenced by ID from the loaded ephemeris; origin defaults to the
// craft's current primary.
type planRequestJSON struct {
	CraftID       string `json:"craft_id"`
	OriginID      string `json:"origin_id,omitempty"`
	DestinationID string `json:"destination_id"`

	// Departure is the earliest allowed departure epoch in RFC 3339.
	// Empty means depart as soon as the launch window allows.
	Departure string `json:"departure,omitempty"`

	// ParkingRadiusM overrides the craft's stored parking orbit radius.
	ParkingRadiusM     float64 `json:"parking_radius_m,omitempty"`
	InclinationDeg     float64 `json:"inclination_deg,omitempty"`
	DestParkingRadiusM float64 `json:"dest_parking_radius_m,omitempty"`
}

func (s *Service) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req planRequestJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.ObservePlanFailure("bad_request")
		writeError(ctx, w, fmt.Errorf("%w: %v", ErrInvalidPlanRequest, err))
		return
	}
	if err := ValidatePlanRequest(&req); err != nil {
		s.metrics.ObservePlanFailure("bad_request")
		writeError(ctx, w, err)
		return
	}

	craft := s.store.GetSpacecraft(req.CraftID)
	if craft == nil {
		s.metrics.ObservePlanFailure("unknown_craft")
		writeError(ctx, w, fmt.Errorf("%w: spacecraft %q", ErrNotFound, req.CraftID))
		return
	}

	departure := time.Now().UTC()
	if req.Departure != "" {
		t, err := time.Parse(time.RFC3339, req.Departure)
		if err != nil {
			s.metrics.ObservePlanFailure("bad_request")
			writeError(ctx, w, fmt.Errorf("%w: departure: %v", ErrInvalidPlanRequest, err))
			return
		}
		departure = t
	}

	// Work on a copy so request overrides never leak into the store.
	craftCopy := *craft
	craft = &craftCopy
	if req.ParkingRadiusM > 0 {
		craft.ParkingRadius = req.ParkingRadiusM
	}

	incl := req.InclinationDeg * degToRad
	if craft.MotionSource == model.MotionSourceTLE && craft.ParkingRadius == 0 {
		park, err := core.DeriveParkingOrbit(craft.TLELine1, craft.TLELine2, departure)
		if err != nil {
			s.metrics.ObservePlanFailure("bad_request")
			writeError(ctx, w, fmt.Errorf("%w: parking orbit from TLE: %v", ErrInvalidPlanRequest, err))
			return
		}
		craft.ParkingRadius = park.Radius
		if req.InclinationDeg == 0 {
			incl = park.InclinationRad
		}
	}

	originID := req.OriginID
	if originID == "" {
		originID = craft.PrimaryID
	}

	ctx, span := StartChildSpan(ctx, "planner.Plan", "spacecraft", craft.ID,
		attribute.String("origin", originID),
		attribute.String("destination", req.DestinationID),
	)
	plan, err := s.planner.Plan(core.PlanRequest{
		Craft:             craft,
		OriginID:          originID,
		DestinationID:     req.DestinationID,
		Departure:         departure,
		InclinationRad:    incl,
		DestParkingRadius: req.DestParkingRadiusM,
	})
	if err != nil {
		span.RecordError(err)
	}
	span.End()
	if err != nil {
		s.metrics.ObservePlanFailure(failureReason(err))
		s.log.Warn(ctx, "plan computation failed",
			logging.String("origin", originID),
			logging.String("destination", req.DestinationID),
			logging.Err(err))
		writeError(ctx, w, err)
		return
	}

	s.mu.Lock()
	s.nextID++
	plan.ID = fmt.Sprintf("plan-%04d", s.nextID)
	s.plans[plan.ID] = plan
	stored := len(s.plans)
	s.mu.Unlock()

	s.metrics.ObservePlan(plan.OriginID, plan.DestinationID, plan.TotalDeltaV)
	s.metrics.SetEphemerisCounts(len(s.store.ListAstres()), len(s.store.ListSpacecraft()), stored)

	s.log.Info(ctx, "plan computed",
		logging.String("plan_id", plan.ID),
		logging.String("origin", plan.OriginID),
		logging.String("destination", plan.DestinationID),
		logging.Float64("total_delta_v", plan.TotalDeltaV),
		logging.Duration("transfer_time", plan.TransferTime))

	writeJSON(w, http.StatusCreated, plan)
}

func (s *Service) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan := s.lookupPlan(r.PathValue("id"))
	if plan == nil {
		writeError(r.Context(), w, fmt.Errorf("%w: plan %q", ErrNotFound, r.PathValue("id")))
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// verifyResponse wraps the propagation result with the plan identity.
type verifyResponse struct {
	PlanID string                   `json:"plan_id"`
	Result *core.VerificationResult `json:"result"`
}

// handleVerifyPlan serves POST /v1/plans/{id}:verify. The {id} path value
// carries the ":verify" suffix because the colon is not a path separator.
func (s *Service) handleVerifyPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := r.PathValue("id")
	id, ok := strings.CutSuffix(raw, ":verify")
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: unknown plan action in %q", ErrInvalidVerifyRequest, raw))
		return
	}

	plan := s.lookupPlan(id)
	if plan == nil {
		writeError(ctx, w, fmt.Errorf("%w: plan %q", ErrNotFound, id))
		return
	}

	// Patched-conic plans mix burn frames; only single-primary transfers
	// propagate as one two-body problem.
	if plan.PrimaryID != plan.OriginID {
		writeError(ctx, w, fmt.Errorf("%w: %q spans multiple frames", ErrUnverifiablePlan, plan.ID))
		return
	}
	primary := s.store.GetAstre(plan.PrimaryID)
	if primary == nil {
		writeError(ctx, w, fmt.Errorf("%w: primary %q", core.ErrUnknownBody, plan.PrimaryID))
		return
	}

	step := defaultVerifyStep
	if v := r.URL.Query().Get("step_seconds"); v != "" {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil || secs <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: step_seconds must be a positive number", ErrInvalidVerifyRequest))
			return
		}
		step = time.Duration(secs * float64(time.Second))
	}

	dest := s.store.GetAstre(plan.DestinationID)
	if dest == nil {
		writeError(ctx, w, fmt.Errorf("%w: destination %q", core.ErrUnknownBody, plan.DestinationID))
		return
	}

	ctx, span := StartChildSpan(ctx, "core.VerifyPlan", "plan", plan.ID)
	result, err := core.VerifyPlan(primary.GM, plan, dest.OrbitRadius, step)
	if err != nil {
		span.RecordError(err)
	}
	span.End()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	s.metrics.ObserveVerification()
	s.log.Info(ctx, "plan verified",
		logging.String("plan_id", plan.ID),
		logging.Float64("radial_error", result.RadialError),
		logging.Any("converged", result.Converged))

	writeJSON(w, http.StatusOK, verifyResponse{PlanID: plan.ID, Result: result})
}

// bodyJSON is the read-only wire view of an astre.
type bodyJSON struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	GM           float64 `json:"gm"`
	RadiusM      float64 `json:"radius_m"`
	ParentID     string  `json:"parent_id,omitempty"`
	OrbitRadiusM float64 `json:"orbit_radius_m,omitempty"`
}

func (s *Service) handleListBodies(w http.ResponseWriter, r *http.Request) {
	astres := s.store.ListAstres()
	sort.Slice(astres, func(i, j int) bool { return astres[i].ID < astres[j].ID })

	out := make([]bodyJSON, 0, len(astres))
	for _, a := range astres {
		out = append(out, bodyToJSON(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleGetBody(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	a := s.store.GetAstre(id)
	if a == nil {
		writeError(r.Context(), w, fmt.Errorf("%w: astre %q", ErrNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, bodyToJSON(a))
}

func (s *Service) lookupPlan(id string) *model.TransferPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plans[id]
}

func bodyToJSON(a *model.Astre) bodyJSON {
	return bodyJSON{
		ID:           a.ID,
		Name:         a.Name,
		GM:           a.GM,
		RadiusM:      a.Radius,
		ParentID:     a.ParentID,
		OrbitRadiusM: a.OrbitRadius,
	}
}

// failureReason buckets planner errors into a bounded metric label set.
func failureReason(err error) string {
	switch {
	case errors.Is(err, core.ErrUnknownBody):
		return "unknown_body"
	case errors.Is(err, core.ErrNoSharedPrimary):
		return "no_shared_primary"
	default:
		return "internal"
	}
}

const degToRad = math.Pi / 180
