package planapi

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrInvalidPlanRequest   = errors.New("invalid plan request")
	ErrInvalidVerifyRequest = errors.New("invalid verify request")
)

// ValidatePlanRequest performs structural validation on an incoming plan
// request before any store lookups happen.
func ValidatePlanRequest(req *planRequestJSON) error {
	if req == nil {
		return fmt.Errorf("%w: request body is required", ErrInvalidPlanRequest)
	}
	if strings.TrimSpace(req.CraftID) == "" {
		return fmt.Errorf("%w: craft_id is required", ErrInvalidPlanRequest)
	}
	if strings.TrimSpace(req.DestinationID) == "" {
		return fmt.Errorf("%w: destination_id is required", ErrInvalidPlanRequest)
	}
	if req.OriginID != "" && req.OriginID == req.DestinationID {
		return fmt.Errorf("%w: origin and destination must be distinct", ErrInvalidPlanRequest)
	}
	if req.DestParkingRadiusM < 0 {
		return fmt.Errorf("%w: dest_parking_radius_m cannot be negative", ErrInvalidPlanRequest)
	}
	if req.ParkingRadiusM < 0 {
		return fmt.Errorf("%w: parking_radius_m cannot be negative", ErrInvalidPlanRequest)
	}
	if req.InclinationDeg < 0 || req.InclinationDeg > 180 {
		return fmt.Errorf("%w: inclination_deg must be within [0, 180]", ErrInvalidPlanRequest)
	}
	if math.IsNaN(req.InclinationDeg) || math.IsNaN(req.DestParkingRadiusM) {
		return fmt.Errorf("%w: numeric fields must be finite", ErrInvalidPlanRequest)
	}
	return nil
}
