package trip

import (
	"time"

	"github.com/GabrieleComparini/Lude-sub000/internal/track"
)

// Trip is one recorded vehicle journey: the raw route plus its derived,
// immutable summary.
type Trip struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	VehicleID   string             `json:"vehicle_id,omitempty"`
	Description string             `json:"description,omitempty"`
	Tags        []string           `json:"tags,omitempty"`
	IsPublic    bool               `json:"is_public"`
	Route       []track.TrackPoint `json:"route,omitempty"`
	Summary     track.TripSummary  `json:"summary"`
	CreatedAt   time.Time          `json:"created_at"`
}

// SaveTripInput is the trip-save request shape. StartTime/EndTime bound
// the recording window and back-fill timing when the route carries no
// timestamps.
type SaveTripInput struct {
	UserID      string             `json:"user_id"`
	VehicleID   string             `json:"vehicle_id"`
	Description string             `json:"description"`
	Tags        []string           `json:"tags"`
	IsPublic    bool               `json:"is_public"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	Route       []track.TrackPoint `json:"route"`
}

// VehicleStats is the per-vehicle aggregate over a user's trips.
type VehicleStats struct {
	UserID         string  `json:"user_id"`
	VehicleID      string  `json:"vehicle_id"`
	TripCount      int64   `json:"trip_count"`
	TotalDistanceM float64 `json:"total_distance_m"`
	TotalTimeSec   float64 `json:"total_time_sec"`
	TopSpeedMps    float64 `json:"top_speed_mps"`
}
