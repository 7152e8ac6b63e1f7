package trip

import (
	"context"
	"encoding/json"
	"log"

	"github.com/GabrieleComparini/Lude-sub000/internal/db"
	"github.com/GabrieleComparini/Lude-sub000/internal/outbox"
	"github.com/GabrieleComparini/Lude-sub000/internal/stats"
	"github.com/GabrieleComparini/Lude-sub000/internal/stream"
	"github.com/GabrieleComparini/Lude-sub000/internal/track"

	"github.com/google/uuid"
)

type Service struct {
	db     db.Querier
	stats  *stats.Service
	outbox *outbox.Outbox
	hub    *stream.Hub
}

func NewService(q db.Querier, statsSvc *stats.Service, ob *outbox.Outbox, hub *stream.Hub) *Service {
	return &Service{db: q, stats: statsSvc, outbox: ob, hub: hub}
}

// SaveTrip runs the ingestion pipeline: compute and validate the summary,
// persist the trip, fold it into the user's statistics, and queue the
// gamification stages. Validation failures save nothing; once the trip row
// is in, later-stage failures never roll it back.
func (s *Service) SaveTrip(ctx context.Context, input SaveTripInput) (Trip, stats.UserStatistics, error) {
	summary, err := track.ComputeSummary(input.Route, input.StartTime, input.EndTime)
	if err != nil {
		return Trip{}, stats.UserStatistics{}, err
	}

	trip := Trip{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		VehicleID:   input.VehicleID,
		Description: input.Description,
		Tags:        input.Tags,
		IsPublic:    input.IsPublic,
		Route:       input.Route,
		Summary:     summary,
	}

	routeJSON, err := json.Marshal(trip.Route)
	if err != nil {
		return Trip{}, stats.UserStatistics{}, err
	}
	histogramJSON, err := json.Marshal(summary.Histogram)
	if err != nil {
		return Trip{}, stats.UserStatistics{}, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO trips (id, user_id, vehicle_id, description, tags, is_public,
		                   start_time, end_time, distance_m, duration_sec,
		                   avg_speed_mps, max_speed_mps, route, speed_histogram)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at
	`, trip.ID, trip.UserID, trip.VehicleID, trip.Description, trip.Tags, trip.IsPublic,
		summary.StartTime, summary.EndTime, summary.DistanceM, summary.DurationSec,
		summary.AvgSpeedMps, summary.MaxSpeedMps, routeJSON, histogramJSON)
	if err := row.Scan(&trip.CreatedAt); err != nil {
		return Trip{}, stats.UserStatistics{}, err
	}

	updated, err := s.stats.ApplyTrip(ctx, trip.UserID, summary)
	if err != nil {
		// The trip is durable at this point; the statistics error is
		// surfaced as retryable without undoing the save.
		return trip, stats.UserStatistics{}, err
	}

	if err := s.outbox.Enqueue(ctx, trip.ID, trip.UserID); err != nil {
		log.Printf("outbox enqueue failed for trip %s: %v", trip.ID, err)
	}

	if s.hub != nil {
		s.hub.Publish(stream.Event{Type: stream.EventTripSaved, UserID: trip.UserID, Payload: trip.Summary})
	}

	return trip, updated, nil
}

func (s *Service) GetTrip(ctx context.Context, id string) (Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, COALESCE(vehicle_id,''), description, tags, is_public, route, speed_histogram,
		       start_time, end_time, distance_m, duration_sec, avg_speed_mps, max_speed_mps, created_at
		FROM trips WHERE id=$1
	`, id)
	return scanTrip(row)
}

// ListByUser returns the user's trips, most recent first, without raw
// routes.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, COALESCE(vehicle_id,''), description, is_public,
		       start_time, end_time, distance_m, duration_sec, avg_speed_mps, max_speed_mps, created_at
		FROM trips WHERE user_id=$1
		ORDER BY start_time DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		var t Trip
		if err := rows.Scan(&t.ID, &t.UserID, &t.VehicleID, &t.Description, &t.IsPublic,
			&t.Summary.StartTime, &t.Summary.EndTime, &t.Summary.DistanceM, &t.Summary.DurationSec,
			&t.Summary.AvgSpeedMps, &t.Summary.MaxSpeedMps, &t.CreatedAt); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, nil
}

// StatsByVehicle aggregates a user's trips for one vehicle. The user id is
// compared as a plain typed column.
func (s *Service) StatsByVehicle(ctx context.Context, userID, vehicleID string) (VehicleStats, error) {
	row := s.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(distance_m),0), COALESCE(SUM(duration_sec),0), COALESCE(MAX(max_speed_mps),0)
		FROM trips WHERE user_id=$1 AND vehicle_id=$2
	`, userID, vehicleID)

	vs := VehicleStats{UserID: userID, VehicleID: vehicleID}
	if err := row.Scan(&vs.TripCount, &vs.TotalDistanceM, &vs.TotalTimeSec, &vs.TopSpeedMps); err != nil {
		return VehicleStats{}, err
	}
	return vs, nil
}

func scanTrip(row interface{ Scan(dest ...any) error }) (Trip, error) {
	var t Trip
	var routeJSON, histogramJSON []byte
	if err := row.Scan(&t.ID, &t.UserID, &t.VehicleID, &t.Description, &t.Tags, &t.IsPublic,
		&routeJSON, &histogramJSON,
		&t.Summary.StartTime, &t.Summary.EndTime, &t.Summary.DistanceM, &t.Summary.DurationSec,
		&t.Summary.AvgSpeedMps, &t.Summary.MaxSpeedMps, &t.CreatedAt); err != nil {
		return Trip{}, err
	}
	if err := json.Unmarshal(routeJSON, &t.Route); err != nil {
		return Trip{}, err
	}
	if err := json.Unmarshal(histogramJSON, &t.Summary.Histogram); err != nil {
		return Trip{}, err
	}
	return t, nil
}
