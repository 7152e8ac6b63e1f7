package stats

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/GabrieleComparini/Lude-sub000/internal/db"
	"github.com/GabrieleComparini/Lude-sub000/internal/track"
)

// ErrStatsConflict is returned when the versioned update lost the race on
// every attempt. The trip itself is already saved; the caller may retry.
var ErrStatsConflict = errors.New("statistics update lost concurrent race")

type Service struct {
	db         db.Querier
	maxRetries int
}

func NewService(db db.Querier, maxRetries int) *Service {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Service{db: db, maxRetries: maxRetries}
}

// ApplyTrip folds the summary into the user's statistics under a versioned
// compare-and-swap, retried up to the configured bound. Submissions by
// different users touch different rows and never contend.
func (s *Service) ApplyTrip(ctx context.Context, userID string, summary track.TripSummary) (UserStatistics, error) {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		cur, err := s.loadOrSeed(ctx, userID)
		if err != nil {
			return UserStatistics{}, err
		}

		next := Apply(cur, summary)
		tag, err := s.db.Exec(ctx, `
			UPDATE user_statistics
			SET total_distance_m=$2, total_time_sec=$3, total_tracks=$4,
			    top_speed_mps=$5, avg_speed_mps=$6, version=version+1
			WHERE user_id=$1 AND version=$7
		`, userID, next.TotalDistanceM, next.TotalTimeSec, next.TotalTracks,
			next.TopSpeedMps, next.AvgSpeedMps, cur.Version)
		if err != nil {
			return UserStatistics{}, err
		}
		if tag.RowsAffected() == 1 {
			next.Version = cur.Version + 1
			return next, nil
		}
	}
	return UserStatistics{}, ErrStatsConflict
}

// Get returns the user's current statistics, zeroed when none exist yet.
func (s *Service) Get(ctx context.Context, userID string) (UserStatistics, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, total_distance_m, total_time_sec, total_tracks, top_speed_mps, avg_speed_mps, version
		FROM user_statistics WHERE user_id=$1
	`, userID)
	var st UserStatistics
	if err := row.Scan(&st.UserID, &st.TotalDistanceM, &st.TotalTimeSec, &st.TotalTracks, &st.TopSpeedMps, &st.AvgSpeedMps, &st.Version); err != nil {
		return UserStatistics{UserID: userID}, err
	}
	return st, nil
}

func (s *Service) loadOrSeed(ctx context.Context, userID string) (UserStatistics, error) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_statistics (user_id, total_distance_m, total_time_sec, total_tracks, top_speed_mps, avg_speed_mps, version)
		VALUES ($1, 0, 0, 0, 0, 0, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return UserStatistics{}, err
	}
	return s.Get(ctx, userID)
}

// SpeedDistribution unions every per-trip histogram of the user into the
// fixed bucket schema, expressed in minutes per bucket.
func (s *Service) SpeedDistribution(ctx context.Context, userID string) ([]DistributionBucket, error) {
	rows, err := s.db.Query(ctx, `SELECT speed_histogram FROM trips WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	total := track.NewSpeedHistogram()
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var h track.SpeedHistogram
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, err
		}
		for i := range h {
			if i < len(total) {
				total[i].Seconds += h[i].Seconds
			}
		}
	}

	out := make([]DistributionBucket, len(total))
	for i, b := range total {
		out[i] = DistributionBucket{MinKmh: b.MinKmh, MaxKmh: b.MaxKmh, Minutes: b.Seconds / 60}
	}
	return out, nil
}
