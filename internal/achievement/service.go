package achievement

import (
	"context"
	"time"

	"github.com/GabrieleComparini/Lude-sub000/internal/db"
	"github.com/GabrieleComparini/Lude-sub000/internal/rules"
	"github.com/GabrieleComparini/Lude-sub000/internal/stats"
	"github.com/GabrieleComparini/Lude-sub000/internal/stream"
	"github.com/GabrieleComparini/Lude-sub000/internal/track"

	"github.com/google/uuid"
)

var nowFn = time.Now

type Service struct {
	db       db.Querier
	registry *rules.Registry
	hub      *stream.Hub
}

func NewService(q db.Querier, registry *rules.Registry, hub *stream.Hub) *Service {
	return &Service{db: q, registry: registry, hub: hub}
}

// EvaluateTrip runs the engine against the post-update statistics and the
// triggering trip, persisting and announcing every new award. Safe to
// retry: the (user_id, achievement_code) constraint is the deduplication
// authority and conflicting awards are silently dropped.
func (s *Service) EvaluateTrip(ctx context.Context, userID, tripID string, st stats.UserStatistics, summary track.TripSummary) ([]Earned, error) {
	return s.evaluate(ctx, TriggerTripSaved, userID, tripID, st, &summary)
}

// EvaluateStats re-checks only the stat-threshold achievements, used when a
// user's statistics changed outside the trip-save path.
func (s *Service) EvaluateStats(ctx context.Context, userID string, st stats.UserStatistics) ([]Earned, error) {
	return s.evaluate(ctx, TriggerProfileStatsChanged, userID, "", st, nil)
}

func (s *Service) evaluate(ctx context.Context, trigger Trigger, userID, tripID string, st stats.UserStatistics, summary *track.TripSummary) ([]Earned, error) {
	defs, err := s.registry.Achievements(ctx)
	if err != nil {
		return nil, err
	}
	earnedCodes, err := s.earnedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates := Evaluate(trigger, userID, tripID, defs, earnedCodes, st, summary, nowFn())

	var recorded []Earned
	for _, e := range candidates {
		e.ID = uuid.NewString()
		tag, err := s.db.Exec(ctx, `
			INSERT INTO earned_achievements (id, user_id, achievement_code, earned_at, trip_id)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (user_id, achievement_code) DO NOTHING
		`, e.ID, e.UserID, e.AchievementCode, e.EarnedAt, nullable(e.TripID))
		if err != nil {
			return recorded, err
		}
		// Zero rows means a concurrent evaluation won the race.
		if tag.RowsAffected() == 0 {
			continue
		}
		recorded = append(recorded, e)
		if s.hub != nil {
			s.hub.Publish(stream.Event{Type: stream.EventAchievementEarned, UserID: e.UserID, Payload: e})
		}
	}
	return recorded, nil
}

// ListByUser returns the user's earned achievements, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Earned, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, achievement_code, earned_at, COALESCE(trip_id,'')
		FROM earned_achievements WHERE user_id=$1
		ORDER BY earned_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var earned []Earned
	for rows.Next() {
		var e Earned
		if err := rows.Scan(&e.ID, &e.UserID, &e.AchievementCode, &e.EarnedAt, &e.TripID); err != nil {
			return nil, err
		}
		earned = append(earned, e)
	}
	return earned, nil
}

func (s *Service) earnedSet(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := s.db.Query(ctx, `SELECT achievement_code FROM earned_achievements WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := map[string]bool{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes[code] = true
	}
	return codes, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
