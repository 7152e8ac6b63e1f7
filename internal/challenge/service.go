package challenge

import (
	"context"
	"time"

	"github.com/GabrieleComparini/Lude-sub000/internal/db"
	"github.com/GabrieleComparini/Lude-sub000/internal/rules"
	"github.com/GabrieleComparini/Lude-sub000/internal/stream"
	"github.com/GabrieleComparini/Lude-sub000/internal/track"
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

// Join enrolls the user in a challenge. Joining twice is a no-op that
// returns the existing participation.
func (s *Service) Join(ctx context.Context, challengeID, userID string) (Participation, error) {
	p := Participation{ChallengeID: challengeID, UserID: userID}
	row := s.db.QueryRow(ctx, `
		INSERT INTO challenge_participations (challenge_id, user_id, progress)
		VALUES ($1,$2,0)
		ON CONFLICT (challenge_id, user_id) DO UPDATE SET user_id=EXCLUDED.user_id
		RETURNING progress, completed_at, joined_at
	`, challengeID, userID)
	if err := row.Scan(&p.Progress, &p.CompletedAt, &p.JoinedAt); err != nil {
		return Participation{}, err
	}
	return p, nil
}

// AdvanceForTrip folds one trip into every open participation of the user.
// The guarded UPDATE keeps completion terminal under concurrent retries:
// a participation completed by a racing evaluation is left untouched.
func (s *Service) AdvanceForTrip(ctx context.Context, userID string, summary track.TripSummary) ([]Update, error) {
	defs, err := s.registry.Challenges(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]rules.ChallengeDefinition, len(defs))
	for _, d := range defs {
		byID[d.ID] = d
	}

	participations, err := s.openParticipations(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := Advance(nowFn(), byID, participations, summary)

	var applied []Update
	for _, u := range updates {
		tag, err := s.db.Exec(ctx, `
			UPDATE challenge_participations
			SET progress=$3, completed_at=$4
			WHERE challenge_id=$1 AND user_id=$2 AND completed_at IS NULL
		`, u.ChallengeID, u.UserID, u.Progress, u.CompletedAt)
		if err != nil {
			return applied, err
		}
		if tag.RowsAffected() == 0 {
			continue
		}
		applied = append(applied, u)
		if u.Completed && s.hub != nil {
			s.hub.Publish(stream.Event{Type: stream.EventChallengeCompleted, UserID: u.UserID, Payload: u})
		}
	}
	return applied, nil
}

// ListByUser returns every participation of the user, most recent first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Participation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT challenge_id, user_id, progress, completed_at, joined_at
		FROM challenge_participations WHERE user_id=$1
		ORDER BY joined_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participations []Participation
	for rows.Next() {
		var p Participation
		if err := rows.Scan(&p.ChallengeID, &p.UserID, &p.Progress, &p.CompletedAt, &p.JoinedAt); err != nil {
			return nil, err
		}
		participations = append(participations, p)
	}
	return participations, nil
}

func (s *Service) openParticipations(ctx context.Context, userID string) ([]Participation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT challenge_id, user_id, progress, completed_at, joined_at
		FROM challenge_participations
		WHERE user_id=$1 AND completed_at IS NULL
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participations []Participation
	for rows.Next() {
		var p Participation
		if err := rows.Scan(&p.ChallengeID, &p.UserID, &p.Progress, &p.CompletedAt, &p.JoinedAt); err != nil {
			return nil, err
		}
		participations = append(participations, p)
	}
	return participations, nil
}
