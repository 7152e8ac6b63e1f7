package challenge

import (
	"testing"
	"time"

	"github.com/GabrieleComparini/Lude-sub000/internal/rules"
	"github.com/GabrieleComparini/Lude-sub000/internal/track"
)

var advanceNow = time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC)

func distanceChallenge(id string, goal float64) rules.ChallengeDefinition {
	return rules.ChallengeDefinition{
		ID:        id,
		Code:      id + "_code",
		Type:      rules.ChallengeDistance,
		Goal:      goal,
		StartTime: advanceNow.Add(-24 * time.Hour),
		EndTime:   advanceNow.Add(24 * time.Hour),
		IsActive:  true,
	}
}

func tripAt(start time.Time, distM, durSec float64) track.TripSummary {
	return track.TripSummary{StartTime: start, DistanceM: distM, DurationSec: durSec}
}

func TestAdvanceClampsAndCompletes(t *testing.T) {
	// Participant at 48,000 of 50,000 m submits a 3,000 m trip: progress
	// clamps to the goal and completion is stamped exactly once.
	defs := map[string]rules.ChallengeDefinition{"ch-1": distanceChallenge("ch-1", 50000)}
	parts := []Participation{{ChallengeID: "ch-1", UserID: "user-1", Progress: 48000}}

	updates := Advance(advanceNow, defs, parts, tripAt(advanceNow, 3000, 600))
	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	u := updates[0]
	if u.Progress != 50000 {
		t.Fatalf("expected clamp to goal, got %v", u.Progress)
	}
	if !u.Completed || u.CompletedAt == nil || !u.CompletedAt.Equal(advanceNow) {
		t.Fatalf("expected completion stamp: %+v", u)
	}
	if u.ChallengeCode != "ch-1_code" {
		t.Fatalf("unexpected code: %s", u.ChallengeCode)
	}
}

func TestAdvancePartialProgress(t *testing.T) {
	defs := map[string]rules.ChallengeDefinition{"ch-1": distanceChallenge("ch-1", 50000)}
	parts := []Participation{{ChallengeID: "ch-1", UserID: "user-1", Progress: 1000}}

	updates := Advance(advanceNow, defs, parts, tripAt(advanceNow, 2500, 600))
	if len(updates) != 1 || updates[0].Progress != 3500 || updates[0].Completed {
		t.Fatalf("unexpected updates: %+v", updates)
	}
}

func TestAdvanceCompletedParticipationFrozen(t *testing.T) {
	done := advanceNow.Add(-time.Hour)
	defs := map[string]rules.ChallengeDefinition{"ch-1": distanceChallenge("ch-1", 50000)}
	parts := []Participation{{ChallengeID: "ch-1", UserID: "user-1", Progress: 50000, CompletedAt: &done}}

	if updates := Advance(advanceNow, defs, parts, tripAt(advanceNow, 9999, 600)); len(updates) != 0 {
		t.Fatalf("completed participation must not advance: %+v", updates)
	}
}

func TestAdvanceTripOutsideWindow(t *testing.T) {
	defs := map[string]rules.ChallengeDefinition{"ch-1": distanceChallenge("ch-1", 50000)}
	parts := []Participation{{ChallengeID: "ch-1", UserID: "user-1", Progress: 0}}

	before := tripAt(advanceNow.Add(-48*time.Hour), 1000, 600)
	after := tripAt(advanceNow.Add(48*time.Hour), 1000, 600)
	if got := Advance(advanceNow, defs, parts, before); len(got) != 0 {
		t.Fatalf("trip before window must not count")
	}
	if got := Advance(advanceNow, defs, parts, after); len(got) != 0 {
		t.Fatalf("trip after window must not count")
	}
}

func TestAdvanceInactiveDefinition(t *testing.T) {
	def := distanceChallenge("ch-1", 50000)
	def.IsActive = false
	defs := map[string]rules.ChallengeDefinition{"ch-1": def}
	parts := []Participation{{ChallengeID: "ch-1", UserID: "user-1"}}

	if got := Advance(advanceNow, defs, parts, tripAt(advanceNow, 1000, 600)); len(got) != 0 {
		t.Fatalf("inactive challenge must not advance")
	}
}

func TestAdvanceByType(t *testing.T) {
	duration := distanceChallenge("ch-dur", 3600)
	duration.Type = rules.ChallengeDuration
	count := distanceChallenge("ch-count", 10)
	count.Type = rules.ChallengeTrackCount
	elevation := distanceChallenge("ch-elev", 1000)
	elevation.Type = rules.ChallengeElevationGain

	defs := map[string]rules.ChallengeDefinition{
		"ch-dur":   duration,
		"ch-count": count,
		"ch-elev":  elevation,
	}
	parts := []Participation{
		{ChallengeID: "ch-dur", UserID: "user-1", Progress: 100},
		{ChallengeID: "ch-count", UserID: "user-1", Progress: 4},
		{ChallengeID: "ch-elev", UserID: "user-1", Progress: 0},
	}

	updates := Advance(advanceNow, defs, parts, tripAt(advanceNow, 2000, 600))
	if len(updates) != 2 {
		t.Fatalf("expected duration and count updates only, got %d", len(updates))
	}
	byID := map[string]Update{}
	for _, u := range updates {
		byID[u.ChallengeID] = u
	}
	if byID["ch-dur"].Progress != 700 {
		t.Fatalf("unexpected duration progress: %v", byID["ch-dur"].Progress)
	}
	if byID["ch-count"].Progress != 5 {
		t.Fatalf("unexpected count progress: %v", byID["ch-count"].Progress)
	}
}

func TestAdvanceNoOpSuppressed(t *testing.T) {
	defs := map[string]rules.ChallengeDefinition{"ch-1": distanceChallenge("ch-1", 50000)}
	parts := []Participation{{ChallengeID: "ch-1", UserID: "user-1", Progress: 1000}}

	if got := Advance(advanceNow, defs, parts, tripAt(advanceNow, 0, 600)); len(got) != 0 {
		t.Fatalf("zero increment must not emit update: %+v", got)
	}
}

func TestAdvanceUnknownDefinitionSkipped(t *testing.T) {
	parts := []Participation{{ChallengeID: "ghost", UserID: "user-1"}}
	if got := Advance(advanceNow, map[string]rules.ChallengeDefinition{}, parts, tripAt(advanceNow, 1000, 600)); len(got) != 0 {
		t.Fatalf("participation without definition must be skipped")
	}
}
