package rules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
)

func achievementRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"code", "category", "requirement_kind", "requirement_stat", "requirement_field", "requirement_value", "rarity"}).
		AddRow("distance_100k", "distance", "stat_threshold", "total_distance", "", 100000.0, "rare").
		AddRow("speed_demon", "speed", "trip_condition", "", "max_speed", 50.0, "epic")
}

func challengeRows() *pgxmock.Rows {
	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	return pgxmock.NewRows([]string{"id", "code", "type", "goal", "start_time", "end_time", "is_active"}).
		AddRow("ch-1", "may_50k", "distance", 50000.0, start, end, true)
}

func TestRegistryLoadsAndCaches(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM achievement_definitions`).WillReturnRows(achievementRows())
	mock.ExpectQuery(`FROM challenge_definitions`).WillReturnRows(challengeRows())

	reg := NewRegistry(mock, time.Minute, nil)

	defs, err := reg.Achievements(context.Background())
	if err != nil {
		t.Fatalf("achievements: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 achievements, got %d", len(defs))
	}
	if defs[0].Requirement.Kind != RequirementStatThreshold || defs[1].Requirement.Kind != RequirementTripCondition {
		t.Fatalf("unexpected requirement kinds: %+v", defs)
	}

	// Second read inside the staleness bound hits the cache; the mock would
	// reject an unexpected query.
	challenges, err := reg.Challenges(context.Background())
	if err != nil {
		t.Fatalf("challenges: %v", err)
	}
	if len(challenges) != 1 || challenges[0].Type != ChallengeDistance {
		t.Fatalf("unexpected challenges: %+v", challenges)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRegistryInvalidateForcesReload(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM achievement_definitions`).WillReturnRows(achievementRows())
	mock.ExpectQuery(`FROM challenge_definitions`).WillReturnRows(challengeRows())
	mock.ExpectQuery(`FROM achievement_definitions`).WillReturnRows(achievementRows())
	mock.ExpectQuery(`FROM challenge_definitions`).WillReturnRows(challengeRows())

	reg := NewRegistry(mock, time.Hour, nil)
	if _, err := reg.Achievements(context.Background()); err != nil {
		t.Fatalf("first load: %v", err)
	}
	reg.Invalidate()
	if _, err := reg.Achievements(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRegistryLoadErrors(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM achievement_definitions`).WillReturnError(errRules)

	reg := NewRegistry(mock, time.Minute, nil)
	if _, err := reg.Achievements(context.Background()); err == nil {
		t.Fatalf("expected achievements load error")
	}

	mock.ExpectQuery(`FROM achievement_definitions`).WillReturnRows(achievementRows())
	mock.ExpectQuery(`FROM challenge_definitions`).WillReturnError(errRules)
	if _, err := reg.Challenges(context.Background()); err == nil {
		t.Fatalf("expected challenges load error")
	}
}

func TestRegistryRedisInvalidation(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM achievement_definitions`).WillReturnRows(achievementRows())
	mock.ExpectQuery(`FROM challenge_definitions`).WillReturnRows(challengeRows())

	reg := NewRegistry(mock, time.Hour, client)
	if _, err := reg.Achievements(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	reg.AnnounceInvalidate(context.Background())
	time.Sleep(50 * time.Millisecond)

	reg.mu.RLock()
	stale := reg.loadedAt.IsZero()
	reg.mu.RUnlock()
	if !stale {
		t.Fatalf("expected cache invalidated")
	}
}

func TestChallengeDefinitionActiveAt(t *testing.T) {
	now := time.Now()
	def := ChallengeDefinition{StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour), IsActive: true}

	if !def.ActiveAt(now) {
		t.Fatalf("expected active inside window")
	}
	if !def.ActiveAt(def.StartTime) || !def.ActiveAt(def.EndTime) {
		t.Fatalf("expected window edges inclusive")
	}
	if def.ActiveAt(now.Add(-2 * time.Hour)) || def.ActiveAt(now.Add(2*time.Hour)) {
		t.Fatalf("expected inactive outside window")
	}

	def.IsActive = false
	if def.ActiveAt(now) {
		t.Fatalf("expected inactive flag to gate")
	}
}

func TestChallengeTypeIsValid(t *testing.T) {
	for _, typ := range []ChallengeType{ChallengeDistance, ChallengeDuration, ChallengeTrackCount, ChallengeTopSpeed, ChallengeElevationGain} {
		if !typ.IsValid() {
			t.Fatalf("expected %q valid", typ)
		}
	}
	if ChallengeType("teleport").IsValid() {
		t.Fatalf("expected unknown type invalid")
	}
}

var errRules = errors.New("rules error")
