package rules

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/GabrieleComparini/Lude-sub000/internal/db"

	"github.com/redis/go-redis/v9"
)

// InvalidateChannel is the redis channel admin writes publish on to flush
// every instance's cached definitions.
const InvalidateChannel = "rules:invalidate"

// Registry caches achievement and challenge definitions in memory. The
// cache is reloaded when older than the configured staleness bound or when
// invalidated explicitly, so engines never query definitions per trip.
type Registry struct {
	db    db.Querier
	redis *redis.Client
	ttl   time.Duration

	mu           sync.RWMutex
	achievements []AchievementDefinition
	challenges   []ChallengeDefinition
	loadedAt     time.Time
}

func NewRegistry(q db.Querier, ttl time.Duration, redisClient *redis.Client) *Registry {
	r := &Registry{db: q, redis: redisClient, ttl: ttl}
	if redisClient != nil {
		go r.subscribeInvalidations()
	}
	return r
}

// Achievements returns the cached achievement definitions, reloading first
// when stale.
func (r *Registry) Achievements(ctx context.Context) ([]AchievementDefinition, error) {
	if err := r.ensureFresh(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.achievements, nil
}

// Challenges returns the cached challenge definitions, reloading first when
// stale.
func (r *Registry) Challenges(ctx context.Context) ([]ChallengeDefinition, error) {
	if err := r.ensureFresh(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.challenges, nil
}

// Invalidate drops the cached definitions; the next read reloads them.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.loadedAt = time.Time{}
	r.mu.Unlock()
}

// AnnounceInvalidate invalidates locally and signals every other instance
// through redis when configured.
func (r *Registry) AnnounceInvalidate(ctx context.Context) {
	r.Invalidate()
	if r.redis != nil {
		if err := r.redis.Publish(ctx, InvalidateChannel, "reload").Err(); err != nil {
			log.Printf("rules invalidate publish error: %v", err)
		}
	}
}

func (r *Registry) ensureFresh(ctx context.Context) error {
	r.mu.RLock()
	fresh := !r.loadedAt.IsZero() && time.Since(r.loadedAt) < r.ttl
	r.mu.RUnlock()
	if fresh {
		return nil
	}
	return r.reload(ctx)
}

func (r *Registry) reload(ctx context.Context) error {
	achievements, err := r.loadAchievements(ctx)
	if err != nil {
		return err
	}
	challenges, err := r.loadChallenges(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.achievements = achievements
	r.challenges = challenges
	r.loadedAt = time.Now()
	r.mu.Unlock()
	return nil
}

func (r *Registry) loadAchievements(ctx context.Context) ([]AchievementDefinition, error) {
	rows, err := r.db.Query(ctx, `
		SELECT code, category, requirement_kind, COALESCE(requirement_stat,''), COALESCE(requirement_field,''), requirement_value, rarity
		FROM achievement_definitions
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []AchievementDefinition
	for rows.Next() {
		var d AchievementDefinition
		var kind string
		if err := rows.Scan(&d.Code, &d.Category, &kind, &d.Requirement.Stat, &d.Requirement.Field, &d.Requirement.Value, &d.Rarity); err != nil {
			return nil, err
		}
		d.Requirement.Kind = RequirementKind(kind)
		defs = append(defs, d)
	}
	return defs, nil
}

func (r *Registry) loadChallenges(ctx context.Context) ([]ChallengeDefinition, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, code, type, goal, start_time, end_time, is_active
		FROM challenge_definitions WHERE is_active
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []ChallengeDefinition
	for rows.Next() {
		var d ChallengeDefinition
		var typ string
		if err := rows.Scan(&d.ID, &d.Code, &typ, &d.Goal, &d.StartTime, &d.EndTime, &d.IsActive); err != nil {
			return nil, err
		}
		d.Type = ChallengeType(typ)
		defs = append(defs, d)
	}
	return defs, nil
}

func (r *Registry) subscribeInvalidations() {
	ctx := context.Background()
	pubsub := r.redis.Subscribe(ctx, InvalidateChannel)
	defer pubsub.Close()

	for range pubsub.Channel() {
		r.Invalidate()
	}
}
