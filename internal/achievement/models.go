package achievement

import "time"

// Trigger selects which requirement kinds are evaluated. Trip conditions
// only apply when a trip was just saved; stat thresholds apply on either
// trigger.
type Trigger string

const (
	TriggerTripSaved           Trigger = "trip_saved"
	TriggerProfileStatsChanged Trigger = "profile_stats_changed"
)

// Earned is one append-only (user, achievement) award. TripID is set when
// a specific trip triggered the award.
type Earned struct {
	ID              string    `json:"id,omitempty"`
	UserID          string    `json:"user_id"`
	AchievementCode string    `json:"achievement_code"`
	EarnedAt        time.Time `json:"earned_at"`
	TripID          string    `json:"trip_id,omitempty"`
}
