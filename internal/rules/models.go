package rules

import "time"

// RequirementKind tags the requirement variant. Evaluation switches
// exhaustively on the kind; an unknown kind never matches anything.
type RequirementKind string

const (
	RequirementStatThreshold RequirementKind = "stat_threshold"
	RequirementTripCondition RequirementKind = "trip_condition"
)

// Requirement is the single condition of an achievement definition.
// Stat names a lifetime statistic for stat_threshold; Field names a trip
// summary field for trip_condition.
type Requirement struct {
	Kind  RequirementKind `json:"kind"`
	Stat  string          `json:"stat,omitempty"`
	Field string          `json:"field,omitempty"`
	Value float64         `json:"value"`
}

// AchievementDefinition is read-only rule data maintained by an admin
// collaborator.
type AchievementDefinition struct {
	Code        string      `json:"code"`
	Category    string      `json:"category"`
	Requirement Requirement `json:"requirement"`
	Rarity      string      `json:"rarity"`
}

type ChallengeType string

const (
	ChallengeDistance      ChallengeType = "distance"
	ChallengeDuration      ChallengeType = "duration"
	ChallengeTrackCount    ChallengeType = "track_count"
	ChallengeTopSpeed      ChallengeType = "top_speed"
	ChallengeElevationGain ChallengeType = "elevation_gain"
)

func (t ChallengeType) IsValid() bool {
	switch t {
	case ChallengeDistance, ChallengeDuration, ChallengeTrackCount, ChallengeTopSpeed, ChallengeElevationGain:
		return true
	default:
		return false
	}
}

// ChallengeDefinition is a time-boxed goal users opt into.
type ChallengeDefinition struct {
	ID        string        `json:"id"`
	Code      string        `json:"code"`
	Type      ChallengeType `json:"type"`
	Goal      float64       `json:"goal"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	IsActive  bool          `json:"is_active"`
}

// ActiveAt reports whether the challenge accepts progress from a trip
// starting at the given instant. The trip's own start time is the sole
// temporal gate.
func (d ChallengeDefinition) ActiveAt(t time.Time) bool {
	return d.IsActive && !t.Before(d.StartTime) && !t.After(d.EndTime)
}
