package achievement

import (
	"time"

	"github.com/GabrieleComparini/Lude-sub000/internal/rules"
	"github.com/GabrieleComparini/Lude-sub000/internal/stats"
	"github.com/GabrieleComparini/Lude-sub000/internal/track"
)

// Evaluate decides which achievements the user newly earned. It is a pure
// decision function: definitions and the already-earned set are inputs, and
// the caller persists the results under the (user, code) uniqueness
// constraint. An achievement is earned at most once; earned codes are
// skipped, never re-evaluated.
func Evaluate(trigger Trigger, userID, tripID string, defs []rules.AchievementDefinition,
	earnedCodes map[string]bool, st stats.UserStatistics, summary *track.TripSummary, now time.Time) []Earned {

	var newly []Earned
	for _, def := range defs {
		if earnedCodes[def.Code] {
			continue
		}
		if !satisfied(trigger, def.Requirement, st, summary) {
			continue
		}
		newly = append(newly, Earned{
			UserID:          userID,
			AchievementCode: def.Code,
			EarnedAt:        now,
			TripID:          tripID,
		})
	}
	return newly
}

func satisfied(trigger Trigger, req rules.Requirement, st stats.UserStatistics, summary *track.TripSummary) bool {
	switch req.Kind {
	case rules.RequirementStatThreshold:
		value, ok := statValue(st, req.Stat)
		return ok && value >= req.Value
	case rules.RequirementTripCondition:
		if trigger != TriggerTripSaved || summary == nil {
			return false
		}
		value, ok := tripValue(*summary, req.Field)
		return ok && value >= req.Value
	default:
		// Unknown kinds never match; a typo'd definition must not fire.
		return false
	}
}

func statValue(st stats.UserStatistics, name string) (float64, bool) {
	switch name {
	case "total_distance":
		return st.TotalDistanceM, true
	case "total_time":
		return st.TotalTimeSec, true
	case "total_tracks":
		return float64(st.TotalTracks), true
	case "top_speed":
		return st.TopSpeedMps, true
	case "avg_speed":
		return st.AvgSpeedMps, true
	default:
		return 0, false
	}
}

func tripValue(summary track.TripSummary, field string) (float64, bool) {
	switch field {
	case "max_speed":
		return summary.MaxSpeedMps, true
	case "avg_speed":
		return summary.AvgSpeedMps, true
	case "distance":
		return summary.DistanceM, true
	case "duration":
		return summary.DurationSec, true
	default:
		return 0, false
	}
}
