package challenge

import (
	"time"

	"github.com/GabrieleComparini/Lude-sub000/internal/rules"
	"github.com/GabrieleComparini/Lude-sub000/internal/track"
)

// Advance computes the progress every open participation gains from one
// trip. Pure: the caller persists the returned updates. Only challenges
// whose window contains the trip's start time accumulate; types evaluated
// elsewhere (top_speed, elevation_gain) are skipped, not errored.
func Advance(now time.Time, defs map[string]rules.ChallengeDefinition, participations []Participation, summary track.TripSummary) []Update {
	var updates []Update
	for _, p := range participations {
		if p.CompletedAt != nil {
			continue
		}
		def, ok := defs[p.ChallengeID]
		if !ok || !def.ActiveAt(summary.StartTime) {
			continue
		}

		increment, ok := incrementFor(def.Type, summary)
		if !ok {
			continue
		}

		newProgress := p.Progress + increment
		if newProgress > def.Goal {
			newProgress = def.Goal
		}
		completed := newProgress >= def.Goal

		if newProgress == p.Progress && !completed {
			continue
		}

		update := Update{
			ChallengeID:   p.ChallengeID,
			ChallengeCode: def.Code,
			UserID:        p.UserID,
			Progress:      newProgress,
			Completed:     completed,
		}
		if completed {
			completedAt := now
			update.CompletedAt = &completedAt
		}
		updates = append(updates, update)
	}
	return updates
}

func incrementFor(typ rules.ChallengeType, summary track.TripSummary) (float64, bool) {
	switch typ {
	case rules.ChallengeDistance:
		return summary.DistanceM, true
	case rules.ChallengeDuration:
		return summary.DurationSec, true
	case rules.ChallengeTrackCount:
		return 1, true
	default:
		return 0, false
	}
}
