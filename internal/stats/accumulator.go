package stats

import "github.com/GabrieleComparini/Lude-sub000/internal/track"

// Apply folds one trip summary into the running lifetime statistics.
// The lifetime average is recomputed from the cumulative totals; averaging
// per-trip averages would double-weight short trips.
func Apply(cur UserStatistics, summary track.TripSummary) UserStatistics {
	next := cur
	next.TotalDistanceM += summary.DistanceM
	next.TotalTimeSec += summary.DurationSec
	next.TotalTracks++
	if summary.MaxSpeedMps > next.TopSpeedMps {
		next.TopSpeedMps = summary.MaxSpeedMps
	}
	if next.TotalTimeSec > 0 {
		next.AvgSpeedMps = next.TotalDistanceM / next.TotalTimeSec
	}
	return next
}
