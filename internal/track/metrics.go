package track

import (
	"errors"
	"fmt"
	"time"

	"github.com/GabrieleComparini/Lude-sub000/internal/shared/geo"
)

var (
	// ErrInsufficientData is returned when a route has fewer than two points.
	ErrInsufficientData = errors.New("route needs at least two points")
	// ErrInvalidDuration is returned when timestamps are missing or yield a
	// non-positive duration that cannot be reconstructed.
	ErrInvalidDuration = errors.New("route duration invalid")
)

// Lower bounds of the histogram buckets in km/h. The last bucket is
// unbounded above.
var bucketBoundsKmh = []float64{0, 50, 100, 150, 200, 250}

const mpsToKmh = 3.6

// NewSpeedHistogram returns the fixed bucket schema with zeroed counters.
func NewSpeedHistogram() SpeedHistogram {
	h := make(SpeedHistogram, len(bucketBoundsKmh))
	for i, min := range bucketBoundsKmh {
		h[i].MinKmh = min
		if i+1 < len(bucketBoundsKmh) {
			h[i].MaxKmh = bucketBoundsKmh[i+1]
		}
	}
	return h
}

func bucketIndex(kmh float64) int {
	for i := len(bucketBoundsKmh) - 1; i > 0; i-- {
		if kmh >= bucketBoundsKmh[i] {
			return i
		}
	}
	return 0
}

// ComputeSummary derives a TripSummary from an ordered point sequence.
// windowStart/windowEnd come from the trip-save request and are only used
// to reconstruct timing when every point lacks a timestamp, in which case
// timestamps are distributed evenly across the window. A mix of stamped
// and unstamped points is rejected rather than interpolated.
func ComputeSummary(points []TrackPoint, windowStart, windowEnd time.Time) (TripSummary, error) {
	if len(points) < 2 {
		return TripSummary{}, ErrInsufficientData
	}

	timestamps, err := resolveTimestamps(points, windowStart, windowEnd)
	if err != nil {
		return TripSummary{}, err
	}

	durationSec := timestamps[len(timestamps)-1].Sub(timestamps[0]).Seconds()
	if durationSec <= 0 {
		return TripSummary{}, ErrInvalidDuration
	}

	summary := TripSummary{
		DurationSec: durationSec,
		StartTime:   timestamps[0],
		EndTime:     timestamps[len(timestamps)-1],
		Histogram:   NewSpeedHistogram(),
	}

	attributed := 0.0
	for i := 1; i < len(points); i++ {
		legM, err := geo.DistanceMeters(points[i-1].Lat, points[i-1].Lng, points[i].Lat, points[i].Lng)
		if err != nil {
			return TripSummary{}, fmt.Errorf("point %d: %w", i, err)
		}
		summary.DistanceM += legM

		// A non-monotonic timestamp clamps the interval to zero instead of
		// subtracting time from a bucket, and the attributed total never
		// exceeds the trip duration.
		dt := timestamps[i].Sub(timestamps[i-1]).Seconds()
		if dt < 0 {
			dt = 0
		}
		if dt > durationSec-attributed {
			dt = durationSec - attributed
		}
		if speed, ok := validSpeed(points[i]); ok && dt > 0 {
			summary.Histogram[bucketIndex(speed*mpsToKmh)].Seconds += dt
			attributed += dt
		}
	}

	var speedSum float64
	var speedCount int
	for _, p := range points {
		speed, ok := validSpeed(p)
		if !ok {
			continue
		}
		speedSum += speed
		speedCount++
		if speed > summary.MaxSpeedMps {
			summary.MaxSpeedMps = speed
		}
	}
	if speedCount > 0 {
		summary.AvgSpeedMps = speedSum / float64(speedCount)
	}

	return summary, nil
}

// validSpeed reports the sample's speed when it is present and non-negative.
// Missing or negative speeds are excluded from max/avg and bucket attribution
// but the point still contributes to distance.
func validSpeed(p TrackPoint) (float64, bool) {
	if p.SpeedMps == nil || *p.SpeedMps < 0 {
		return 0, false
	}
	return *p.SpeedMps, true
}

func resolveTimestamps(points []TrackPoint, windowStart, windowEnd time.Time) ([]time.Time, error) {
	missing := 0
	for _, p := range points {
		if p.Timestamp.IsZero() {
			missing++
		}
	}

	switch {
	case missing == 0:
		stamps := make([]time.Time, len(points))
		for i, p := range points {
			stamps[i] = p.Timestamp
		}
		return stamps, nil
	case missing == len(points):
		return spreadTimestamps(len(points), windowStart, windowEnd)
	default:
		// Fabricating time for only some points would contradict the
		// stamped ones.
		return nil, ErrInvalidDuration
	}
}

func spreadTimestamps(n int, start, end time.Time) ([]time.Time, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return nil, ErrInvalidDuration
	}
	step := end.Sub(start) / time.Duration(n-1)
	stamps := make([]time.Time, n)
	for i := range stamps {
		stamps[i] = start.Add(time.Duration(i) * step)
	}
	stamps[n-1] = end
	return stamps, nil
}
