package track

import "time"

// TrackPoint is one raw telemetry sample of a recorded trip. Speed and
// altitude may be absent; a zero Timestamp means the device did not stamp
// the sample.
type TrackPoint struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	SpeedMps  *float64  `json:"speed_mps,omitempty"`
	AltitudeM *float64  `json:"altitude_m,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// SpeedBucket is one fixed km/h range of the speed-time histogram.
// MaxKmh == 0 marks the unbounded top bucket.
type SpeedBucket struct {
	MinKmh  float64 `json:"min_kmh"`
	MaxKmh  float64 `json:"max_kmh,omitempty"`
	Seconds float64 `json:"seconds"`
}

// SpeedHistogram is the time-in-range distribution of a trip's speed
// samples, bucketed by the fixed km/h ranges in bucketBoundsKmh.
type SpeedHistogram []SpeedBucket

// TripSummary is the derived, immutable statistics block for one trip.
type TripSummary struct {
	DistanceM   float64        `json:"distance_m"`
	DurationSec float64        `json:"duration_sec"`
	AvgSpeedMps float64        `json:"avg_speed_mps"`
	MaxSpeedMps float64        `json:"max_speed_mps"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	Histogram   SpeedHistogram `json:"speed_histogram"`
}

// TotalSeconds returns the time attributed across all buckets.
func (h SpeedHistogram) TotalSeconds() float64 {
	var total float64
	for _, b := range h {
		total += b.Seconds
	}
	return total
}
