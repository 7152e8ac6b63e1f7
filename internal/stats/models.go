package stats

// UserStatistics is the per-user lifetime aggregate, mutated only through
// the accumulator. Version guards the optimistic read-modify-write.
type UserStatistics struct {
	UserID         string  `json:"user_id"`
	TotalDistanceM float64 `json:"total_distance_m"`
	TotalTimeSec   float64 `json:"total_time_sec"`
	TotalTracks    int64   `json:"total_tracks"`
	TopSpeedMps    float64 `json:"top_speed_mps"`
	AvgSpeedMps    float64 `json:"avg_speed_mps"`
	Version        int64   `json:"-"`
}

// DistributionBucket is one km/h range of the lifetime speed distribution,
// reported in minutes for display.
type DistributionBucket struct {
	MinKmh  float64 `json:"min_kmh"`
	MaxKmh  float64 `json:"max_kmh,omitempty"`
	Minutes float64 `json:"minutes"`
}
