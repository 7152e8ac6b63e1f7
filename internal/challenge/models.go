package challenge

import "time"

// Participation is one user's progress record against one challenge.
// Progress grows monotonically until it reaches the goal, after which the
// record is frozen with CompletedAt set.
type Participation struct {
	ChallengeID string     `json:"challenge_id"`
	UserID      string     `json:"user_id"`
	Progress    float64    `json:"progress"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	JoinedAt    time.Time  `json:"joined_at"`
}

// Update is one effective state transition produced by Advance. No-op
// evaluations produce no Update.
type Update struct {
	ChallengeID   string     `json:"challenge_id"`
	ChallengeCode string     `json:"challenge_code"`
	UserID        string     `json:"user_id"`
	Progress      float64    `json:"progress"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Completed     bool       `json:"completed"`
}
