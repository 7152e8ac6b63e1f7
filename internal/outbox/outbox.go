package outbox

import (
	"context"
	"time"

	"github.com/GabrieleComparini/Lude-sub000/internal/db"
)

// Evaluator runs the gamification stages for one saved trip. It must be
// idempotent: the achievement and challenge writes dedupe at the storage
// boundary, so re-running a task is always safe.
type Evaluator func(ctx context.Context, tripID, userID string) error

// Task is one pending gamification evaluation, keyed by trip.
type Task struct {
	TripID    string    `json:"trip_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

type Outbox struct {
	db db.Querier
}

func New(q db.Querier) *Outbox {
	return &Outbox{db: q}
}

// Enqueue records that a trip still needs gamification evaluation.
// Idempotent per trip: re-enqueueing an already-queued trip is a no-op.
func (o *Outbox) Enqueue(ctx context.Context, tripID, userID string) error {
	_, err := o.db.Exec(ctx, `
		INSERT INTO evaluation_outbox (trip_id, user_id, status, attempts)
		VALUES ($1,$2,'pending',0)
		ON CONFLICT (trip_id) DO NOTHING
	`, tripID, userID)
	return err
}

// Pending returns the oldest pending tasks, bounded by limit.
func (o *Outbox) Pending(ctx context.Context, limit int) ([]Task, error) {
	rows, err := o.db.Query(ctx, `
		SELECT trip_id, user_id, status, attempts, created_at
		FROM evaluation_outbox
		WHERE status='pending'
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.TripID, &t.UserID, &t.Status, &t.Attempts, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (o *Outbox) markDone(ctx context.Context, tripID string) error {
	_, err := o.db.Exec(ctx, `
		UPDATE evaluation_outbox SET status='done', updated_at=now() WHERE trip_id=$1
	`, tripID)
	return err
}

func (o *Outbox) markFailed(ctx context.Context, tripID, lastError string, maxAttempts int) error {
	_, err := o.db.Exec(ctx, `
		UPDATE evaluation_outbox
		SET attempts=attempts+1,
		    last_error=$2,
		    status=CASE WHEN attempts+1 >= $3 THEN 'failed' ELSE 'pending' END,
		    updated_at=now()
		WHERE trip_id=$1
	`, tripID, lastError, maxAttempts)
	return err
}
