package outbox

import (
	"context"
	"log"
	"time"
)

const batchSize = 10

// Worker drains the evaluation outbox in the background. Failures never
// reach the trip-save path: a failed task stays pending and is retried on
// the next sweep until the attempt cap marks it failed.
type Worker struct {
	outbox      *Outbox
	evaluate    Evaluator
	interval    time.Duration
	maxAttempts int

	stop chan struct{}
	done chan struct{}
}

func NewWorker(outbox *Outbox, evaluate Evaluator, interval time.Duration, maxAttempts int) *Worker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Worker{
		outbox:      outbox,
		evaluate:    evaluate,
		interval:    interval,
		maxAttempts: maxAttempts,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

func (w *Worker) Start() {
	go w.run()
}

func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			if err := w.Sweep(context.Background()); err != nil {
				log.Printf("outbox sweep error: %v", err)
			}
		}
	}
}

// Sweep processes one batch of pending tasks.
func (w *Worker) Sweep(ctx context.Context) error {
	tasks, err := w.outbox.Pending(ctx, batchSize)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		if err := w.evaluate(ctx, task.TripID, task.UserID); err != nil {
			log.Printf("evaluation failed for trip %s (attempt %d): %v", task.TripID, task.Attempts+1, err)
			if err := w.outbox.markFailed(ctx, task.TripID, err.Error(), w.maxAttempts); err != nil {
				return err
			}
			continue
		}
		if err := w.outbox.markDone(ctx, task.TripID); err != nil {
			return err
		}
	}
	return nil
}
