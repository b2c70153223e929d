package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/khmm12/srvchk/internal/common/logging"
	"github.com/khmm12/srvchk/internal/common/tracing"
)

type Task interface {
	Execute(ctx context.Context) error
}

// Schedule yields the delay before each task run. Non-positive delays run the task immediately.
type Schedule interface {
	Next() time.Duration
}

// Worker repeatedly waits for the next scheduled delay and executes its task.
// Runs never overlap.
type Worker struct {
	logger *slog.Logger

	schedule Schedule
	task     Task

	mu sync.Mutex
}

func NewWorker(logger *slog.Logger, schedule Schedule, task Task) *Worker {
	return &Worker{
		logger:   logger,
		schedule: schedule,
		task:     task,
	}
}

// Run loops until ctx is done. It returns nil on cancellation.
func (w *Worker) Run(ctx context.Context) error {
	locked := w.mu.TryLock()
	if !locked {
		return fmt.Errorf("worker is already running")
	}

	defer w.mu.Unlock()

	for {
		if !w.wait(ctx, w.schedule.Next()) {
			return nil
		}

		err := w.run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "Failed to execute task", logging.Error(err))
		}
	}
}

func (w *Worker) wait(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (w *Worker) run(ctx context.Context) error {
	return w.task.Execute(tracing.WithTraceID(ctx))
}
