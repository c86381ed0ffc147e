package jobqueue

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunnerFunc executes one task and returns a human-readable outcome for
// logging.
type RunnerFunc func(ctx context.Context, task Task) (string, error)

type WorkerConfig struct {
	PollTimeout time.Duration
	TaskTimeout time.Duration
	MaxAttempts int
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.PollTimeout <= 0 {
		c.PollTimeout = 5 * time.Second
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = 30 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	return c
}

// Worker pulls tasks and executes them independently: one failing task is
// re-enqueued for retry without touching its siblings.
type Worker struct {
	queue   Queue
	log     *zap.Logger
	cfg     WorkerConfig
	runners map[string]RunnerFunc
}

func NewWorker(queue Queue, log *zap.Logger, cfg WorkerConfig) *Worker {
	return &Worker{
		queue:   queue,
		log:     log.Named("jobqueue.worker"),
		cfg:     cfg.withDefaults(),
		runners: make(map[string]RunnerFunc),
	}
}

func (w *Worker) Register(name string, runner RunnerFunc) {
	w.runners[name] = runner
}

func (w *Worker) RunForever(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		task, err := w.queue.Dequeue(ctx, w.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Warn("dequeue failed", zap.Error(err))
			continue
		}
		if task == nil {
			continue
		}

		w.RunTask(ctx, *task)
	}
}

// RunTask executes a single task to completion. Tasks are not cancelable
// mid-flight; they run under their own timeout and either finish or fail as
// a unit.
func (w *Worker) RunTask(ctx context.Context, task Task) {
	runner, ok := w.runners[task.Name]
	if !ok {
		w.log.Error("no runner for task",
			zap.String("task_id", task.ID),
			zap.String("task", task.Name),
		)
		return
	}

	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.TaskTimeout)
	defer cancel()

	outcome, err := runner(taskCtx, task)
	if err == nil {
		w.log.Info("task finished",
			zap.String("task_id", task.ID),
			zap.String("task", task.Name),
			zap.String("record_id", task.RecordID),
			zap.String("outcome", outcome),
		)
		return
	}

	if task.Attempt+1 >= w.cfg.MaxAttempts {
		w.log.Error("task dropped after max attempts",
			zap.String("task_id", task.ID),
			zap.String("task", task.Name),
			zap.String("record_id", task.RecordID),
			zap.Int("attempts", task.Attempt+1),
			zap.Error(err),
		)
		return
	}

	retry := task
	retry.Attempt++
	if enqueueErr := w.queue.Enqueue(ctx, retry); enqueueErr != nil {
		w.log.Error("task retry enqueue failed",
			zap.String("task_id", task.ID),
			zap.Error(enqueueErr),
		)
		return
	}
	w.log.Warn("task failed, retrying",
		zap.String("task_id", task.ID),
		zap.String("task", task.Name),
		zap.String("record_id", task.RecordID),
		zap.Int("attempt", retry.Attempt),
		zap.Error(err),
	)
}
