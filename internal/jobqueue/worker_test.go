package jobqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMemoryQueueRoundTrip(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx := context.Background()

	task := NewTask("test.task", "123")
	require.NoError(t, q.Enqueue(ctx, task))
	require.Equal(t, 1, q.Len())

	got, err := q.Dequeue(ctx, time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, "test.task", got.Name)
	assert.Equal(t, "123", got.RecordID)
	assert.Zero(t, got.Attempt)
}

func TestMemoryQueueDequeueTimesOutEmpty(t *testing.T) {
	q := NewMemoryQueue(4)

	got, err := q.Dequeue(context.Background(), time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRunTaskSuccess(t *testing.T) {
	q := NewMemoryQueue(4)
	w := NewWorker(q, zaptest.NewLogger(t), WorkerConfig{})

	ran := 0
	w.Register("test.task", func(ctx context.Context, task Task) (string, error) {
		ran++
		return "done", nil
	})

	w.RunTask(context.Background(), NewTask("test.task", "1"))
	assert.Equal(t, 1, ran)
	assert.Zero(t, q.Len())
}

func TestRunTaskRetriesThenDrops(t *testing.T) {
	q := NewMemoryQueue(4)
	w := NewWorker(q, zaptest.NewLogger(t), WorkerConfig{MaxAttempts: 3})

	attempts := 0
	w.Register("test.task", func(ctx context.Context, task Task) (string, error) {
		attempts++
		return "", errors.New("boom")
	})

	ctx := context.Background()
	w.RunTask(ctx, NewTask("test.task", "1"))

	// The failed task was re-enqueued with an incremented attempt count.
	retry, err := q.Dequeue(ctx, time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, retry)
	assert.Equal(t, 1, retry.Attempt)

	w.RunTask(ctx, *retry)
	retry, err = q.Dequeue(ctx, time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, retry)
	assert.Equal(t, 2, retry.Attempt)

	// Third failure exhausts the budget; nothing is re-enqueued.
	w.RunTask(ctx, *retry)
	assert.Zero(t, q.Len())
	assert.Equal(t, 3, attempts)
}

func TestRunTaskFailureDoesNotBlockSiblings(t *testing.T) {
	q := NewMemoryQueue(4)
	w := NewWorker(q, zaptest.NewLogger(t), WorkerConfig{MaxAttempts: 1})

	var done []string
	w.Register("ok.task", func(ctx context.Context, task Task) (string, error) {
		done = append(done, task.RecordID)
		return "ok", nil
	})
	w.Register("bad.task", func(ctx context.Context, task Task) (string, error) {
		return "", errors.New("boom")
	})

	ctx := context.Background()
	w.RunTask(ctx, NewTask("bad.task", "1"))
	w.RunTask(ctx, NewTask("ok.task", "2"))

	assert.Equal(t, []string{"2"}, done)
	assert.Zero(t, q.Len())
}
