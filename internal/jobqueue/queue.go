// Package jobqueue is the queueing substrate that decouples scheduled
// detection from task execution.
package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	redis "github.com/redis/go-redis/v9"
)

const queueKey = "memberdesk:notify:tasks"

// Task is a self-contained, serializable unit of work. It carries only the
// record identifier; workers load fresh state on execution.
type Task struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RecordID string `json:"record_id"`
	Attempt  int    `json:"attempt"`
}

// NewTask builds a task with a fresh ULID.
func NewTask(name, recordID string) Task {
	return Task{
		ID:       ulid.Make().String(),
		Name:     name,
		RecordID: recordID,
	}
}

type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	// Dequeue blocks up to timeout for the next task; (nil, nil) means the
	// queue stayed empty.
	Dequeue(ctx context.Context, timeout time.Duration) (*Task, error)
}

// RedisQueue is a redis-list backed queue shared by all worker processes.
type RedisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

func (q *RedisQueue) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, queueKey, payload).Err()
}

func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	result, err := q.client.BRPop(ctx, timeout, queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}

	var task Task
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// MemoryQueue is an in-process queue for tests and single-process setups.
type MemoryQueue struct {
	tasks chan Task
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemoryQueue{tasks: make(chan Task, capacity)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, task Task) error {
	select {
	case q.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case task := <-q.tasks:
		return &task, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports queued tasks; memory queue only, used by tests.
func (q *MemoryQueue) Len() int {
	return len(q.tasks)
}
