package queue

import (
	"context"
	"errors"
)

// ErrQueueFull is returned when an item is enqueued on a queue at capacity.
var ErrQueueFull = errors.New("queue is full")

// Queue represents a bounded FIFO queue.
type Queue[T any] interface {
	Enqueue(item T) error
	Dequeue(ctx context.Context) (T, error)
	Size() int
	ReadAll() []T
	Clear()
}
