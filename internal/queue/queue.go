// Package queue provides the delayed job queue backing reminder
// scheduling. Pending jobs wait in a Redis sorted set keyed by fire
// time; a runner claims due jobs and hands them to RabbitMQ for
// delivery to the worker.
package queue

import (
	"context"
	"time"
)

// DelayedJobQueue holds uniquely keyed jobs until their delay elapses.
// Enqueueing an existing key replaces both its payload and its fire
// time (replace-on-duplicate-key). Removing an absent key is a no-op.
type DelayedJobQueue interface {
	Enqueue(ctx context.Context, key string, payload []byte, delay time.Duration) error
	Remove(ctx context.Context, key string) error
}

// DueJob is a claimed job ready for delivery.
type DueJob struct {
	Key     string
	Payload []byte
}
