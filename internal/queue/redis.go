package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dueSetKey      = "reminders:due"
	payloadHashKey = "reminders:payload"
)

// popDueScript atomically claims due members: removes them from the
// sorted set, collects their payloads and deletes the hash fields, so
// a concurrent Remove cannot race a half-claimed job.
var popDueScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
local out = {}
for _, key in ipairs(due) do
    redis.call('ZREM', KEYS[1], key)
    local payload = redis.call('HGET', KEYS[2], key)
    redis.call('HDEL', KEYS[2], key)
    out[#out+1] = key
    out[#out+1] = payload or ''
end
return out
`)

// RedisQueue implements DelayedJobQueue on a Redis sorted set. The
// member is the job key, the score is the fire time in unix
// milliseconds, and payloads live in a companion hash.
type RedisQueue struct {
	rdb   *redis.Client
	clock func() time.Time
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb, clock: time.Now}
}

// Enqueue schedules a payload to become due after delay. ZADD replaces
// the score of an existing member, so re-enqueueing a key moves its
// fire time and payload instead of duplicating the job.
func (q *RedisQueue) Enqueue(ctx context.Context, key string, payload []byte, delay time.Duration) error {
	fireAt := q.clock().Add(delay)

	pipe := q.rdb.TxPipeline()
	pipe.ZAdd(ctx, dueSetKey, redis.Z{
		Score:  float64(fireAt.UnixMilli()),
		Member: key,
	})
	pipe.HSet(ctx, payloadHashKey, key, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("enqueue %s: %w", key, err)
	}
	return nil
}

// Remove cancels a pending job. Removing a key that is absent, fired
// or already claimed is a silent no-op.
func (q *RedisQueue) Remove(ctx context.Context, key string) error {
	pipe := q.rdb.TxPipeline()
	pipe.ZRem(ctx, dueSetKey, key)
	pipe.HDel(ctx, payloadHashKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// PopDue claims up to limit jobs whose fire time is at or before now.
// Claimed jobs are gone from the queue even if later delivery fails.
func (q *RedisQueue) PopDue(ctx context.Context, now time.Time, limit int) ([]DueJob, error) {
	res, err := popDueScript.Run(ctx, q.rdb,
		[]string{dueSetKey, payloadHashKey},
		now.UnixMilli(), limit,
	).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("pop due: %w", err)
	}

	jobs := make([]DueJob, 0, len(res)/2)
	for i := 0; i+1 < len(res); i += 2 {
		jobs = append(jobs, DueJob{Key: res[i], Payload: []byte(res[i+1])})
	}
	return jobs, nil
}

// PutBack restores a claimed job as immediately due, used when the
// handoff to the delivery queue fails.
func (q *RedisQueue) PutBack(ctx context.Context, job DueJob) error {
	return q.Enqueue(ctx, job.Key, job.Payload, 0)
}
