package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisQueue(t *testing.T, now time.Time) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { rdb.Close() })

	q := NewRedisQueue(rdb)
	q.clock = func() time.Time { return now }
	return q, srv
}

func TestEnqueueReplacesOnDuplicateKey(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	q, srv := newTestRedisQueue(t, now)
	ctx := context.Background()

	const key = "meet-email-42"
	if err := q.Enqueue(ctx, key, []byte(`{"v":1}`), 45*time.Minute); err != nil {
		t.Fatalf("first Enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, key, []byte(`{"v":2}`), 5*time.Minute); err != nil {
		t.Fatalf("second Enqueue: %v", err)
	}

	members, err := srv.ZMembers(dueSetKey)
	if err != nil {
		t.Fatalf("read due set: %v", err)
	}
	if len(members) != 1 || members[0] != key {
		t.Fatalf("due set members = %v, want exactly [%s]", members, key)
	}

	// The second enqueue moved the fire time: due at +10m, not +45m.
	jobs, err := q.PopDue(ctx, now.Add(10*time.Minute), 10)
	if err != nil {
		t.Fatalf("PopDue: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("due jobs = %d, want 1", len(jobs))
	}
	if jobs[0].Key != key || string(jobs[0].Payload) != `{"v":2}` {
		t.Errorf("claimed job = %q %q, want replaced payload", jobs[0].Key, jobs[0].Payload)
	}
}

func TestPopDueClaimsOnlyDueJobs(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	q, _ := newTestRedisQueue(t, now)
	ctx := context.Background()

	if err := q.Enqueue(ctx, "meet-email-1", []byte(`1`), 5*time.Minute); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, "meet-email-2", []byte(`2`), time.Hour); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// Nothing is due yet.
	jobs, err := q.PopDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("PopDue: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("early PopDue claimed %d jobs, want 0", len(jobs))
	}

	jobs, err = q.PopDue(ctx, now.Add(10*time.Minute), 10)
	if err != nil {
		t.Fatalf("PopDue: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Key != "meet-email-1" {
		t.Fatalf("due jobs = %v, want only meet-email-1", jobs)
	}

	// A claim is final: the same job is never handed out twice.
	jobs, err = q.PopDue(ctx, now.Add(10*time.Minute), 10)
	if err != nil {
		t.Fatalf("PopDue: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("second PopDue claimed %d jobs, want 0", len(jobs))
	}
}

func TestRemoveCancelsPendingJob(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	q, _ := newTestRedisQueue(t, now)
	ctx := context.Background()

	if err := q.Enqueue(ctx, "meet-email-1", []byte(`1`), 5*time.Minute); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.Remove(ctx, "meet-email-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	jobs, err := q.PopDue(ctx, now.Add(time.Hour), 10)
	if err != nil {
		t.Fatalf("PopDue: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("PopDue after Remove claimed %v, want none", jobs)
	}
}

func TestRemoveAbsentKeyIsNoop(t *testing.T) {
	q, _ := newTestRedisQueue(t, time.Now())

	if err := q.Remove(context.Background(), "meet-email-never-scheduled"); err != nil {
		t.Fatalf("Remove of absent key: %v", err)
	}
}

func TestPutBackMakesJobImmediatelyDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	q, _ := newTestRedisQueue(t, now)
	ctx := context.Background()

	job := DueJob{Key: "meet-email-1", Payload: []byte(`1`)}
	if err := q.PutBack(ctx, job); err != nil {
		t.Fatalf("PutBack: %v", err)
	}

	jobs, err := q.PopDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("PopDue: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Key != job.Key {
		t.Errorf("due jobs = %v, want the put-back job", jobs)
	}
}
