package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"meetcrm/internal/model"
)

type fakeEventStore struct {
	meet       *model.Meet
	meetErr    error
	lecture    *model.Lecture
	lectureErr error
}

func (f *fakeEventStore) GetMeet(ctx context.Context, id uuid.UUID) (*model.Meet, error) {
	return f.meet, f.meetErr
}

func (f *fakeEventStore) GetLecture(ctx context.Context, id uuid.UUID) (*model.Lecture, error) {
	return f.lecture, f.lectureErr
}

type enqueueCall struct {
	key     string
	payload []byte
	delay   time.Duration
}

type fakeQueue struct {
	enqueues   []enqueueCall
	removes    []string
	enqueueErr error
	removeErr  error
}

func (f *fakeQueue) Enqueue(ctx context.Context, key string, payload []byte, delay time.Duration) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.enqueues = append(f.enqueues, enqueueCall{key: key, payload: payload, delay: delay})
	return nil
}

func (f *fakeQueue) Remove(ctx context.Context, key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removes = append(f.removes, key)
	return nil
}

func strptr(s string) *string { return &s }

func newTestScheduler(store EventStore, q *fakeQueue, now time.Time) *Scheduler {
	s := NewScheduler(store, q, zap.NewNop())
	s.clock = func() time.Time { return now }
	return s
}

func TestScheduleForMeetEnqueuesWithLead(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	start := now.Add(45 * time.Minute)
	id := uuid.New()

	store := &fakeEventStore{meet: &model.Meet{
		ID:        id,
		EventName: strptr("Конференция"),
		Email:     strptr("org@example.org"),
		Start:     &start,
	}}
	q := &fakeQueue{}
	s := newTestScheduler(store, q, now)

	if err := s.ScheduleForMeet(context.Background(), id); err != nil {
		t.Fatalf("ScheduleForMeet: %v", err)
	}
	if len(q.enqueues) != 1 {
		t.Fatalf("enqueues = %d, want 1", len(q.enqueues))
	}

	call := q.enqueues[0]
	wantKey := "meet-email-" + id.String()
	if call.key != wantKey {
		t.Errorf("key = %q, want %q", call.key, wantKey)
	}
	if call.delay != 15*time.Minute {
		t.Errorf("delay = %v, want 15m", call.delay)
	}

	var job Job
	if err := json.Unmarshal(call.payload, &job); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if job.Type != KindMeet || job.ID != id.String() {
		t.Errorf("job = %+v", job)
	}
	if job.Meet == nil || job.Meet.Email != "org@example.org" {
		t.Errorf("meet payload = %+v", job.Meet)
	}
}

func TestScheduleForMeetSkipsInsideLeadWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	start := now.Add(20 * time.Minute)
	id := uuid.New()

	store := &fakeEventStore{meet: &model.Meet{ID: id, Start: &start}}
	q := &fakeQueue{}
	s := newTestScheduler(store, q, now)

	if err := s.ScheduleForMeet(context.Background(), id); err != nil {
		t.Fatalf("ScheduleForMeet: %v", err)
	}
	if len(q.enqueues) != 0 {
		t.Errorf("enqueues = %d, want 0", len(q.enqueues))
	}
}

func TestScheduleForMeetSkipsWithoutStart(t *testing.T) {
	id := uuid.New()
	store := &fakeEventStore{meet: &model.Meet{ID: id}}
	q := &fakeQueue{}
	s := newTestScheduler(store, q, time.Now())

	if err := s.ScheduleForMeet(context.Background(), id); err != nil {
		t.Fatalf("ScheduleForMeet: %v", err)
	}
	if len(q.enqueues) != 0 {
		t.Errorf("enqueues = %d, want 0", len(q.enqueues))
	}
}

func TestScheduleForMeetMissingRowIsNoop(t *testing.T) {
	store := &fakeEventStore{meetErr: pgx.ErrNoRows}
	q := &fakeQueue{}
	s := newTestScheduler(store, q, time.Now())

	if err := s.ScheduleForMeet(context.Background(), uuid.New()); err != nil {
		t.Fatalf("ScheduleForMeet: %v", err)
	}
	if len(q.enqueues) != 0 {
		t.Errorf("enqueues = %d, want 0", len(q.enqueues))
	}
}

func TestScheduleForMeetPropagatesQueueError(t *testing.T) {
	now := time.Now()
	start := now.Add(2 * time.Hour)
	id := uuid.New()

	store := &fakeEventStore{meet: &model.Meet{ID: id, Start: &start}}
	q := &fakeQueue{enqueueErr: errors.New("redis down")}
	s := newTestScheduler(store, q, now)

	if err := s.ScheduleForMeet(context.Background(), id); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestScheduleForLectureCombinesDateAndStart(t *testing.T) {
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	clock := time.Date(2000, 1, 1, 10, 30, 0, 0, time.UTC)
	id := uuid.New()

	store := &fakeEventStore{lecture: &model.Lecture{
		ID:     id,
		Lector: strptr("Иванов И.И."),
		Date:   date,
		Start:  &clock,
	}}
	q := &fakeQueue{}
	s := newTestScheduler(store, q, now)

	if err := s.ScheduleForLecture(context.Background(), id); err != nil {
		t.Fatalf("ScheduleForLecture: %v", err)
	}
	if len(q.enqueues) != 1 {
		t.Fatalf("enqueues = %d, want 1", len(q.enqueues))
	}

	// Lecture starts 10:30 UTC; reminder fires 10:00, two hours from now.
	call := q.enqueues[0]
	if call.delay != 2*time.Hour {
		t.Errorf("delay = %v, want 2h", call.delay)
	}
	if want := "lecture-email-" + id.String(); call.key != want {
		t.Errorf("key = %q, want %q", call.key, want)
	}
}

func TestCancelReminderRemovesByKey(t *testing.T) {
	id := uuid.New()
	q := &fakeQueue{}
	s := newTestScheduler(&fakeEventStore{}, q, time.Now())

	if err := s.CancelReminder(context.Background(), KindMeet, id); err != nil {
		t.Fatalf("CancelReminder: %v", err)
	}
	if len(q.removes) != 1 || q.removes[0] != "meet-email-"+id.String() {
		t.Errorf("removes = %v", q.removes)
	}
}

func TestCancelReminderNeverScheduledIsNoError(t *testing.T) {
	q := &fakeQueue{}
	s := newTestScheduler(&fakeEventStore{}, q, time.Now())

	if err := s.CancelReminder(context.Background(), KindLecture, uuid.New()); err != nil {
		t.Fatalf("CancelReminder: %v", err)
	}
}
