package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"meetcrm/internal/model"
)

type fakeSource struct {
	meets    []model.Meet
	lectures []model.Lecture
	meetErr  error
}

func (f *fakeSource) ListUpcomingMeets(ctx context.Context, from time.Time) ([]model.Meet, error) {
	return f.meets, f.meetErr
}

func (f *fakeSource) ListUpcomingLectures(ctx context.Context, from time.Time) ([]model.Lecture, error) {
	return f.lectures, nil
}

type fakeScheduler struct {
	meets    []uuid.UUID
	lectures []uuid.UUID
}

func (f *fakeScheduler) ScheduleForMeet(ctx context.Context, id uuid.UUID) error {
	f.meets = append(f.meets, id)
	return nil
}

func (f *fakeScheduler) ScheduleForLecture(ctx context.Context, id uuid.UUID) error {
	f.lectures = append(f.lectures, id)
	return nil
}

type fakePurger struct {
	purged int
}

func (f *fakePurger) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.purged++
	return 3, nil
}

func TestResyncReschedulesAllUpcomingEvents(t *testing.T) {
	m1, m2, l1 := uuid.New(), uuid.New(), uuid.New()
	source := &fakeSource{
		meets:    []model.Meet{{ID: m1}, {ID: m2}},
		lectures: []model.Lecture{{ID: l1}},
	}
	sched := &fakeScheduler{}
	r := New(source, sched, &fakePurger{}, zap.NewNop())

	r.Resync(context.Background())

	if len(sched.meets) != 2 || sched.meets[0] != m1 || sched.meets[1] != m2 {
		t.Errorf("scheduled meets = %v", sched.meets)
	}
	if len(sched.lectures) != 1 || sched.lectures[0] != l1 {
		t.Errorf("scheduled lectures = %v", sched.lectures)
	}
}

func TestResyncMeetListFailureStillHandlesLectures(t *testing.T) {
	l1 := uuid.New()
	source := &fakeSource{
		meetErr:  errors.New("db down"),
		lectures: []model.Lecture{{ID: l1}},
	}
	sched := &fakeScheduler{}
	r := New(source, sched, &fakePurger{}, zap.NewNop())

	r.Resync(context.Background())

	if len(sched.meets) != 0 {
		t.Errorf("scheduled meets = %v, want none", sched.meets)
	}
	if len(sched.lectures) != 1 {
		t.Errorf("scheduled lectures = %v", sched.lectures)
	}
}

func TestPurgeTokens(t *testing.T) {
	purger := &fakePurger{}
	r := New(&fakeSource{}, &fakeScheduler{}, purger, zap.NewNop())

	r.purgeTokens(context.Background())
	if purger.purged != 1 {
		t.Errorf("purge calls = %d, want 1", purger.purged)
	}
}
