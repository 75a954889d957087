package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"meetcrm/internal/model"
)

// EventStore bundles the read side of meets and lectures for the
// reminder scheduler.
type EventStore struct {
	meets    *MeetRepository
	lectures *LectureRepository
}

func NewEventStore(meets *MeetRepository, lectures *LectureRepository) *EventStore {
	return &EventStore{meets: meets, lectures: lectures}
}

func (s *EventStore) GetMeet(ctx context.Context, id uuid.UUID) (*model.Meet, error) {
	return s.meets.GetByID(ctx, id)
}

func (s *EventStore) GetLecture(ctx context.Context, id uuid.UUID) (*model.Lecture, error) {
	return s.lectures.GetByID(ctx, id)
}

func (s *EventStore) ListUpcomingMeets(ctx context.Context, from time.Time) ([]model.Meet, error) {
	return s.meets.ListUpcoming(ctx, from)
}

func (s *EventStore) ListUpcomingLectures(ctx context.Context, from time.Time) ([]model.Lecture, error) {
	return s.lectures.ListUpcoming(ctx, from)
}
