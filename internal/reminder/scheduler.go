package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"meetcrm/internal/metrics"
	"meetcrm/internal/model"
	"meetcrm/internal/queue"
	"meetcrm/internal/util"
)

// Lead is how long before an event's start its reminder fires.
const Lead = 30 * time.Minute

// EventStore reads event fields at schedule time. The scheduler never
// writes to it.
type EventStore interface {
	GetMeet(ctx context.Context, id uuid.UUID) (*model.Meet, error)
	GetLecture(ctx context.Context, id uuid.UUID) (*model.Lecture, error)
}

// Scheduler turns an event's start time into a single keyed delayed
// job, and cancels by the same key. Events without a resolvable start,
// and events starting within Lead of now, get no reminder; both cases
// are silent no-ops, not errors.
type Scheduler struct {
	store  EventStore
	queue  queue.DelayedJobQueue
	logger *zap.Logger
	clock  func() time.Time
}

func NewScheduler(store EventStore, q queue.DelayedJobQueue, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		store:  store,
		queue:  q,
		logger: logger,
		clock:  time.Now,
	}
}

// ScheduleForMeet enqueues the reminder for a persisted meet.
func (s *Scheduler) ScheduleForMeet(ctx context.Context, id uuid.UUID) error {
	m, err := s.store.GetMeet(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Debug("Meet not found, no reminder scheduled", zap.String("meet_id", id.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load meet: %w", err)
	}

	start, ok := m.StartInstant()
	if !ok {
		s.logger.Debug("Meet has no start time, no reminder scheduled", zap.String("meet_id", id.String()))
		return nil
	}

	job := Job{
		Type: KindMeet,
		ID:   id.String(),
		Meet: &MeetJob{
			Email:     util.StringOrEmpty(m.Email),
			EventName: util.OrDash(m.EventName),
			Place:     util.OrDash(m.Location),
			URL:       util.StringOrEmpty(m.URL),
			ShortURL:  util.StringOrEmpty(m.ShortURL),
			DateTime:  util.FormatDateTime(start),
		},
	}

	return s.schedule(ctx, job, start)
}

// ScheduleForLecture enqueues the reminder for a persisted lecture.
// The start instant combines the lecture's calendar day with the
// time-of-day field, in UTC.
func (s *Scheduler) ScheduleForLecture(ctx context.Context, id uuid.UUID) error {
	l, err := s.store.GetLecture(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Debug("Lecture not found, no reminder scheduled", zap.String("lecture_id", id.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load lecture: %w", err)
	}

	start, ok := l.StartInstant()
	if !ok {
		s.logger.Debug("Lecture has no start time, no reminder scheduled", zap.String("lecture_id", id.String()))
		return nil
	}

	job := Job{
		Type: KindLecture,
		ID:   id.String(),
		Lecture: &LectureJob{
			Lector:   util.OrDash(l.Lector),
			Group:    util.OrDash(l.Group),
			Unit:     util.OrDash(l.Unit),
			Place:    util.OrDash(l.Location),
			ShortURL: util.StringOrEmpty(l.ShortURL),
			DateTime: util.FormatDateTime(start),
		},
	}

	return s.schedule(ctx, job, start)
}

// CancelReminder removes a pending reminder. Canceling a key that was
// never scheduled, already fired or already claimed is a no-op; a job
// claimed by the delivery stage can still fire after a successful
// cancel (accepted best-effort limitation).
func (s *Scheduler) CancelReminder(ctx context.Context, kind Kind, id uuid.UUID) error {
	key := JobKey(kind, id.String())
	if err := s.queue.Remove(ctx, key); err != nil {
		return fmt.Errorf("cancel reminder: %w", err)
	}

	metrics.RemindersCanceled.WithLabelValues(string(kind)).Inc()
	s.logger.Info("Reminder canceled", zap.String("job_key", key))
	return nil
}

func (s *Scheduler) schedule(ctx context.Context, job Job, start time.Time) error {
	fireAt := start.Add(-Lead)
	delay := fireAt.Sub(s.clock())
	key := JobKey(job.Type, job.ID)

	if delay <= 0 {
		// Too close to (or past) the reminder window: no reminder.
		s.logger.Debug("Reminder window already passed, skipping",
			zap.String("job_key", key),
			zap.Time("fire_at", fireAt),
		)
		return nil
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", key, err)
	}

	if err := s.queue.Enqueue(ctx, key, payload, delay); err != nil {
		return err
	}

	metrics.RemindersScheduled.WithLabelValues(string(job.Type)).Inc()
	s.logger.Info("Reminder scheduled",
		zap.String("job_key", key),
		zap.Time("fire_at", fireAt),
		zap.Duration("delay", delay),
	)
	return nil
}
