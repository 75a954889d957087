package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"meetcrm/internal/model"
	"meetcrm/internal/reminder"
	"meetcrm/internal/repository"
	"meetcrm/internal/util"
)

// MonthGroup lists the Russian month names a year has lectures in.
type MonthGroup struct {
	Year   int      `json:"year"`
	Months []string `json:"months"`
}

type LectureService struct {
	lectures  *repository.LectureRepository
	scheduler ReminderScheduler
	logger    *zap.Logger
}

func NewLectureService(lectures *repository.LectureRepository, scheduler ReminderScheduler, logger *zap.Logger) *LectureService {
	return &LectureService{lectures: lectures, scheduler: scheduler, logger: logger}
}

// Create stores a single lecture and schedules its reminder.
func (s *LectureService) Create(ctx context.Context, l *model.Lecture) (*model.Lecture, error) {
	if err := s.lectures.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create lecture: %w", err)
	}
	if err := s.scheduler.ScheduleForLecture(ctx, l.ID); err != nil {
		return nil, err
	}
	return l, nil
}

// CreateBulk stores an imported batch of lectures and schedules a
// reminder for each.
func (s *LectureService) CreateBulk(ctx context.Context, lectures []model.Lecture) ([]model.Lecture, error) {
	if len(lectures) == 0 {
		return nil, nil
	}
	if err := s.lectures.CreateBulk(ctx, lectures); err != nil {
		return nil, fmt.Errorf("create lectures: %w", err)
	}
	for i := range lectures {
		if err := s.scheduler.ScheduleForLecture(ctx, lectures[i].ID); err != nil {
			return nil, err
		}
	}
	return lectures, nil
}

// Dates reports which months carry lectures, grouped by year with
// Russian month names.
func (s *LectureService) Dates(ctx context.Context) ([]MonthGroup, error) {
	months, err := s.lectures.Months(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lecture months: %w", err)
	}

	groups := make([]MonthGroup, 0, len(months))
	for _, m := range months {
		g := MonthGroup{Year: m.Year, Months: make([]string, 0, len(m.Months))}
		for _, num := range m.Months {
			g.Months = append(g.Months, util.RussianMonthName(time.Month(num)))
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// Days returns the lectures of one month, addressed by year and
// Russian month name.
func (s *LectureService) Days(ctx context.Context, year int, monthName string) ([]model.Lecture, error) {
	month, ok := util.ParseRussianMonth(monthName)
	if !ok {
		return nil, fmt.Errorf("%w: unknown month %q", ErrBadInput, monthName)
	}
	lectures, err := s.lectures.ListByYearMonth(ctx, year, int(month))
	if err != nil {
		return nil, fmt.Errorf("list lectures for %d-%02d: %w", year, month, err)
	}
	return lectures, nil
}

// ScheduleByDate returns the lectures of one calendar day.
func (s *LectureService) ScheduleByDate(ctx context.Context, date time.Time) ([]model.Lecture, error) {
	lectures, err := s.lectures.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list lectures by date: %w", err)
	}
	return lectures, nil
}

// Update patches a lecture and reschedules its reminder as
// cancel-then-enqueue.
func (s *LectureService) Update(ctx context.Context, id uuid.UUID, upd repository.LectureUpdate) (*model.Lecture, error) {
	l, err := s.lectures.Update(ctx, id, upd)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update lecture: %w", err)
	}

	if err := s.scheduler.CancelReminder(ctx, reminder.KindLecture, id); err != nil {
		return nil, err
	}
	if err := s.scheduler.ScheduleForLecture(ctx, id); err != nil {
		return nil, err
	}
	return l, nil
}

// Delete removes a lecture and cancels its pending reminder.
func (s *LectureService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.lectures.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete lecture: %w", err)
	}
	return s.scheduler.CancelReminder(ctx, reminder.KindLecture, id)
}
