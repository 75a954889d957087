package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"meetcrm/internal/model"
	"meetcrm/internal/notify"
	"meetcrm/internal/reminder"
	"meetcrm/internal/repository"
	"meetcrm/internal/util"
)

// URLShortener shortens conference links.
type URLShortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// InfoMailer sends the "link created" email to an organizer.
type InfoMailer interface {
	SendMeetingInfo(ctx context.Context, info notify.MeetingInfo) error
}

// ReminderScheduler is the slice of the reminder subsystem the CRUD
// services drive.
type ReminderScheduler interface {
	ScheduleForMeet(ctx context.Context, id uuid.UUID) error
	ScheduleForLecture(ctx context.Context, id uuid.UUID) error
	CancelReminder(ctx context.Context, kind reminder.Kind, id uuid.UUID) error
}

type MeetService struct {
	meets     *repository.MeetRepository
	shortener URLShortener
	mailer    InfoMailer
	bot       reminder.GroupNotifier
	scheduler ReminderScheduler
	logger    *zap.Logger
}

func NewMeetService(
	meets *repository.MeetRepository,
	shortener URLShortener,
	mailer InfoMailer,
	bot reminder.GroupNotifier,
	scheduler ReminderScheduler,
	logger *zap.Logger,
) *MeetService {
	return &MeetService{
		meets:     meets,
		shortener: shortener,
		mailer:    mailer,
		bot:       bot,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Create stores a new meet request and announces it to the group chat.
// The announcement is best-effort: the request is persisted either way.
func (s *MeetService) Create(ctx context.Context, m *model.Meet) (*model.Meet, error) {
	if err := s.meets.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create meet: %w", err)
	}

	text := fmt.Sprintf(
		"Новая заявка на конференцию!\n"+
			"Название: %s\n"+
			"ФИО: %s\n"+
			"Почта: %s\n"+
			"Телефон: %s\n"+
			"Место: %s\n"+
			"Время: %s",
		util.OrDash(m.EventName), util.OrDash(m.CustomerName), util.OrDash(m.Email),
		util.OrDash(m.Phone), util.OrDash(m.Location), startOrDash(m),
	)
	if err := s.bot.SendToGroup(ctx, text); err != nil {
		s.logger.Error("Failed to announce new meet", zap.String("meet_id", m.ID.String()), zap.Error(err))
	}

	return m, nil
}

// CreateMany stores a batch of meets without announcements.
func (s *MeetService) CreateMany(ctx context.Context, meets []model.Meet) ([]model.Meet, error) {
	for i := range meets {
		if err := s.meets.Create(ctx, &meets[i]); err != nil {
			return nil, fmt.Errorf("create meet %d: %w", i, err)
		}
	}
	return meets, nil
}

// FindAll returns a filtered, sorted page of meets.
func (s *MeetService) FindAll(ctx context.Context, f repository.MeetFilter, page, limit int) ([]model.Meet, Pagination, error) {
	offset, limit := util.PageBounds(page, limit)
	f.Offset = offset
	f.Limit = limit

	meets, total, err := s.meets.List(ctx, f)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list meets: %w", err)
	}
	return meets, NewPagination(page, limit, total), nil
}

// Search returns a page of meets matching a free-text term.
func (s *MeetService) Search(ctx context.Context, term string, page, limit int) ([]model.Meet, Pagination, error) {
	offset, limit := util.PageBounds(page, limit)

	meets, total, err := s.meets.Search(ctx, term, offset, limit)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("search meets: %w", err)
	}
	return meets, NewPagination(page, limit, total), nil
}

// Update patches a meet. Attaching a URL shortens it, emails the
// organizer their connection details, and (re)schedules the reminder
// as cancel-then-enqueue.
func (s *MeetService) Update(ctx context.Context, id uuid.UUID, upd repository.MeetUpdate) (*model.Meet, error) {
	if upd.URL != nil && *upd.URL != "" {
		short, err := s.shortener.Shorten(ctx, *upd.URL)
		if err != nil {
			s.logger.Error("Failed to shorten meet url", zap.String("meet_id", id.String()), zap.Error(err))
		} else {
			upd.ShortURL = &short
		}
	}

	m, err := s.meets.Update(ctx, id, upd)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update meet: %w", err)
	}

	if upd.URL != nil && m.Email != nil && m.URL != nil {
		info := notify.MeetingInfo{
			Email:     *m.Email,
			Customer:  util.OrDash(m.CustomerName),
			EventName: util.OrDash(m.EventName),
			URL:       *m.URL,
			ShortURL:  util.StringOrEmpty(m.ShortURL),
			DateTime:  startOrDash(m),
		}
		if err := s.mailer.SendMeetingInfo(ctx, info); err != nil {
			s.logger.Error("Failed to send meeting info email",
				zap.String("meet_id", id.String()),
				zap.Error(err),
			)
		}

		if err := s.scheduler.CancelReminder(ctx, reminder.KindMeet, id); err != nil {
			return nil, err
		}
		if err := s.scheduler.ScheduleForMeet(ctx, id); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Delete removes a meet and cancels its pending reminder.
func (s *MeetService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.meets.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete meet: %w", err)
	}

	return s.scheduler.CancelReminder(ctx, reminder.KindMeet, id)
}

func startOrDash(m *model.Meet) string {
	if m.Start == nil {
		return "не указано"
	}
	return util.FormatDateTime(*m.Start)
}
