package reminder

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"meetcrm/internal/metrics"
)

// Mailer is the email delivery channel.
type Mailer interface {
	SendMeetReminder(ctx context.Context, job MeetJob) error
}

// GroupNotifier is the chat delivery channel (the institute's
// Telegram group).
type GroupNotifier interface {
	SendToGroup(ctx context.Context, text string) error
}

// Dispatcher consumes fired reminder jobs and fans out to the delivery
// channels. The two channels are independent: a failure in one is
// logged and swallowed, and the other is still attempted. The only
// error HandleDue returns is a payload that cannot be interpreted at
// all; that one ends up in the DLQ.
type Dispatcher struct {
	mailer Mailer
	bot    GroupNotifier
	logger *zap.Logger
}

func NewDispatcher(mailer Mailer, bot GroupNotifier, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		mailer: mailer,
		bot:    bot,
		logger: logger,
	}
}

// HandleDue is the delivery-queue handler invoked once per fired job.
func (d *Dispatcher) HandleDue(ctx context.Context, raw json.RawMessage) error {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("unmarshal reminder job: %w", err)
	}

	switch job.Type {
	case KindMeet:
		if job.Meet == nil {
			return fmt.Errorf("meet job %s has no meet payload", job.ID)
		}
		metrics.RemindersFired.WithLabelValues(string(KindMeet)).Inc()
		d.dispatchMeet(ctx, job.ID, *job.Meet)
		return nil

	case KindLecture:
		if job.Lecture == nil {
			return fmt.Errorf("lecture job %s has no lecture payload", job.ID)
		}
		metrics.RemindersFired.WithLabelValues(string(KindLecture)).Inc()
		d.dispatchLecture(ctx, job.ID, *job.Lecture)
		return nil

	default:
		return fmt.Errorf("unknown reminder job type %q", job.Type)
	}
}

// dispatchMeet sends the organizer email, then the group chat message.
// Lectures have no organizer email, so meets are the only kind with an
// email channel.
func (d *Dispatcher) dispatchMeet(ctx context.Context, id string, job MeetJob) {
	if job.Email != "" {
		if err := d.mailer.SendMeetReminder(ctx, job); err != nil {
			metrics.ChannelSends.WithLabelValues("email", "error").Inc()
			d.logger.Error("Reminder email failed",
				zap.String("meet_id", id),
				zap.String("to", job.Email),
				zap.Error(err),
			)
		} else {
			metrics.ChannelSends.WithLabelValues("email", "ok").Inc()
			d.logger.Info("Reminder email sent",
				zap.String("meet_id", id),
				zap.String("to", job.Email),
			)
		}
	}

	d.sendToGroup(ctx, "meet_id", id, meetReminderText(job))
}

func (d *Dispatcher) dispatchLecture(ctx context.Context, id string, job LectureJob) {
	d.sendToGroup(ctx, "lecture_id", id, lectureReminderText(job))
}

func (d *Dispatcher) sendToGroup(ctx context.Context, idField, id, text string) {
	if err := d.bot.SendToGroup(ctx, text); err != nil {
		metrics.ChannelSends.WithLabelValues("telegram", "error").Inc()
		d.logger.Error("Reminder chat message failed",
			zap.String(idField, id),
			zap.Error(err),
		)
		return
	}
	metrics.ChannelSends.WithLabelValues("telegram", "ok").Inc()
	d.logger.Info("Reminder chat message sent", zap.String(idField, id))
}

func meetReminderText(job MeetJob) string {
	return fmt.Sprintf(
		"Через 30 минут начнётся мероприятие!\n"+
			"Название: %s\n"+
			"Место: %s\n"+
			"Ссылка: %s\n"+
			"Время: %s",
		job.EventName, job.Place, linkOrDash(job.ShortURL, job.URL), job.DateTime,
	)
}

func lectureReminderText(job LectureJob) string {
	return fmt.Sprintf(
		"Через 30 минут начнётся лекция!\n"+
			"Лектор: %s\n"+
			"Группа: %s\n"+
			"Корпус: %s\n"+
			"Место: %s\n"+
			"Ссылка: %s\n"+
			"Время: %s",
		job.Lector, job.Group, job.Unit, job.Place, linkOrDash(job.ShortURL, ""), job.DateTime,
	)
}

func linkOrDash(short, long string) string {
	if short != "" {
		return short
	}
	if long != "" {
		return long
	}
	return "не указана"
}
