package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type fakeMailer struct {
	sent []MeetJob
	err  error
}

func (f *fakeMailer) SendMeetReminder(ctx context.Context, job MeetJob) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, job)
	return nil
}

type fakeBot struct {
	texts []string
	err   error
}

func (f *fakeBot) SendToGroup(ctx context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.texts = append(f.texts, text)
	return nil
}

func marshalJob(t *testing.T, job Job) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal job: %v", err)
	}
	return raw
}

func TestHandleDueMeetFansOutToBothChannels(t *testing.T) {
	mailer := &fakeMailer{}
	bot := &fakeBot{}
	d := NewDispatcher(mailer, bot, zap.NewNop())

	raw := marshalJob(t, Job{
		Type: KindMeet,
		ID:   "m1",
		Meet: &MeetJob{
			Email:     "org@example.org",
			EventName: "Защита дипломов",
			Place:     "Ауд. 101",
			ShortURL:  "https://clck.ru/abc",
			DateTime:  "10.03.2026 15:00",
		},
	})

	if err := d.HandleDue(context.Background(), raw); err != nil {
		t.Fatalf("HandleDue: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Errorf("emails sent = %d, want 1", len(mailer.sent))
	}
	if len(bot.texts) != 1 {
		t.Fatalf("chat messages = %d, want 1", len(bot.texts))
	}
	if !strings.Contains(bot.texts[0], "Защита дипломов") {
		t.Errorf("chat text = %q", bot.texts[0])
	}
	if !strings.Contains(bot.texts[0], "https://clck.ru/abc") {
		t.Errorf("chat text lacks link: %q", bot.texts[0])
	}
}

func TestHandleDueMeetWithoutEmailSkipsMailer(t *testing.T) {
	mailer := &fakeMailer{}
	bot := &fakeBot{}
	d := NewDispatcher(mailer, bot, zap.NewNop())

	raw := marshalJob(t, Job{Type: KindMeet, ID: "m1", Meet: &MeetJob{EventName: "X"}})

	if err := d.HandleDue(context.Background(), raw); err != nil {
		t.Fatalf("HandleDue: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("emails sent = %d, want 0", len(mailer.sent))
	}
	if len(bot.texts) != 1 {
		t.Errorf("chat messages = %d, want 1", len(bot.texts))
	}
}

func TestHandleDueLectureGoesToChatOnly(t *testing.T) {
	mailer := &fakeMailer{}
	bot := &fakeBot{}
	d := NewDispatcher(mailer, bot, zap.NewNop())

	raw := marshalJob(t, Job{
		Type:    KindLecture,
		ID:      "l1",
		Lecture: &LectureJob{Lector: "Иванов И.И.", Group: "ИУ5-31"},
	})

	if err := d.HandleDue(context.Background(), raw); err != nil {
		t.Fatalf("HandleDue: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("emails sent = %d, want 0", len(mailer.sent))
	}
	if len(bot.texts) != 1 {
		t.Fatalf("chat messages = %d, want 1", len(bot.texts))
	}
	if !strings.Contains(bot.texts[0], "ИУ5-31") {
		t.Errorf("chat text = %q", bot.texts[0])
	}
}

func TestHandleDueEmailFailureStillSendsChat(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	bot := &fakeBot{}
	d := NewDispatcher(mailer, bot, zap.NewNop())

	raw := marshalJob(t, Job{Type: KindMeet, ID: "m1", Meet: &MeetJob{Email: "a@b.c"}})

	if err := d.HandleDue(context.Background(), raw); err != nil {
		t.Fatalf("HandleDue: %v", err)
	}
	if len(bot.texts) != 1 {
		t.Errorf("chat messages = %d, want 1", len(bot.texts))
	}
}

func TestHandleDueChatFailureIsSwallowed(t *testing.T) {
	mailer := &fakeMailer{}
	bot := &fakeBot{err: errors.New("telegram down")}
	d := NewDispatcher(mailer, bot, zap.NewNop())

	raw := marshalJob(t, Job{Type: KindMeet, ID: "m1", Meet: &MeetJob{Email: "a@b.c"}})

	if err := d.HandleDue(context.Background(), raw); err != nil {
		t.Fatalf("HandleDue: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Errorf("emails sent = %d, want 1", len(mailer.sent))
	}
}

func TestHandleDueRejectsMalformedPayload(t *testing.T) {
	d := NewDispatcher(&fakeMailer{}, &fakeBot{}, zap.NewNop())

	if err := d.HandleDue(context.Background(), json.RawMessage(`{not json`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestHandleDueRejectsMeetJobWithoutPayload(t *testing.T) {
	d := NewDispatcher(&fakeMailer{}, &fakeBot{}, zap.NewNop())

	raw := marshalJob(t, Job{Type: KindMeet, ID: "m1"})
	if err := d.HandleDue(context.Background(), raw); err == nil {
		t.Fatal("expected error for meet job without meet payload")
	}
}

func TestHandleDueRejectsUnknownType(t *testing.T) {
	d := NewDispatcher(&fakeMailer{}, &fakeBot{}, zap.NewNop())

	if err := d.HandleDue(context.Background(), json.RawMessage(`{"type":"webinar","id":"x"}`)); err == nil {
		t.Fatal("expected error for unknown job type")
	}
}
