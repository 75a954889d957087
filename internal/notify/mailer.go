package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"meetcrm/config"
	"meetcrm/internal/reminder"
)

var reminderTmpl = template.Must(template.New("meet-reminder").Parse(`
<p>Здравствуйте!</p>
<p>Через 30 минут начнётся мероприятие «{{.EventName}}».</p>
<ul>
  <li>Время: {{.DateTime}}</li>
  <li>Место: {{.Place}}</li>
  {{if .URL}}<li>Ссылка для подключения: <a href="{{.URL}}">{{.URL}}</a></li>{{end}}
  {{if .ShortURL}}<li>Короткая ссылка: <a href="{{.ShortURL}}">{{.ShortURL}}</a></li>{{end}}
</ul>
`))

var meetingInfoTmpl = template.Must(template.New("meet-info").Parse(`
<p>Здравствуйте, {{.Customer}}!</p>
<p>Для мероприятия «{{.EventName}}» создана ссылка для подключения.</p>
<ul>
  <li>Время: {{.DateTime}}</li>
  <li>Ссылка: <a href="{{.URL}}">{{.URL}}</a></li>
  {{if .ShortURL}}<li>Короткая ссылка: <a href="{{.ShortURL}}">{{.ShortURL}}</a></li>{{end}}
</ul>
`))

// MeetingInfo is the payload of the "link created" email sent when an
// administrator attaches a conference URL to a meet.
type MeetingInfo struct {
	Email     string
	Customer  string
	EventName string
	URL       string
	ShortURL  string
	DateTime  string
}

// SMTPMailer sends transactional emails over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

// SendMeetReminder implements reminder.Mailer.
func (m *SMTPMailer) SendMeetReminder(ctx context.Context, job reminder.MeetJob) error {
	subject := fmt.Sprintf("30 минут до подключения %s", job.EventName)
	return m.send(job.Email, subject, reminderTmpl, job)
}

// SendMeetingInfo emails the organizer their connection details.
func (m *SMTPMailer) SendMeetingInfo(ctx context.Context, info MeetingInfo) error {
	subject := fmt.Sprintf("Ссылка для подключения %s", info.EventName)
	return m.send(info.Email, subject, meetingInfoTmpl, info)
}

func (m *SMTPMailer) send(to, subject string, tmpl *template.Template, data any) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render email body: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	m.logger.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
