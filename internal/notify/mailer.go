package notify

import (
	"stay-nest/pkg/utils"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

// NewMailer returns an SMTP mailer, or a mailer that only logs when no SMTP
// host is configured.
func NewMailer(config utils.EmailConfig, log *zap.Logger) Mailer {
	log = log.With(zap.String("component", "mailer"))
	if config.Host == "" {
		log.Warn("SMTP host not configured, emails will only be logged")
		return &logMailer{log: log}
	}

	from := config.From
	if from == "" {
		from = config.User
	}

	return &smtpMailer{
		dialer: gomail.NewDialer(config.Host, config.Port, config.User, config.Password),
		from:   from,
		log:    log,
	}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Error("Failed to send email", zap.Error(err), zap.String("to", to))
		return err
	}

	m.log.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

type logMailer struct {
	log *zap.Logger
}

func (m *logMailer) Send(to, subject, body string) error {
	m.log.Info("Email (not sent)", zap.String("to", to), zap.String("subject", subject), zap.String("body", body))
	return nil
}
