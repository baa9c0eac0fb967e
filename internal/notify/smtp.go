package notify

import (
	"context"
	"time"

	"github.com/Ayush22-04/xetor-backen/internal/config"
	"github.com/Ayush22-04/xetor-backen/pkg/logger"
	"gopkg.in/gomail.v2"
)

// AdminSubjectPrefix prefixes the subject of the admin copy.
const AdminSubjectPrefix = "Admin Copy: "

// SMTPSender delivers mail through an SMTP relay. The user message and the
// admin copy go out over one connection; the result reflects both.
// timeout bounds the whole exchange, not only the dial.
type SMTPSender struct {
	from    string
	admin   string
	timeout time.Duration
	send    func(msgs ...*gomail.Message) error
}

// NewSMTPSender builds a sender from mail configuration.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	d := gomail.NewDialer(cfg.Server, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.UseSSL
	return &SMTPSender{from: cfg.DefaultSender, admin: cfg.AdminAddress, timeout: cfg.Timeout, send: d.DialAndSend}
}

func (s *SMTPSender) message(to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, userBody, adminBody string) bool {
	if err := ctx.Err(); err != nil {
		return false
	}
	msgs := []*gomail.Message{s.message(to, subject, userBody)}
	if s.admin != "" && adminBody != "" {
		msgs = append(msgs, s.message(s.admin, AdminSubjectPrefix+subject, adminBody))
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	// gomail has no context support; a stuck relay is abandoned, not interrupted
	done := make(chan error, 1)
	go func() { done <- s.send(msgs...) }()
	select {
	case err := <-done:
		if err != nil {
			logger.Errorf("smtp send to %s: %v", to, err)
			return false
		}
		return true
	case <-ctx.Done():
		logger.Errorf("smtp send to %s: %v", to, ctx.Err())
		return false
	}
}
