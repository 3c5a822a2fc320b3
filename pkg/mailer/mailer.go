// Package mailer delivers transactional email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/harambee-coop/membership-backend/pkg/config"
	"github.com/harambee-coop/membership-backend/pkg/logger"
)

// Mailer sends plain-text email to members.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// sendFunc matches smtp.SendMail and is swapped out in tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
	logg     *logger.Logger
	send     sendFunc
}

// New builds a Mailer from SMTP config. When no host is configured the
// returned Mailer drops every message so callers never need to branch.
func New(cfg config.SMTPConfig, logg *logger.Logger) Mailer {
	if cfg.Host == "" {
		return noopMailer{logg: logg}
	}
	return &mailer{
		host:     cfg.Host,
		port:     cfg.Port,
		from:     cfg.From,
		username: cfg.Username,
		password: cfg.Password,
		logg:     logg,
		send:     smtp.SendMail,
	}
}

func (m *mailer) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := m.send(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		if m.logg != nil {
			ctx = m.logg.WithFields(ctx, map[string]any{
				"recipient": to,
				"subject":   subject,
			})
			m.logg.Error(ctx, "email delivery failed", err)
		}
		return err
	}
	return nil
}

type noopMailer struct {
	logg *logger.Logger
}

func (n noopMailer) Send(ctx context.Context, to, subject, _ string) error {
	if n.logg != nil {
		ctx = n.logg.WithFields(ctx, map[string]any{
			"recipient": to,
			"subject":   subject,
		})
		n.logg.Info(ctx, "smtp not configured, dropping email")
	}
	return nil
}
