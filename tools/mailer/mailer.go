// Package mailer sends support ticket emails over SMTP.
package mailer

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/uniassist/supportcore/routercore/faults"
)

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Sender   string
	Password string
}

// Mailer delivers mail through a single SMTP account.
type Mailer struct {
	cfg    Config
	logger *zap.Logger

	// sendMail is swapped out in tests.
	sendMail func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// New creates a mailer. Host, port and sender are required.
func New(cfg Config, logger *zap.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("smtp port is required")
	}
	if cfg.Sender == "" {
		return nil, fmt.Errorf("smtp sender is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{
		cfg:      cfg,
		logger:   logger,
		sendMail: smtp.SendMail,
	}, nil
}

// Send delivers one message. The subject is Q-encoded so Vietnamese
// text survives the transport.
func (m *Mailer) Send(ctx context.Context, recipient, subject, body string) error {
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}

	msg := buildMessage(m.cfg.Sender, recipient, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Sender, m.cfg.Password, m.cfg.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.sendMail(addr, auth, m.cfg.Sender, []string{recipient}, msg)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: mail delivery aborted: %v", faults.ErrBackendDown, ctx.Err())
	case err := <-done:
		if err != nil {
			m.logger.Warn("mail delivery failed",
				zap.String("recipient", recipient),
				zap.Error(err))
			return fmt.Errorf("%w: mail delivery failed: %v", faults.ErrBackendDown, err)
		}
	}

	m.logger.Info("mail delivered", zap.String("recipient", recipient))
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
