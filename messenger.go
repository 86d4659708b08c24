package tourbase

import (
	"context"
	"fmt"
	"net/smtp"

	goerrors "github.com/goliatone/go-errors"
)

// SMTPMessenger delivers messages through a plain SMTP relay.
type SMTPMessenger struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

var _ Messenger = (*SMTPMessenger)(nil)

func (m *SMTPMessenger) Send(ctx context.Context, to, subject, body string) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during email delivery")
	default:
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.From, to, subject, body)

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)
	if err := smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg)); err != nil {
		return goerrors.Wrap(err, ErrDeliveryFailure.Category, ErrDeliveryFailure.Message).
			WithCode(goerrors.CodeInternal).
			WithTextCode(ErrDeliveryFailure.TextCode)
	}

	return nil
}

// LogMessenger writes messages to the logger instead of delivering them.
// Useful for development and tests.
type LogMessenger struct {
	Logger Logger
}

var _ Messenger = (*LogMessenger)(nil)

func (m *LogMessenger) Send(ctx context.Context, to, subject, body string) error {
	logger := m.Logger
	if logger == nil {
		logger = defLogger{}
	}

	logger.Info("outbound message", "to", to, "subject", subject, "body", body)
	return nil
}

// IsDeliveryFailure reports whether the error came from the messenger.
func IsDeliveryFailure(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	return goerrors.As(err, &richErr) && richErr.TextCode == TextCodeDeliveryFailure
}
