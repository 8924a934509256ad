package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"carrental/internal/app/policies"
)

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGrid delivers customer emails through the SendGrid v3 API.
type SendGrid struct {
	client mailSender
	from   *mail.Email
	logger *slog.Logger
}

func NewSendGrid(apiKey, fromEmail, fromName string, logger *slog.Logger) (*SendGrid, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("notify: sendgrid api key is required")
	}
	if strings.TrimSpace(fromEmail) == "" {
		return nil, errors.New("notify: sender email is required")
	}
	if fromName == "" {
		fromName = "Car Rental"
	}
	return &SendGrid{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
		logger: logger,
	}, nil
}

func (s *SendGrid) Send(ctx context.Context, to string, template string, data any) error {
	subject, body, err := Render(template, data)
	if err != nil {
		return err
	}
	msg := mail.NewSingleEmail(s.from, subject, mail.NewEmail("", to), body, "")
	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("notify: sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify: sendgrid returned %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body))
	}
	if s.logger != nil {
		s.logger.Info("email sent", "template", template, "status", resp.StatusCode)
	}
	return nil
}

// LogNotifier renders emails into the log. Used when no mail provider is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Send(_ context.Context, to string, template string, data any) error {
	subject, body, err := Render(template, data)
	if err != nil {
		return err
	}
	if n.Logger != nil {
		n.Logger.Info("email (not sent)", "to", to, "subject", subject, "body", body)
	}
	return nil
}

var (
	_ policies.Notifier = (*SendGrid)(nil)
	_ policies.Notifier = LogNotifier{}
)
