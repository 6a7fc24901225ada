package email

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"school-api/internal/domain"
)

type sendGridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridSender envia correos via la API de SendGrid.
type SendGridSender struct {
	client   sendGridClient
	from     string
	fromName string
}

func NewSendGridSender(apiKey, from, fromName string) (*SendGridSender, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("sendgrid from is required")
	}
	return &SendGridSender{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}, nil
}

func (s *SendGridSender) SendOTP(ctx context.Context, toEmail string, code string, purpose domain.OTPPurpose, expiresAt time.Time) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}

	subject, body := otpMessage(code, purpose, expiresAt)
	message := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.from),
		subject,
		mail.NewEmail("", toEmail),
		body,
		"<p>"+strings.ReplaceAll(html.EscapeString(strings.TrimSpace(body)), "\n", "<br>")+"</p>",
	)
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid responded with status %d", resp.StatusCode)
	}
	return nil
}
