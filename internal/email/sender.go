package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"school-api/internal/domain"
)

// Sender entrega un código OTP a una dirección de correo.
type Sender interface {
	SendOTP(ctx context.Context, toEmail string, code string, purpose domain.OTPPurpose, expiresAt time.Time) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendOTP(_ context.Context, _ string, _ string, _ domain.OTPPurpose, _ time.Time) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}

// otpMessage arma asunto y cuerpo según el propósito del código.
func otpMessage(code string, purpose domain.OTPPurpose, expiresAt time.Time) (string, string) {
	subject := "Verification code"
	intro := "Use this code to verify your account"
	if purpose == domain.OTPPurposeForgotPassword {
		subject = "Password reset code"
		intro = "Use this code to reset your password"
	}
	body := fmt.Sprintf(
		"%s: %s\nIt expires at %s UTC.\nIf you did not request it, ignore this email.\n",
		intro,
		code,
		expiresAt.UTC().Format(time.RFC3339),
	)
	return subject, body
}
