package domain

import (
	"fmt"
	"time"
)

// OTPPurpose identifica el flujo al que pertenece un código.
type OTPPurpose string

const (
	OTPPurposeRegistration   OTPPurpose = "registration"
	OTPPurposeForgotPassword OTPPurpose = "forgot_password"
)

func (p OTPPurpose) Valid() bool {
	switch p {
	case OTPPurposeRegistration, OTPPurposeForgotPassword:
		return true
	default:
		return false
	}
}

// ParseOTPPurpose convierte un string externo al tipo cerrado.
func ParseOTPPurpose(s string) (OTPPurpose, error) {
	p := OTPPurpose(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown otp purpose %q", s)
	}
	return p, nil
}

type OTP struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Code      string     `json:"-"`
	Purpose   OTPPurpose `json:"purpose"`
	ExpiresAt time.Time  `json:"expires_at"`
	IsUsed    bool       `json:"is_used"`
	CreatedAt time.Time  `json:"created_at"`
}
