package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"school-api/internal/domain"
	"school-api/internal/repository"
)

const defaultOTPTTL = 10 * time.Minute

// OTPService administra el ciclo de vida de los códigos de un solo uso.
type OTPService struct {
	otps repository.OTPRepository
	ttl  time.Duration
	now  func() time.Time
}

func NewOTPService(otps repository.OTPRepository, ttl time.Duration) *OTPService {
	if ttl <= 0 {
		ttl = defaultOTPTTL
	}
	return &OTPService{
		otps: otps,
		ttl:  ttl,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// GenerateOTPCode devuelve un código decimal de 6 dígitos con crypto/rand.
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue persiste un código nuevo. El código devuelto es el único lugar donde
// viaja en claro hacia el dispatcher.
func (s *OTPService) Issue(ctx context.Context, email string, purpose domain.OTPPurpose) (domain.OTP, error) {
	if !purpose.Valid() {
		return domain.OTP{}, fmt.Errorf("%w: otp purpose %q", ErrInvalidInput, purpose)
	}
	code, err := GenerateOTPCode()
	if err != nil {
		return domain.OTP{}, fmt.Errorf("generate otp: %w", err)
	}
	otp, err := s.otps.Create(ctx, domain.OTP{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: s.now().Add(s.ttl),
	})
	if err != nil {
		return domain.OTP{}, fmt.Errorf("store otp: %w", err)
	}
	return otp, nil
}

// TryConsume marca el código como usado si es el vigente; a lo sumo una
// llamada concurrente obtiene true para el mismo código.
func (s *OTPService) TryConsume(ctx context.Context, email, code string, purpose domain.OTPPurpose) (bool, error) {
	if !purpose.Valid() || !isValidOTPCode(code) {
		return false, nil
	}
	return s.otps.Consume(ctx, email, code, purpose, s.now())
}

func (s *OTPService) CheckOnly(ctx context.Context, email, code string, purpose domain.OTPPurpose) (bool, error) {
	if !purpose.Valid() || !isValidOTPCode(code) {
		return false, nil
	}
	return s.otps.Check(ctx, email, code, purpose, s.now())
}

// SweepExpired borra códigos expirados. Es idempotente.
func (s *OTPService) SweepExpired(ctx context.Context) (int64, error) {
	return s.otps.DeleteExpired(ctx, s.now())
}

func isValidOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
