package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"school-api/internal/domain"
	"school-api/internal/email"
	"school-api/internal/repository"
)

// AuthService orquesta registro, verificación por OTP, login y reseteo de
// contraseña.
type AuthService struct {
	logger     *zap.Logger
	users      repository.UserRepository
	otps       *OTPService
	sender     email.Sender
	sessions   *JWTService
	otpLimiter OTPRateLimiter
	bcryptCost int
}

func NewAuthService(
	logger *zap.Logger,
	users repository.UserRepository,
	otps *OTPService,
	sender email.Sender,
	sessions *JWTService,
	otpLimiter OTPRateLimiter,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		logger:     logger,
		users:      users,
		otps:       otps,
		sender:     sender,
		sessions:   sessions,
		otpLimiter: otpLimiter,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithBcryptCost ajusta el costo de bcrypt; valores fuera de rango se ignoran.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		s.bcryptCost = cost
	}
	return s
}

type RegisterInput struct {
	Name        string
	Email       string
	PhoneNumber string
	Password    string
	Role        domain.Role
}

// AuthResult es la respuesta de los flujos que emiten sesión.
type AuthResult struct {
	User      domain.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Register crea la cuenta sin verificar y envía el OTP de registro. Si el
// envío falla, la cuenta y el código ya quedaron persistidos.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.users == nil || s.otps == nil {
		return domain.User{}, ErrServiceNotConfigured
	}

	emailAddr := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if emailAddr == "" || name == "" || input.Password == "" || !input.Role.Valid() {
		return domain.User{}, ErrInvalidInput
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return domain.User{}, ErrDuplicateAccount
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return domain.User{}, err
	}

	var phone *string
	if p := strings.TrimSpace(input.PhoneNumber); p != "" {
		phone = &p
	}

	user, err := s.users.Create(ctx, domain.User{
		Name:         name,
		Email:        emailAddr,
		PhoneNumber:  phone,
		PasswordHash: hash,
		Role:         input.Role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.User{}, ErrDuplicateAccount
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	if err := s.issueAndSend(ctx, user.Email, domain.OTPPurposeRegistration); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// VerifyRegistrationOTP consume el código, marca la cuenta como verificada y
// emite una sesión. La aprobación administrativa no se exige aquí.
//
// Consumo y verificación no comparten transacción: si MarkVerified falla el
// código ya quedó gastado y la cuenta sigue sin verificar, así que el cliente
// debe pedir otro con ResendOTP.
func (s *AuthService) VerifyRegistrationOTP(ctx context.Context, emailAddr, code string) (AuthResult, error) {
	if s.users == nil || s.otps == nil || s.sessions == nil {
		return AuthResult{}, ErrServiceNotConfigured
	}

	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidOrExpiredOTP
		}
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.otps.TryConsume(ctx, emailAddr, code, domain.OTPPurposeRegistration)
	if err != nil {
		return AuthResult{}, fmt.Errorf("consume otp: %w", err)
	}
	if !ok {
		return AuthResult{}, ErrInvalidOrExpiredOTP
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return AuthResult{}, fmt.Errorf("mark verified: %w", err)
	}
	user.IsVerified = true

	return s.startSession(user)
}

// Login no distingue entre email inexistente y contraseña incorrecta. Una
// cuenta sin verificar sólo se reporta como tal cuando la contraseña coincide.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (AuthResult, error) {
	if s.users == nil || s.sessions == nil {
		return AuthResult{}, ErrServiceNotConfigured
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if user.PasswordHash == "" {
		return AuthResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return AuthResult{}, ErrEmailNotVerified
	}

	return s.startSession(user)
}

func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	if s.users == nil || s.otps == nil {
		return ErrServiceNotConfigured
	}

	emailAddr = normalizeEmail(emailAddr)
	if _, err := s.users.GetByEmail(ctx, emailAddr); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmailNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if !s.allowOTP(ctx, emailAddr, domain.OTPPurposeForgotPassword) {
		return ErrRateLimited
	}
	return s.issueAndSend(ctx, emailAddr, domain.OTPPurposeForgotPassword)
}

// VerifyForgotPasswordOTP sólo comprueba el código; no lo consume.
func (s *AuthService) VerifyForgotPasswordOTP(ctx context.Context, emailAddr, code string) error {
	if s.otps == nil {
		return ErrServiceNotConfigured
	}

	ok, err := s.otps.CheckOnly(ctx, normalizeEmail(emailAddr), strings.TrimSpace(code), domain.OTPPurposeForgotPassword)
	if err != nil {
		return fmt.Errorf("check otp: %w", err)
	}
	if !ok {
		return ErrInvalidOrExpiredOTP
	}
	return nil
}

// ResetPassword consume el OTP de recuperación antes de reemplazar el hash.
func (s *AuthService) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) (domain.User, error) {
	if s.users == nil || s.otps == nil {
		return domain.User{}, ErrServiceNotConfigured
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || newPassword == "" {
		return domain.User{}, ErrInvalidInput
	}

	ok, err := s.otps.TryConsume(ctx, emailAddr, strings.TrimSpace(code), domain.OTPPurposeForgotPassword)
	if err != nil {
		return domain.User{}, fmt.Errorf("consume otp: %w", err)
	}
	if !ok {
		return domain.User{}, ErrInvalidOrExpiredOTP
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.UpdatePassword(ctx, emailAddr, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrEmailNotFound
		}
		return domain.User{}, fmt.Errorf("update password: %w", err)
	}
	return user, nil
}

// ResendOTP reemite un código para una cuenta existente.
func (s *AuthService) ResendOTP(ctx context.Context, emailAddr string, purpose domain.OTPPurpose) error {
	if s.users == nil || s.otps == nil {
		return ErrServiceNotConfigured
	}
	if !purpose.Valid() {
		return ErrInvalidInput
	}

	emailAddr = normalizeEmail(emailAddr)
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmailNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if purpose == domain.OTPPurposeRegistration && user.IsVerified {
		return ErrAlreadyVerified
	}

	if !s.allowOTP(ctx, emailAddr, purpose) {
		return ErrRateLimited
	}
	return s.issueAndSend(ctx, emailAddr, purpose)
}

// Logout revoca el token presentado.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.sessions == nil {
		return ErrServiceNotConfigured
	}
	return s.sessions.Revoke(ctx, token)
}

func (s *AuthService) issueAndSend(ctx context.Context, emailAddr string, purpose domain.OTPPurpose) error {
	otp, err := s.otps.Issue(ctx, emailAddr, purpose)
	if err != nil {
		return err
	}
	if s.sender == nil {
		return ErrEmailDispatchFailed
	}
	if err := s.sender.SendOTP(ctx, emailAddr, otp.Code, purpose, otp.ExpiresAt); err != nil {
		s.logger.Warn("send otp failed",
			zap.Error(err),
			zap.String("email", emailAddr),
			zap.String("purpose", string(purpose)),
		)
		return ErrEmailDispatchFailed
	}
	return nil
}

func (s *AuthService) allowOTP(ctx context.Context, emailAddr string, purpose domain.OTPPurpose) bool {
	if s.otpLimiter == nil {
		return true
	}
	return s.otpLimiter.Allow(ctx, otpRateKey(emailAddr, string(purpose)))
}

func (s *AuthService) startSession(user domain.User) (AuthResult, error) {
	token, expiresAt, err := s.sessions.Issue(user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrInvalidInput
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashBytes), nil
}

// normalizeEmail sólo recorta espacios: el email distingue mayúsculas.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
