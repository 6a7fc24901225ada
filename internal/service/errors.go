package service

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrDuplicateAccount     = errors.New("email already exists")
	ErrInvalidOrExpiredOTP  = errors.New("invalid or expired otp")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrEmailNotFound        = errors.New("email not found")
	ErrEmailDispatchFailed  = errors.New("email send failed")
	ErrAlreadyVerified      = errors.New("account already verified")
	ErrRateLimited          = errors.New("rate limited")
	ErrUserNotFound         = errors.New("user not found")
	ErrTokenInvalid         = errors.New("token invalid")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenRevoked         = errors.New("token revoked")
	ErrServiceNotConfigured = errors.New("service not configured")
)
