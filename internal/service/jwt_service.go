package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"school-api/internal/domain"
)

const defaultSessionTTL = 7 * 24 * time.Hour

// JWTService emite y valida tokens de sesión.
type JWTService struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	revoked RevocationStore
	now     func() time.Time
}

type Claims struct {
	UserID int64       `json:"id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func NewJWTService(secret string, ttl time.Duration, issuer string, revoked RevocationStore) *JWTService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "school-api"
	}
	if revoked == nil {
		revoked = NewMemoryRevocationStore()
	}
	return &JWTService{
		secret:  []byte(secret),
		ttl:     ttl,
		issuer:  issuer,
		revoked: revoked,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Issue firma un token HS256 para el usuario.
func (s *JWTService) Issue(user domain.User) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, ErrServiceNotConfigured
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate comprueba revocación, firma y expiración.
func (s *JWTService) Validate(ctx context.Context, token string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrServiceNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrTokenInvalid
	}
	revoked, err := s.revoked.Contains(ctx, token)
	if err != nil {
		return Claims{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Claims{}, ErrTokenRevoked
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return Claims{}, err
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

// Revoke agrega el token a la lista de revocados por el tiempo que le queda.
func (s *JWTService) Revoke(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrTokenInvalid
	}
	ttl := s.ttl
	if claims, err := s.parseToken(token); err == nil && claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Time.Sub(s.now()); remaining > 0 {
			ttl = remaining
		}
	}
	return s.revoked.Add(ctx, token, ttl)
}

func (s *JWTService) parseToken(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims Claims) bool {
	if claims.UserID <= 0 {
		return false
	}
	if claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return false
	}
	if !claims.Role.Valid() {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
