package http

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"school-api/internal/domain"
	"school-api/internal/service"
)

const testSecret = "test-secret"

type testServer struct {
	router *gin.Engine
	users  *mockUserRepo
	otps   *mockOTPRepo
	sender *mockEmailSender
	jwtSvc *service.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	users := newMockUserRepo()
	otps := &mockOTPRepo{}
	sender := &mockEmailSender{}
	jwtSvc := service.NewJWTService(testSecret, time.Hour, "school-api", service.NewMemoryRevocationStore())
	otpSvc := service.NewOTPService(otps, 10*time.Minute)
	limiter := service.NewOTPRateLimiter(time.Minute, 100)

	authSvc := service.NewAuthService(logger, users, otpSvc, sender, jwtSvc, limiter).
		WithBcryptCost(bcrypt.MinCost)
	userSvc := service.NewUserService(logger, users)

	router := NewRouter(
		logger,
		RouterOptions{BasePath: "/api"},
		jwtSvc,
		NewAuthHandler(logger, authSvc),
		NewUserHandler(logger, userSvc),
	)

	return &testServer{
		router: router,
		users:  users,
		otps:   otps,
		sender: sender,
		jwtSvc: jwtSvc,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// seedUser crea una cuenta directamente en el repositorio.
func (s *testServer) seedUser(t *testing.T, email, password string, role domain.Role, verified bool) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := s.users.Create(t.Context(), domain.User{
		Name:         "Seed " + string(role),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	})
	require.NoError(t, err)
	if verified {
		require.NoError(t, s.users.MarkVerified(t.Context(), user.ID))
		user.IsVerified = true
	}
	return user
}

func (s *testServer) tokenFor(t *testing.T, user domain.User) string {
	t.Helper()
	token, _, err := s.jwtSvc.Issue(user)
	require.NoError(t, err)
	return token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decodeBody(t, rec)["error"].(string)
	return msg
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
