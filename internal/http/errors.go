package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"school-api/internal/service"
)

type errorResponse struct {
	status  int
	message string
}

// errorStatus traduce errores de servicio a respuestas para el cliente.
var errorStatus = []struct {
	err  error
	resp errorResponse
}{
	{service.ErrInvalidInput, errorResponse{http.StatusBadRequest, "invalid request"}},
	{service.ErrDuplicateAccount, errorResponse{http.StatusBadRequest, "Email already exists"}},
	{service.ErrInvalidOrExpiredOTP, errorResponse{http.StatusBadRequest, "Invalid or expired OTP"}},
	{service.ErrInvalidCredentials, errorResponse{http.StatusUnauthorized, "Invalid credentials"}},
	{service.ErrEmailNotVerified, errorResponse{http.StatusUnauthorized, "Email not verified"}},
	{service.ErrEmailNotFound, errorResponse{http.StatusNotFound, "Email not found"}},
	{service.ErrUserNotFound, errorResponse{http.StatusNotFound, "User not found"}},
	{service.ErrAlreadyVerified, errorResponse{http.StatusConflict, "Account already verified"}},
	{service.ErrRateLimited, errorResponse{http.StatusTooManyRequests, "too many requests"}},
	{service.ErrEmailDispatchFailed, errorResponse{http.StatusServiceUnavailable, "email delivery unavailable"}},
}

// writeError responde con el mapeo conocido o con 500 y un mensaje fijo.
func writeError(c *gin.Context, logger *zap.Logger, err error, op, fallback string) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			if e.resp.status >= http.StatusInternalServerError {
				logger.Warn(op+" failed", zap.Error(err))
			}
			c.JSON(e.resp.status, gin.H{"error": e.resp.message})
			return
		}
	}
	logger.Error(op+" failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}
