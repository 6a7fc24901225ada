package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"school-api/internal/service"
)

// UserHandler mantiene dependencias para endpoints de cuentas.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
	}
}

// Me maneja GET /auth/me.
func (h *UserHandler) Me(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": missingTokenMessage})
		return
	}
	user, err := h.userServ.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, h.logger, err, "get current user", "could not load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Approve maneja PATCH /users/:id/approve.
func (h *UserHandler) Approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.userServ.Approve(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEmailNotVerified) {
			c.JSON(http.StatusConflict, gin.H{"error": "user has not verified the email"})
			return
		}
		writeError(c, h.logger, err, "approve user", "could not approve user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListPending maneja GET /users/pending.
func (h *UserHandler) ListPending(c *gin.Context) {
	users, err := h.userServ.ListPendingApproval(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "list pending users", "could not list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
