package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"school-api/internal/domain"
	"school-api/internal/service"
)

// AuthHandler expone el flujo de autenticación.
type AuthHandler struct {
	logger  *zap.Logger
	authSvc *service.AuthService
}

func NewAuthHandler(logger *zap.Logger, authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		authSvc: authSvc,
	}
}

// Register maneja POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,max=120"`
		Email       string `json:"email" binding:"required,email"`
		PhoneNumber string `json:"phone_number" binding:"omitempty,max=20"`
		Password    string `json:"password" binding:"required,min=8,max=72"`
		Role        string `json:"role" binding:"required,oneof=admin teacher parent student"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), service.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Role:        domain.Role(req.Role),
	})
	if err != nil {
		writeError(c, h.logger, err, "register", "could not register user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// VerifyRegistration maneja POST /auth/verify-registration.
func (h *AuthHandler) VerifyRegistration(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required,len=6,numeric"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid verify registration request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.authSvc.VerifyRegistrationOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(c, h.logger, err, "verify registration", "could not verify otp")
		return
	}
	c.JSON(http.StatusOK, res)
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err, "login", "could not login")
		return
	}
	c.JSON(http.StatusOK, res)
}

// ForgotPassword maneja POST /auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid forgot password request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.authSvc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.logger, err, "forgot password", "could not request password reset")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "otp_sent"})
}

// VerifyResetOTP maneja POST /auth/verify-reset-otp.
func (h *AuthHandler) VerifyResetOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required,len=6,numeric"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid verify reset otp request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.authSvc.VerifyForgotPasswordOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		writeError(c, h.logger, err, "verify reset otp", "could not verify otp")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "otp_valid"})
}

// ResetPassword maneja POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		OTP         string `json:"otp" binding:"required,len=6,numeric"`
		NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reset password request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.authSvc.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword)
	if err != nil {
		writeError(c, h.logger, err, "reset password", "could not reset password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ResendOTP maneja POST /auth/resend-otp.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req struct {
		Email   string `json:"email" binding:"required,email"`
		Purpose string `json:"purpose" binding:"required,oneof=registration forgot_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid resend otp request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	purpose, err := domain.ParseOTPPurpose(req.Purpose)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.authSvc.ResendOTP(c.Request.Context(), req.Email, purpose); err != nil {
		writeError(c, h.logger, err, "resend otp", "could not resend otp")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "otp_sent"})
}

// Logout maneja POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(authTokenKey)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": missingTokenMessage})
		return
	}
	if err := h.authSvc.Logout(c.Request.Context(), token); err != nil {
		writeError(c, h.logger, err, "logout", "could not logout")
		return
	}
	c.Status(http.StatusNoContent)
}
