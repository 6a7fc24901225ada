package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"school-api/internal/service"
)

const requestIDHeader = "X-Request-ID"

// RouterOptions agrupa parámetros del router que vienen de la configuración.
type RouterOptions struct {
	BasePath        string
	AllowAllOrigins bool
	AllowedOrigins  []string
	HealthCheck     func(ctx context.Context) error
}

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	opts RouterOptions,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	userH *UserHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: request id, logging, recovery, CORS y JSON content-type.
	r.Use(
		requestIDMiddleware(),
		zapLoggerMiddleware(logger),
		gin.Recovery(),
		cors.New(corsConfig(opts)),
		jsonContentTypeMiddleware(),
	)

	r.GET("/health", healthHandler(opts.HealthCheck))

	basePath := opts.BasePath
	if basePath == "" {
		basePath = "/"
	}
	api := r.Group(basePath)
	requireAuth := JWTAuthMiddleware(logger, jwtSvc)

	auth := api.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/verify-registration", authH.VerifyRegistration)
	auth.POST("/login", authH.Login)
	auth.POST("/forgot-password", authH.ForgotPassword)
	auth.POST("/verify-reset-otp", authH.VerifyResetOTP)
	auth.POST("/reset-password", authH.ResetPassword)
	auth.POST("/resend-otp", authH.ResendOTP)
	auth.POST("/logout", requireAuth, authH.Logout)
	auth.GET("/me", requireAuth, userH.Me)

	users := api.Group("/users", requireAuth)
	users.GET("/pending", IsTeacherOrAdmin(), userH.ListPending)
	users.PATCH("/:id/approve", IsAdmin(), userH.Approve)

	return r
}

func corsConfig(opts RouterOptions) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", requestIDHeader)
	cfg.ExposeHeaders = []string{requestIDHeader}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions}
	if opts.AllowAllOrigins || len(opts.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = opts.AllowedOrigins
	}
	return cfg
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// requestIDMiddleware propaga o genera X-Request-ID.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDHeader)),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
