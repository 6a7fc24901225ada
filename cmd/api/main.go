package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"school-api/internal/config"
	"school-api/internal/db"
	"school-api/internal/email"
	apihttp "school-api/internal/http"
	"school-api/internal/repository"
	"school-api/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.DBMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	userRepo := repository.NewPgUserRepository(pool)
	otpRepo := repository.NewPgOTPRepository(pool)
	emailSender := newEmailSender(cfg, logger)

	otpLimiter := service.NewOTPRateLimiter(cfg.OTPRateWindow, cfg.OTPRateMax)
	revoked := service.NewMemoryRevocationStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory stores", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, cfg.OTPRateWindow, cfg.OTPRateMax)
			revoked = service.NewRedisRevocationStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer, revoked)
	otpSvc := service.NewOTPService(otpRepo, cfg.OTPTTL)
	authSvc := service.NewAuthService(logger, userRepo, otpSvc, emailSender, jwtSvc, otpLimiter).
		WithBcryptCost(cfg.BcryptCost)
	userSvc := service.NewUserService(logger, userRepo)

	router := apihttp.NewRouter(
		logger,
		apihttp.RouterOptions{
			BasePath:        cfg.APIBasePath,
			AllowAllOrigins: cfg.AllowAllOrigins(),
			AllowedOrigins:  cfg.CORSAllowedOrigins,
			HealthCheck:     func(ctx context.Context) error { return db.Ping(ctx, pool) },
		},
		jwtSvc,
		apihttp.NewAuthHandler(logger, authSvc),
		apihttp.NewUserHandler(logger, userSvc),
	)

	go runOTPSweeper(ctx, logger, otpSvc, cfg.OTPSweepInterval)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("base_path", cfg.APIBasePath),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

// newEmailSender prioriza SendGrid, luego SMTP; sin ninguno los envíos fallan.
func newEmailSender(cfg *config.Config, logger *zap.Logger) email.Sender {
	if cfg.SendGridAPIKey != "" {
		sender, err := email.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFrom, cfg.SendGridFromName)
		if err == nil {
			return sender
		}
		logger.Warn("sendgrid sender init failed", zap.Error(err))
	}
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err == nil {
			return sender
		}
		logger.Warn("smtp sender init failed", zap.Error(err))
	}
	logger.Warn("email sender not configured")
	return email.NewDisabledSender("email sender not configured")
}

func runOTPSweeper(ctx context.Context, logger *zap.Logger, otpSvc *service.OTPService, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := otpSvc.SweepExpired(ctx)
			if err != nil {
				logger.Warn("otp sweep failed", zap.Error(err))
				continue
			}
			if deleted > 0 {
				logger.Info("otp sweep", zap.Int64("deleted", deleted))
			}
		}
	}
}
