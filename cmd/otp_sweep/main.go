package main

import (
	"context"
	"log"
	"time"

	"school-api/internal/config"
	"school-api/internal/db"
	"school-api/internal/repository"
	"school-api/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// otp_sweep borra los códigos expirados una sola vez; pensado para cron.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

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

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	otpSvc := service.NewOTPService(repository.NewPgOTPRepository(pool), cfg.OTPTTL)
	deleted, err := otpSvc.SweepExpired(ctx)
	if err != nil {
		logger.Fatal("otp sweep", zap.Error(err))
	}
	logger.Info("otp sweep done", zap.Int64("deleted", deleted))
}
