package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOTPRateKeyPrefix = "auth:otp:rl:"

// El primer INCR de la ventana fija el PEXPIRE; la ventana es fija, no deslizante.
const redisOTPAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// redisOTPRateLimiter comparte el presupuesto de OTP entre instancias.
type redisOTPRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
}

func NewRedisOTPRateLimiter(client redis.UniversalClient, window time.Duration, max int) OTPRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisOTPRateLimiter{
		client: client,
		window: window,
		max:    max,
	}
}

// Allow usa la misma clave que el limitador en memoria (propósito y email sin
// cambiar mayúsculas) y falla abierto ante errores de redis.
func (l *redisOTPRateLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key, ok := rateLimitKey(key)
	if !ok {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	windowMillis := l.window.Milliseconds()
	if windowMillis <= 0 {
		windowMillis = 1
	}
	count, err := l.client.Eval(ctx, redisOTPAllowScript, []string{redisOTPRateKeyPrefix + key}, windowMillis).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
