package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort           string        `env:"HTTP_PORT" envDefault:"8080"`
	APIBasePath        string        `env:"API_BASE_PATH" envDefault:"/api"`
	DatabaseURL        string        `env:"DATABASE_URL,required,notEmpty"`
	DBMigrate          bool          `env:"DB_MIGRATE" envDefault:"true"`
	JWTSecret          string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL             time.Duration `env:"JWT_TTL" envDefault:"168h"`
	JWTIssuer          string        `env:"JWT_ISSUER" envDefault:"school-api"`
	BcryptCost         int           `env:"BCRYPT_COST" envDefault:"10"`
	OTPTTL             time.Duration `env:"OTP_TTL" envDefault:"10m"`
	OTPSweepInterval   time.Duration `env:"OTP_SWEEP_INTERVAL" envDefault:"15m"`
	OTPRateWindow      time.Duration `env:"OTP_RATE_WINDOW" envDefault:"10m"`
	OTPRateMax         int           `env:"OTP_RATE_MAX" envDefault:"3"`
	SMTPHost           string        `env:"SMTP_HOST"`
	SMTPPort           int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser           string        `env:"SMTP_USER"`
	SMTPPass           string        `env:"SMTP_PASS"`
	SMTPFrom           string        `env:"SMTP_FROM"`
	SMTPFromName       string        `env:"SMTP_FROM_NAME"`
	SMTPUseTLS         bool          `env:"SMTP_USE_TLS" envDefault:"false"`
	SendGridAPIKey     string        `env:"SENDGRID_API_KEY"`
	SendGridFrom       string        `env:"SENDGRID_FROM"`
	SendGridFromName   string        `env:"SENDGRID_FROM_NAME" envDefault:"School"`
	RedisAddr          string        `env:"REDIS_ADDR"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	RedisDB            int           `env:"REDIS_DB" envDefault:"0"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.APIBasePath = "/" + strings.Trim(strings.TrimSpace(cfg.APIBasePath), "/")
	return &cfg, nil
}

// AllowAllOrigins indica si CORS debe aceptar cualquier origen.
func (c *Config) AllowAllOrigins() bool {
	for _, o := range c.CORSAllowedOrigins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return len(c.CORSAllowedOrigins) == 0
}
