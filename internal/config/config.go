package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config - настройки сервиса, собранные из переменных окружения
type Config struct {
	Port        string `env:"PORT" envDefault:"3000"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	BodyLimitMB int    `env:"BODY_LIMIT_MB" envDefault:"10"`

	// Сессия несет подтвержденный телефон, поэтому cookie должна ходить cross-origin:
	// AllowCredentials требует явного списка origins.
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"http://localhost:3000, http://localhost:8080"`

	Session SessionConfig
	Sanity  SanityConfig
	SMS     SMSConfig
	OTP     OTPConfig
	Zitadel ZitadelConfig
}

// SessionConfig - cookie сессии
type SessionConfig struct {
	TTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	SameSite     string        `env:"SESSION_COOKIE_SAMESITE" envDefault:"Lax"`
}

// SanityConfig - доступ к Sanity (документное хранилище CMS)
type SanityConfig struct {
	ProjectID  string `env:"SANITY_PROJECT_ID,notEmpty"`
	Dataset    string `env:"SANITY_DATASET,notEmpty"`
	Token      string `env:"SANITY_TOKEN"`
	APIVersion string `env:"SANITY_API_VERSION" envDefault:"2023-01-01"`
	UseCDN     bool   `env:"SANITY_USE_CDN" envDefault:"false"`
}

// SMSConfig - доступ к Twilio
type SMSConfig struct {
	AccountSID          string `env:"TWILIO_ACCOUNT_SID,notEmpty"`
	AuthToken           string `env:"TWILIO_AUTH_TOKEN,notEmpty"`
	From                string `env:"TWILIO_FROM"`
	MessagingServiceSID string `env:"TWILIO_MESSAGING_SERVICE_SID"`
	MessageTemplate     string `env:"SMS_MESSAGE_TEMPLATE" envDefault:"Your verification code: %s"`
}

// OTPConfig - параметры одноразовых кодов
type OTPConfig struct {
	TTL           time.Duration `env:"OTP_TTL" envDefault:"5m"`
	SweepEnabled  bool          `env:"OTP_SWEEP_ENABLED" envDefault:"true"`
	SweepSchedule string        `env:"OTP_SWEEP_SCHEDULE" envDefault:"*/10 * * * *"`
}

// ZitadelConfig - опциональное зеркалирование подтвержденных телефонов в Zitadel
type ZitadelConfig struct {
	Domain  string `env:"ZITADEL_DOMAIN"`
	OrgID   string `env:"ZITADEL_ORG_ID"`
	PAT     string `env:"ACCES_TOKEN_SERVICE_ACCOUNT"`
	KeyPath string `env:"ZITADEL_KEY_PATH"`
}

// Enabled возвращает true, если зеркалирование настроено
func (z ZitadelConfig) Enabled() bool {
	return z.Domain != "" && z.OrgID != "" && (z.PAT != "" || z.KeyPath != "")
}

// Load читает конфигурацию из окружения
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.Sanity.APIVersion = strings.TrimPrefix(cfg.Sanity.APIVersion, "v")

	if cfg.SMS.From == "" && cfg.SMS.MessagingServiceSID == "" {
		return nil, fmt.Errorf("either TWILIO_FROM or TWILIO_MESSAGING_SERVICE_SID must be set")
	}
	if !strings.Contains(cfg.SMS.MessageTemplate, "%s") {
		return nil, fmt.Errorf("SMS_MESSAGE_TEMPLATE must contain %%s placeholder for the code")
	}
	if cfg.OTP.TTL <= 0 {
		return nil, fmt.Errorf("OTP_TTL must be positive")
	}
	if cfg.OTP.SweepEnabled && cfg.OTP.SweepSchedule == "" {
		return nil, fmt.Errorf("OTP_SWEEP_SCHEDULE is required when OTP_SWEEP_ENABLED is true")
	}

	if cfg.CORSAllowOrigins == "" || strings.Contains(cfg.CORSAllowOrigins, "*") {
		return nil, fmt.Errorf("CORS_ALLOW_ORIGINS must list explicit origins: session cookies are sent with credentials")
	}

	switch strings.ToLower(cfg.Session.SameSite) {
	case "lax", "strict":
	case "none":
		if !cfg.Session.CookieSecure {
			return nil, fmt.Errorf("SESSION_COOKIE_SAMESITE=None requires SESSION_COOKIE_SECURE=true")
		}
	default:
		return nil, fmt.Errorf("invalid SESSION_COOKIE_SAMESITE value %q", cfg.Session.SameSite)
	}

	return &cfg, nil
}
