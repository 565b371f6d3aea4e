package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/securepulses/gatekeeper/internal/models"
)

type Config struct {
	Server ServerConfig
	Email  EmailConfig
	Gate   GateConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
}

type EmailConfig struct {
	AWSRegion        string
	FromAddress      string
	AdminAddress     string
	SendConfirmation bool
	DispatchTimeout  time.Duration
}

// GateConfig holds every gatekeeping threshold as a named value. The form
// variants this replaces each hard-coded their own numbers; here there is one
// canonical policy set, injected everywhere.
type GateConfig struct {
	MinFillTime   time.Duration
	MaxFillTime   time.Duration
	MaxAttempts   int
	Window        time.Duration
	MinAttemptGap time.Duration
	SweepInterval time.Duration

	MaxBodyBytes           int64
	PerIPRequestsPerMinute int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: parseList(getEnv("TRUSTED_PROXIES", "")),
		},
		Email: EmailConfig{
			AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
			FromAddress:      getEnv("EMAIL_FROM_ADDRESS", ""),
			AdminAddress:     getEnv("EMAIL_ADMIN_ADDRESS", ""),
			SendConfirmation: getEnvAsBool("EMAIL_SEND_CONFIRMATION", true),
			DispatchTimeout:  getEnvAsDuration("EMAIL_DISPATCH_TIMEOUT", 10*time.Second),
		},
		Gate: GateConfig{
			MinFillTime:            getEnvAsDuration("GATE_MIN_FILL_TIME", 3*time.Second),
			MaxFillTime:            getEnvAsDuration("GATE_MAX_FILL_TIME", 30*time.Minute),
			MaxAttempts:            getEnvAsInt("GATE_MAX_ATTEMPTS", 3),
			Window:                 getEnvAsDuration("GATE_WINDOW", 15*time.Minute),
			MinAttemptGap:          getEnvAsDuration("GATE_MIN_ATTEMPT_GAP", 60*time.Second),
			SweepInterval:          getEnvAsDuration("GATE_SWEEP_INTERVAL", 10*time.Minute),
			MaxBodyBytes:           int64(getEnvAsInt("GATE_MAX_BODY_BYTES", 10*1024)),
			PerIPRequestsPerMinute: getEnvAsInt("GATE_PER_IP_RPM", 10),
		},
	}

	// The dispatcher fails closed without a configured sender. Surfacing this
	// at startup beats a generic failure on the first real submission.
	if cfg.Email.FromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required: %w", models.ErrConfiguration)
	}
	if cfg.Email.AdminAddress == "" {
		return nil, fmt.Errorf("EMAIL_ADMIN_ADDRESS is required: %w", models.ErrConfiguration)
	}

	if cfg.Gate.MaxAttempts < 1 {
		return nil, fmt.Errorf("GATE_MAX_ATTEMPTS must be at least 1: %w", models.ErrConfiguration)
	}
	if cfg.Gate.MinFillTime >= cfg.Gate.MaxFillTime {
		return nil, fmt.Errorf("GATE_MIN_FILL_TIME must be below GATE_MAX_FILL_TIME: %w", models.ErrConfiguration)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		origins := parseList(getEnv("ALLOWED_ORIGINS", ""))
		if origins == nil {
			return []string{} // Default to no origins in production
		}
		return origins
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite default
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
}
