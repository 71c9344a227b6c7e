package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	UploadDir   string
	CORSOrigins []string

	RateLimitPerMinute int
	RateLimitBurst     int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load reads configuration from the environment. Startup must fail when the
// store URI or the token signing secret is missing; there is no fallback
// secret.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "8000"),
		MongoURI:    strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDB:     fallback(os.Getenv("MONGO_DB"), "bikemart"),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		UploadDir:   fallback(os.Getenv("UPLOAD_DIR"), "uploads"),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),

		RateLimitPerMinute: intEnv("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:     intEnv("RATE_LIMIT_BURST", 30),

		SMTPHost:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:     intEnv("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     strings.TrimSpace(os.Getenv("SMTP_FROM")),
	}

	if cfg.MongoURI == "" {
		return Config{}, errors.New("MONGO_URI is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return ":" + c.Port
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func intEnv(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return def
	}
	return value
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
