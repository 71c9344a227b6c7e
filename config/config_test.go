package config

import "testing"

func setRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
	// Clear anything the host environment may carry.
	for _, key := range []string{
		"PORT", "MONGO_DB", "UPLOAD_DIR", "CORS_ALLOWED_ORIGINS",
		"RATE_LIMIT_PER_MINUTE", "RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.MongoDB != "bikemart" {
		t.Fatalf("database = %q", cfg.MongoDB)
	}
	if cfg.UploadDir != "uploads" {
		t.Fatalf("upload dir = %q", cfg.UploadDir)
	}
	if cfg.RateLimitPerMinute != 120 || cfg.RateLimitBurst != 30 {
		t.Fatalf("rate limits = %d/%d", cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("cors origins = %v", cfg.CORSOrigins)
	}
	if cfg.HTTPAddress() != ":8000" {
		t.Fatalf("address = %q", cfg.HTTPAddress())
	}
}

func TestLoadRequiresMongoURI(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := Load(); err == nil {
		t.Fatal("load succeeded without MONGO_URI")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("load succeeded without JWT_SECRET")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins = %v", cfg.CORSOrigins)
	}
	if cfg.RateLimitPerMinute != 60 {
		t.Fatalf("rate limit = %d", cfg.RateLimitPerMinute)
	}
}

func TestIntEnvIgnoresGarbage(t *testing.T) {
	setRequired(t)
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("RATE_LIMIT_BURST", "-5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RateLimitPerMinute != 120 || cfg.RateLimitBurst != 30 {
		t.Fatalf("rate limits = %d/%d", cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	}
}
