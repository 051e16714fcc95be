// Package config loads service configuration from the environment once at
// startup. Core packages receive values through this struct and never read
// the process environment themselves.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the API process needs to run.
type Config struct {
	// Server
	Addr string

	// Storage
	PGDSN string

	// Session tokens
	JWTSecret string
	TokenTTL  time.Duration

	// Credential hashing
	BcryptCost int

	// Registration policy
	AllowedEmailDomain string

	// Super-admin bootstrap (optional; bootstrap is skipped when unset)
	SuperAdminName     string
	SuperAdminEmail    string
	SuperAdminPassword string

	// Profile images
	UploadDir     string
	PublicBaseURL string
	MaxImageBytes int64
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:               getEnv("LSF_ADDR", ":8080"),
		PGDSN:              getEnv("LSF_PG_DSN", ""),
		JWTSecret:          getEnv("LSF_JWT_SECRET", ""),
		TokenTTL:           getDuration("LSF_JWT_TTL", 12*time.Hour),
		BcryptCost:         getInt("LSF_BCRYPT_COST", 10),
		AllowedEmailDomain: strings.ToLower(getEnv("LSF_ALLOWED_EMAIL_DOMAIN", "globaldigitsolutions.com")),
		SuperAdminName:     getEnv("LSF_SUPER_ADMIN_NAME", "Initial Super Admin"),
		SuperAdminEmail:    getEnv("LSF_SUPER_ADMIN_EMAIL", ""),
		SuperAdminPassword: getEnv("LSF_SUPER_ADMIN_PASSWORD", ""),
		UploadDir:          getEnv("LSF_UPLOAD_DIR", "uploads"),
		PublicBaseURL:      strings.TrimRight(getEnv("LSF_PUBLIC_BASE_URL", "http://localhost:8080/uploads"), "/"),
		MaxImageBytes:      getInt64("LSF_MAX_IMAGE_BYTES", 5<<20),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: LSF_JWT_SECRET is required")
	}
	if cfg.AllowedEmailDomain == "" {
		return nil, errors.New("config: LSF_ALLOWED_EMAIL_DOMAIN must not be empty")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getInt64(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
