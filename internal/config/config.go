package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultOfficerSignupKey is the key officials use at signup when
// OFFICER_SIGNUP_KEY is not set.
const DefaultOfficerSignupKey = "RAILMADAD_OFFICER_2026"

// Config is the API server configuration read from the environment.
type Config struct {
	Port                 int
	DBDSN                string
	RedisURL             string
	JWTAccessTTL         time.Duration
	JWTSecret            string
	AllowOrigins         []string
	RateLimitPublic      RateLimitConfig
	RateLimitAuth        RateLimitConfig
	OfficerSignupKey     string
	AIClassifierURL      string
	EscalationWebhookURL string
	ShutdownTimeout      time.Duration
	LogLevel             string
}

// RateLimitConfig is a token bucket definition.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load reads .env (if present) and the environment, applying defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 {
		return nil, errors.New("PORT is invalid")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is required")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET must be at least 32 characters")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	shutdown, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout = shutdown

	cfg.AllowOrigins = splitList(getEnv("ALLOW_ORIGINS", ""))

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 2, Burst: 10}

	cfg.OfficerSignupKey = strings.TrimSpace(getEnv("OFFICER_SIGNUP_KEY", DefaultOfficerSignupKey))
	if cfg.OfficerSignupKey == "" {
		cfg.OfficerSignupKey = DefaultOfficerSignupKey
	}
	cfg.AIClassifierURL = strings.TrimSpace(getEnv("AI_CLASSIFIER_URL", ""))
	cfg.EscalationWebhookURL = strings.TrimSpace(getEnv("ESCALATION_WEBHOOK_URL", ""))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info")))

	return cfg, nil
}

// Client is the terminal client configuration.
type Client struct {
	APIURL      string
	SessionFile string
	Timeout     time.Duration
}

// LoadClient reads the client settings. SessionFile is empty when the
// default location should be used.
func LoadClient() (*Client, error) {
	_ = godotenv.Load()

	timeout, err := parseDurationEnv("RAILMADAD_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{
		APIURL:      strings.TrimSpace(getEnv("RAILMADAD_API_URL", "http://localhost:8080")),
		SessionFile: strings.TrimSpace(getEnv("RAILMADAD_SESSION_FILE", "")),
		Timeout:     timeout,
	}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur <= 0 {
		return 0, errors.New(key + " is invalid")
	}
	return dur, nil
}
