package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/liamashdown/polyview/internal/secrets"
	"github.com/sirupsen/logrus"
)

// CacheBackend selects where upstream responses are cached between renders
type CacheBackend string

const (
	CacheBackendNone   CacheBackend = "none"
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Environment string
	LogLevel    string

	// HTTP
	HTTPPort   int
	HealthPort int

	// Gamma API
	GammaAPIBaseURL string
	GammaAPIRPS     float64
	GammaAPITimeout time.Duration

	// Pages
	PageLimit           int
	HomeCompetitiveOnly bool

	// Cache
	CacheBackend  CacheBackend
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment:         getEnv("ENVIRONMENT", "production"),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", "info")),
		HTTPPort:            getEnvInt("HTTP_PORT", 3000),
		HealthPort:          getEnvInt("HEALTH_PORT", 8080),
		GammaAPIBaseURL:     strings.TrimRight(getEnv("GAMMA_API_BASE_URL", "https://gamma-api.polymarket.com"), "/"),
		GammaAPIRPS:         getEnvFloat("GAMMA_API_RPS", 10.0),
		GammaAPITimeout:     time.Duration(getEnvInt("GAMMA_API_TIMEOUT_SECS", 15)) * time.Second,
		PageLimit:           getEnvInt("PAGE_LIMIT", 50),
		HomeCompetitiveOnly: getEnvBool("HOME_COMPETITIVE_ONLY", true),
		CacheBackend:        CacheBackend(strings.ToLower(getEnv("CACHE_BACKEND", "none"))),
		CacheTTL:            time.Duration(getEnvInt("CACHE_TTL_SECS", 30)) * time.Second,
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       secrets.GetOptionalSecret("REDIS_PASSWORD", ""),
		RedisDB:             getEnvInt("REDIS_DB", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	if c.GammaAPIBaseURL == "" {
		return fmt.Errorf("GAMMA_API_BASE_URL is required")
	}
	if !strings.HasPrefix(c.GammaAPIBaseURL, "http://") && !strings.HasPrefix(c.GammaAPIBaseURL, "https://") {
		return fmt.Errorf("GAMMA_API_BASE_URL must be an http(s) URL: %s", c.GammaAPIBaseURL)
	}
	if c.GammaAPIRPS <= 0 {
		return fmt.Errorf("GAMMA_API_RPS must be positive")
	}
	if c.GammaAPITimeout <= 0 {
		return fmt.Errorf("GAMMA_API_TIMEOUT_SECS must be positive")
	}

	if c.PageLimit < 1 || c.PageLimit > 100 {
		return fmt.Errorf("PAGE_LIMIT must be between 1 and 100")
	}

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("HEALTH_PORT out of range: %d", c.HealthPort)
	}
	if c.HTTPPort == c.HealthPort {
		return fmt.Errorf("HTTP_PORT and HEALTH_PORT must differ")
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %s", c.LogLevel)
	}

	switch c.CacheBackend {
	case CacheBackendNone, CacheBackendMemory:
	case CacheBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("invalid CACHE_BACKEND: %s (must be none, memory, or redis)", c.CacheBackend)
	}
	if c.CacheBackend != CacheBackendNone && c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SECS must be positive when caching is enabled")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
