package config

import (
	"os"
	"strconv"
	"time"
)

// BackendConfig describes how the console reaches the asset management API.
type BackendConfig interface {
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
	GetRateLimitPerSecond() int
	GetRateLimitBurst() int
}

type Backend struct{}

var _ BackendConfig = Backend{}

// GetAPIBaseURL returns the backend REST base path, including the /api prefix.
func (Backend) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8080/api")
}

func (Backend) GetHTTPTimeout() time.Duration {
	return durationEnv("HTTP_TIMEOUT_SECONDS", 30*time.Second)
}

func (Backend) GetRateLimitPerSecond() int {
	return intEnv("RATE_LIMIT_PER_SECOND", 20)
}

func (Backend) GetRateLimitBurst() int {
	return intEnv("RATE_LIMIT_BURST", 40)
}

func intEnv(envVar string, defaultValue int) int {
	raw := os.Getenv(envVar)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	seconds := intEnv(envVar, 0)
	if seconds <= 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
