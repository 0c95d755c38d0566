package config

import "time"

// SessionConfig controls browser session lifetime and the cookie carrying it.
type SessionConfig interface {
	GetSessionTTL() time.Duration
	GetSessionCookieName() string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionTTL() time.Duration {
	return durationEnv("SESSION_TTL_SECONDS", 12*time.Hour)
}

func (Session) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "console_session")
}
