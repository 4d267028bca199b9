package config

import (
	"os"
	"time"
)

// Config captures everything the shell needs from the environment so main
// stays lean.
type Config struct {
	Addr string

	// IdentityProvider selects the identity adapter: "local" or "firebase".
	IdentityProvider string

	// ProfileStore selects the profile store backend: "memory", "redis",
	// "postgres", or "firestore".
	ProfileStore string

	RedisURL    string
	PostgresDSN string

	// FirebaseCredentials is the service account JSON path; empty means the
	// GOOGLE_APPLICATION_CREDENTIALS default chain.
	FirebaseCredentials string
	FirebaseProjectID   string

	// SessionSigningKey signs the session cookie tokens.
	SessionSigningKey string
	SessionTTL        time.Duration

	// DevEmail and DevPassword seed an account into the local identity
	// provider so the shell is usable without Firebase. Ignored when the
	// provider is "firebase".
	DevEmail    string
	DevPassword string
}

// FromEnv builds a Config from environment variables with dev-friendly
// defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:                getenv("VITRIN_ADDR", ":8080"),
		IdentityProvider:    getenv("VITRIN_IDENTITY_PROVIDER", "local"),
		ProfileStore:        getenv("VITRIN_PROFILE_STORE", "memory"),
		RedisURL:            os.Getenv("VITRIN_REDIS_URL"),
		PostgresDSN:         os.Getenv("VITRIN_POSTGRES_DSN"),
		FirebaseCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirebaseProjectID:   os.Getenv("VITRIN_FIREBASE_PROJECT"),
		SessionTTL:          24 * time.Hour,
		DevEmail:            os.Getenv("VITRIN_DEV_EMAIL"),
		DevPassword:         os.Getenv("VITRIN_DEV_PASSWORD"),
	}

	cfg.SessionSigningKey = os.Getenv("VITRIN_SESSION_KEY")
	if cfg.SessionSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.SessionSigningKey = "dev-secret-key-change-in-production"
	}

	if ttl := os.Getenv("VITRIN_SESSION_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.SessionTTL = d
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
