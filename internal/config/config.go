package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Signing keys for access and refresh tokens are
// distinct secrets on purpose: a token signed with one must never validate
// against the other.
type Config struct {
	Env                string        // application environment (e.g. "dev", "prod")
	Port               string        // HTTP port to listen on
	DBUser             string        // database username
	DBPass             string        // database password (optional)
	DBHost             string        // database host address
	DBPort             string        // database port number
	DBName             string        // database name
	AccessTokenSecret  string        // secret signing short-lived access tokens
	RefreshTokenSecret string        // secret signing long-lived refresh tokens
	EncryptionKey      string        // hex-encoded 32-byte AES key for PII field encryption
	GoogleClientID     string        // OAuth client id the Google ID tokens must be issued for
	AccessTTL          time.Duration // access token time-to-live
	RefreshTTL         time.Duration // refresh token time-to-live
	BcryptCost         int           // bcrypt cost for password hashing
	LockThreshold      int           // failed logins before the account locks
	LockDuration       time.Duration // how long a locked account refuses logins
}

// Load reads configuration from the environment. Required variables are
// enforced by must() and missing values exit with a fatal log message;
// lockout tuning is optional and falls back to the platform defaults.
func Load() Config {
	return Config{
		Env:                must("APP_ENV"),
		Port:               must("APP_PORT"),
		DBUser:             must("DB_USER"),
		DBPass:             os.Getenv("DB_PASS"),
		DBHost:             must("DB_HOST"),
		DBPort:             must("DB_PORT"),
		DBName:             must("DB_NAME"),
		AccessTokenSecret:  must("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: must("REFRESH_TOKEN_SECRET"),
		EncryptionKey:      must("ENCRYPTION_KEY"),
		GoogleClientID:     must("GOOGLE_CLIENT_ID"),
		AccessTTL:          time.Duration(mustInt("ACCESS_TOKEN_TTL_MIN")) * time.Minute,
		RefreshTTL:         time.Duration(mustInt("REFRESH_TOKEN_TTL_DAYS")) * 24 * time.Hour,
		BcryptCost:         mustInt("BCRYPT_COST"),
		LockThreshold:      envInt("LOCKOUT_THRESHOLD", 3),
		LockDuration:       time.Duration(envInt("LOCKOUT_DURATION_SEC", 60)) * time.Second,
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envInt reads an optional integer variable with a default.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
