package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// DATABASE_URL and the FCM service-account settings are required; everything
// else has a sensible default.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// FCM service account
	FCMProjectID   string
	FCMClientEmail string
	FCMPrivateKey  string // PEM-encoded RSA key

	// Endpoint overrides, injected so tests can point at local mocks.
	OAuthTokenURL string
	FCMBaseURL    string
	FCMTimeout    time.Duration

	// Queue consumer
	QueueBatchSize int
	PollInterval   time.Duration
	ClaimLease     time.Duration

	// Announcement fan-out: maximum recipients per invocation
	FanoutCap int

	// Maximum push sends per second
	SendRateLimit int
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	projectID := os.Getenv("FCM_PROJECT_ID")
	clientEmail := os.Getenv("FCM_CLIENT_EMAIL")
	privateKey := os.Getenv("FCM_PRIVATE_KEY")
	if projectID == "" || clientEmail == "" || privateKey == "" {
		return nil, fmt.Errorf("FCM_PROJECT_ID, FCM_CLIENT_EMAIL and FCM_PRIVATE_KEY are required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		FCMProjectID:   projectID,
		FCMClientEmail: clientEmail,
		// Secrets managers commonly store PEM with escaped newlines.
		FCMPrivateKey: strings.ReplaceAll(privateKey, `\n`, "\n"),

		OAuthTokenURL: getEnv("OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token"),
		FCMBaseURL:    getEnv("FCM_BASE_URL", "https://fcm.googleapis.com"),
		FCMTimeout:    getDuration("FCM_TIMEOUT", 10*time.Second),

		QueueBatchSize: getInt("QUEUE_BATCH_SIZE", 10),
		PollInterval:   getDuration("POLL_INTERVAL", 30*time.Second),
		ClaimLease:     getDuration("CLAIM_LEASE", 5*time.Minute),

		FanoutCap: getInt("ANNOUNCEMENT_FANOUT_CAP", 1000),

		SendRateLimit: getInt("SEND_RATE_LIMIT", 100),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
