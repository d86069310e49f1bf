package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/careward/alert-relay/internal/domain"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database (audit sink)
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Platform gateway the webhook delivery channel posts to
	GatewayBaseURL string

	// Lane capacities
	QueueCapacity    int
	CriticalCapacity int

	// Orchestrator timing policy
	NormalTimeout   time.Duration
	CriticalTimeout time.Duration
	CriticalBackoff time.Duration

	// Delivery pacing: maximum submits per second (0 disables pacing)
	RateLimit int

	// Queue depth gauge refresh interval
	DepthInterval time.Duration
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		GatewayBaseURL: getEnv("GATEWAY_BASE_URL", "http://localhost:9090/alerts"),

		QueueCapacity:    getInt("QUEUE_CAPACITY", domain.DefaultQueueCapacity),
		CriticalCapacity: getInt("CRITICAL_CAPACITY", domain.DefaultCriticalCapacity),

		NormalTimeout:   getDuration("NORMAL_TIMEOUT", 10*time.Second),
		CriticalTimeout: getDuration("CRITICAL_TIMEOUT", 30*time.Second),
		CriticalBackoff: getDuration("CRITICAL_BACKOFF", 5*time.Second),

		RateLimit: getInt("RATE_LIMIT_PER_SEC", 50),

		DepthInterval: getDuration("DEPTH_INTERVAL", 5*time.Second),
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
