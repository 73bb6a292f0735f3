package redis

import "time"

// Config holds Redis connection settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// ConnectTimeout bounds the startup ping
	ConnectTimeout time.Duration

	// SyncRetries is how many times a profile sync is retried when a
	// concurrent writer touches the same profile
	SyncRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:            "redis://localhost:6379",
		PoolSize:       10,
		MinIdleConns:   2,
		ConnectTimeout: 5 * time.Second,
		SyncRetries:    10,
	}
}
