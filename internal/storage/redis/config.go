package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// RoomTTL is how long room documents live without being rewritten.
	// Every write refreshes it, so only abandoned rooms expire.
	RoomTTL time.Duration

	// TxRetries bounds optimistic-transaction retries under contention
	TxRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		RoomTTL:      24 * time.Hour,
		TxRetries:    5,
	}
}
