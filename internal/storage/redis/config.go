package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// RoomTTL bounds how long finished or abandoned rooms linger.
	// Users, games, and achievement records are kept indefinitely.
	RoomTTL time.Duration

	// RecentGamesKept caps the per-user recent games index
	RecentGamesKept int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:             "redis://localhost:6379",
		PoolSize:        10,
		MinIdleConns:    2,
		RoomTTL:         24 * time.Hour,
		RecentGamesKept: 50,
	}
}
