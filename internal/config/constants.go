package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Outbound call timeouts. The oracle call is the only slow step in a
// game request; it must never block the process indefinitely.
const (
	OracleTimeout    = 10 * time.Second
	WordFetchTimeout = 5 * time.Second
)

// Background job intervals
const ArchiveJobInterval = 15 * time.Minute
