package config

import "time"

// HTTP server timeouts
const (
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Rotating log file settings
const (
	LogRotationTime = 24 * time.Hour
	LogMaxAge       = 7 * 24 * time.Hour
)

// Request body limit for JSON endpoints
const MaxBodyBytes = 64 << 10
