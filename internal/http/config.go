package http

import (
	"github.com/mrlokans/library-ms/internal/exports"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces a long parameter list
// in NewRouter for better testability.
type RouterConfig struct {
	// Storage backend (SQLite or Postgres)
	Store Store

	// CSV report writer
	Exporter *exports.Exporter

	// Rate limiter for the two catalog listing routes (optional)
	RateLimiter *RateLimiter

	// Application info
	Version string
}
