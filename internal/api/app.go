package api

import (
	"github.com/felixgeelhaar/skillquest/internal/auth"
	"github.com/felixgeelhaar/skillquest/internal/learning"
	"github.com/felixgeelhaar/skillquest/internal/rules"
)

// App holds the services behind the HTTP API
type App struct {
	Auth     *auth.Service
	Learning *learning.Service

	// Rules reports the rule document in effect on /api/health. Optional.
	Rules *rules.Store

	// AllowedOrigins may make credentialed cross-origin requests
	AllowedOrigins []string

	// AuthRatePerMinute throttles signup and login per client IP.
	// Zero disables throttling.
	AuthRatePerMinute int
}
