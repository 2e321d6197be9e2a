// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// HTTP server, logging and CORS; everything specific to Kinnected lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI            string        // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase       string        // Database name within MongoDB
	MongoMaxPoolSize    uint64        // Max connections in the driver pool
	MongoMinPoolSize    uint64        // Connections the driver keeps warm
	MongoConnectTimeout time.Duration // Deadline for the initial connect and ping

	// IPFS pinning (Pinata). Pinning is disabled when PinataJWT is empty.
	PinataJWT      string
	PinataEndpoint string
	PinataGateway  string
	PinataMaxTries uint

	// Background retry of unpinned milestones; zero disables the worker.
	PinBackfillInterval time.Duration

	// Signup rate limit per client IP; zero per-minute disables it.
	SignupRatePerMinute int
	SignupRateBurst     int

	// Credential check rate limit per client IP; zero per-minute disables it.
	CredentialRatePerMinute int
	CredentialRateBurst     int

	// Proxies (CIDRs or addresses) whose X-Forwarded-For and X-Real-IP are
	// believed when keying rate limits and recording audit IPs. Empty means
	// the peer address is always used.
	TrustedProxies []string

	// Audit logging: all | db | log | off
	AuditLogAccount string // signup, profile, settings, milestones
	AuditLogFamily  string // workspaces, joins, relationships

	// Handler deadlines; zero keeps the built-in default.
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
	TimeoutPin    time.Duration
}
