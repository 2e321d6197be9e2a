// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/kinnected/kinnected/internal/app/system/auditlog"
	"github.com/kinnected/kinnected/internal/app/system/pinning"
	"github.com/kinnected/kinnected/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Kinnected.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, pinata_jwt, etc.
//   - Environment variables: KINNECTED_MONGO_URI, KINNECTED_PINATA_JWT, etc.
//   - Command-line flags: --mongo_uri, --pinata_jwt, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "kinnected", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "mongo_connect_timeout", Default: "10s", Desc: "Deadline for the initial MongoDB connect and ping"},

	// IPFS pinning
	{Name: "pinata_jwt", Default: "", Desc: "Pinata JWT; blank disables milestone pinning"},
	{Name: "pinata_endpoint", Default: pinning.DefaultEndpoint, Desc: "Pinata pinJSONToIPFS endpoint"},
	{Name: "pinata_gateway", Default: pinning.DefaultGateway, Desc: "Gateway prefix for pinned content URLs"},
	{Name: "pinata_max_tries", Default: 3, Desc: "Attempts per pin before giving up"},
	{Name: "pin_backfill_interval", Default: "10m", Desc: "How often unpinned milestones are retried (0 disables)"},

	// Abuse protection
	{Name: "signup_rate_per_minute", Default: 10, Desc: "Signups allowed per client IP per minute (0 disables)"},
	{Name: "signup_rate_burst", Default: 5, Desc: "Signup burst allowed per client IP"},
	{Name: "credential_rate_per_minute", Default: 20, Desc: "Credential checks allowed per client IP per minute (0 disables)"},
	{Name: "credential_rate_burst", Default: 10, Desc: "Credential check burst allowed per client IP"},
	{Name: "trusted_proxies", Default: []string{}, Desc: "Proxy CIDRs whose forwarding headers name the client IP (empty trusts none)"},

	// Audit logging settings
	{Name: "audit_log_account", Default: "all", Desc: "Account event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_family", Default: "all", Desc: "Family event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Handler deadlines
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document reads and writes"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for list and lookup queries"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for multi-collection writes"},
	{Name: "timeout_pin", Default: "15s", Desc: "Deadline for a pinning call, retries included"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges flags > env > files > defaults,
// reading WAFFLE_* for core settings and KINNECTED_* for the keys above.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "KINNECTED", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:            appValues.String("mongo_uri"),
		MongoDatabase:       appValues.String("mongo_database"),
		MongoMaxPoolSize:    uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize:    uint64(appValues.Int("mongo_min_pool_size")),
		MongoConnectTimeout: appValues.Duration("mongo_connect_timeout", 10*time.Second),

		// Pinning
		PinataJWT:      appValues.String("pinata_jwt"),
		PinataEndpoint: appValues.String("pinata_endpoint"),
		PinataGateway:  appValues.String("pinata_gateway"),
		PinataMaxTries: uint(appValues.Int("pinata_max_tries")),

		PinBackfillInterval: appValues.Duration("pin_backfill_interval", 10*time.Minute),

		SignupRatePerMinute: appValues.Int("signup_rate_per_minute"),
		SignupRateBurst:     appValues.Int("signup_rate_burst"),

		CredentialRatePerMinute: appValues.Int("credential_rate_per_minute"),
		CredentialRateBurst:     appValues.Int("credential_rate_burst"),
		TrustedProxies:          appValues.StringSlice("trusted_proxies"),

		// Audit logging
		AuditLogAccount: appValues.String("audit_log_account"),
		AuditLogFamily:  appValues.String("audit_log_family"),

		// Deadlines
		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
		TimeoutPin:    appValues.Duration("timeout_pin", 15*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}

	for key, v := range map[string]string{
		"audit_log_account": appCfg.AuditLogAccount,
		"audit_log_family":  appCfg.AuditLogFamily,
	} {
		if !auditlog.ValidDestination(v) {
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, v)
		}
	}

	if appCfg.SignupRatePerMinute < 0 || appCfg.SignupRateBurst < 0 {
		return fmt.Errorf("signup rate limits must not be negative")
	}
	if appCfg.CredentialRatePerMinute < 0 || appCfg.CredentialRateBurst < 0 {
		return fmt.Errorf("credential rate limits must not be negative")
	}
	if _, err := ratelimit.ParseProxies(appCfg.TrustedProxies); err != nil {
		return fmt.Errorf("trusted_proxies: %w", err)
	}
	if appCfg.PinBackfillInterval < 0 {
		return fmt.Errorf("pin_backfill_interval must not be negative")
	}

	if appCfg.PinataJWT == "" {
		logger.Info("pinata_jwt not set; milestone pinning disabled")
	}
	return nil
}
