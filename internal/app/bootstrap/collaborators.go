// internal/app/bootstrap/collaborators.go
package bootstrap

import (
	"sync"

	usersfeature "github.com/kinnected/kinnected/internal/app/features/users"
	"github.com/kinnected/kinnected/internal/app/system/pinning"
	"github.com/kinnected/kinnected/internal/app/system/ratelimit"
	"github.com/kinnected/kinnected/internal/app/system/workers"
)

// Background workers started in Startup and stopped in Shutdown, and the
// pinning client they share with the HTTP handlers.
var (
	workersMu   sync.Mutex
	pinBackfill *workers.PinBackfill
	pinClient   pinning.Pinner
	pinCfg      pinning.Config
)

func pinningConfig(appCfg AppConfig) pinning.Config {
	return pinning.Config{
		JWT:      appCfg.PinataJWT,
		Endpoint: appCfg.PinataEndpoint,
		Gateway:  appCfg.PinataGateway,
		MaxTries: appCfg.PinataMaxTries,
	}
}

// sharedPinner returns one client per pinning configuration, so Startup and
// BuildHandler hand the same instance to the worker and the handlers. It is
// pinning.Noop when no JWT is set.
func sharedPinner(appCfg AppConfig) pinning.Pinner {
	cfg := pinningConfig(appCfg)

	workersMu.Lock()
	defer workersMu.Unlock()
	if pinClient == nil || cfg != pinCfg {
		pinClient, pinCfg = pinning.New(cfg), cfg
	}
	return pinClient
}

// trustedProxies parses appCfg.TrustedProxies. ValidateConfig has already
// rejected malformed entries.
func trustedProxies(appCfg AppConfig) ratelimit.Proxies {
	proxies, _ := ratelimit.ParseProxies(appCfg.TrustedProxies)
	return proxies
}

// newUserLimits builds the signup and credential limiters. A limit whose
// per-minute rate is zero is left nil, which disables it.
func newUserLimits(appCfg AppConfig) usersfeature.Limits {
	proxies := trustedProxies(appCfg)
	return usersfeature.Limits{
		Signup:      newLimiter(appCfg.SignupRatePerMinute, appCfg.SignupRateBurst, proxies),
		Credentials: newLimiter(appCfg.CredentialRatePerMinute, appCfg.CredentialRateBurst, proxies),
	}
}

func newLimiter(perMinute, burst int, proxies ratelimit.Proxies) *ratelimit.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return ratelimit.New(perMinute, burst).WithTrustedProxies(proxies)
}
