// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kinnected/kinnected/internal/app/system/jsonutil"
	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key (usually a client IP).
// It is safe for concurrent use.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	every     rate.Limit
	burst     int
	idle      time.Duration // buckets unused this long are dropped
	lastSweep time.Time
	proxies   Proxies
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// New creates a limiter allowing perMinute requests per key per minute with
// bursts of up to burst requests.
func New(perMinute, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		buckets:   make(map[string]*bucket),
		every:     rate.Limit(float64(perMinute) / 60),
		burst:     burst,
		idle:      10 * time.Minute,
		lastSweep: time.Now(),
	}
}

// WithTrustedProxies makes the limiter key requests that arrive from one of
// proxies by the client address those proxies forward. Call it before the
// limiter serves requests.
func (l *Limiter) WithTrustedProxies(proxies Proxies) *Limiter {
	l.proxies = proxies
	return l
}

// Allow reports whether a request for key may proceed now.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.every, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim.AllowN(now, 1)
}

// Reset forgets key's bucket.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// sweep drops idle buckets. Callers hold mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// retryAfter is the whole number of seconds until one token is available.
func (l *Limiter) retryAfter() int {
	if l.every <= 0 {
		return 60
	}
	return int(1/float64(l.every)) + 1
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// header. Requests are keyed by ClientIP. A nil Limiter lets everything through.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(ClientIP(r, l.proxies)) {
			w.Header().Set("Retry-After", strconv.Itoa(l.retryAfter()))
			jsonutil.Error(w, http.StatusTooManyRequests, "too many requests, please retry later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Proxies is a set of networks whose forwarding headers are trusted.
type Proxies []*net.IPNet

// ParseProxies parses CIDRs ("10.0.0.0/8") or bare addresses ("10.0.0.1").
func ParseProxies(entries []string) (Proxies, error) {
	var out Proxies
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid proxy address %q", entry)
			}
			bits := 8 * net.IPv6len
			if ip.To4() != nil {
				ip, bits = ip.To4(), 8*net.IPv4len
			}
			out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy network %q: %w", entry, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// Contains reports whether ip belongs to one of the networks.
func (p Proxies) Contains(ip string) bool {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return false
	}
	for _, n := range p {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}

// ClientIP returns the address a request should be attributed to.
//
// RemoteAddr is used unless it belongs to a trusted proxy. Only then are
// X-Forwarded-For and X-Real-IP consulted; the forwarded chain is walked from
// the right and the first hop that is not itself a trusted proxy wins, so
// entries a client prepends cannot change the key.
func ClientIP(r *http.Request, trusted Proxies) string {
	remote, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		remote = r.RemoteAddr
	}
	if !trusted.Contains(remote) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop != "" && !trusted.Contains(hop) {
				return hop
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return remote
}
