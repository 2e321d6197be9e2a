package ratelimit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLimiter_Allow(t *testing.T) {
	l := New(1, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d within burst was rejected", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("request over burst was allowed")
	}
	if !l.Allow("5.6.7.8") {
		t.Error("separate key shares a bucket")
	}

	l.Reset("1.2.3.4")
	if !l.Allow("1.2.3.4") {
		t.Error("Reset did not restore the bucket")
	}
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := New(1, 1).Middleware(ok)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := send(); rec.Code != http.StatusNoContent {
		t.Fatalf("first request: got %d", rec.Code)
	}
	rec := send()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestMiddleware_NilLimiter(t *testing.T) {
	var l *Limiter
	called := false
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("nil limiter blocked the request")
	}
}

func TestMiddleware_IgnoresSpoofedForwardedFor(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := New(1, 1).Middleware(ok)

	allowed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusNoContent {
			allowed++
		}
	}
	if allowed != 1 {
		t.Errorf("allowed %d of 20 requests with rotating forwarded headers, want 1", allowed)
	}
}

func TestMiddleware_TrustedProxy(t *testing.T) {
	proxies, err := ParseProxies([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("ParseProxies: %v", err)
	}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := New(1, 1).WithTrustedProxies(proxies).Middleware(ok)

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.2:80"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("198.51.100.1"); code != http.StatusNoContent {
		t.Fatalf("first client: got %d", code)
	}
	if code := send("198.51.100.2"); code != http.StatusNoContent {
		t.Errorf("second client behind the proxy shares a bucket: got %d", code)
	}
	if code := send("6.6.6.6, 198.51.100.1"); code != http.StatusTooManyRequests {
		t.Errorf("prepended hop changed the key: got %d, want 429", code)
	}
}

func TestParseProxies(t *testing.T) {
	p, err := ParseProxies([]string{" 10.0.0.0/8 ", "192.0.2.1", "", "::1"})
	if err != nil {
		t.Fatalf("ParseProxies: %v", err)
	}
	if len(p) != 3 {
		t.Fatalf("len = %d, want 3", len(p))
	}
	for ip, want := range map[string]bool{"10.1.2.3": true, "192.0.2.1": true, "192.0.2.2": false, "::1": true, "junk": false} {
		if got := p.Contains(ip); got != want {
			t.Errorf("Contains(%q) = %v, want %v", ip, got, want)
		}
	}

	for _, bad := range []string{"10.0.0.0/33", "not-an-ip"} {
		if _, err := ParseProxies([]string{bad}); err == nil {
			t.Errorf("ParseProxies(%q) accepted an invalid entry", bad)
		}
	}
}

func TestClientIP(t *testing.T) {
	trusted, err := ParseProxies([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("ParseProxies: %v", err)
	}
	tests := []struct {
		name    string
		trusted Proxies
		headers map[string]string
		remote  string
		want    string
	}{
		{"untrusted remote ignores forwarded", nil, map[string]string{"X-Forwarded-For": "203.0.113.5"}, "192.0.2.1:80", "192.0.2.1"},
		{"untrusted remote ignores real ip", nil, map[string]string{"X-Real-IP": "198.51.100.7"}, "192.0.2.1:80", "192.0.2.1"},
		{"trusted proxy forwards", trusted, map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.2:80", "203.0.113.5"},
		{"rightmost untrusted hop wins", trusted, map[string]string{"X-Forwarded-For": "1.1.1.1, 203.0.113.5"}, "10.0.0.2:80", "203.0.113.5"},
		{"trusted proxy real ip", trusted, map[string]string{"X-Real-IP": " 198.51.100.7 "}, "10.0.0.2:80", "198.51.100.7"},
		{"trusted proxy without headers", trusted, nil, "10.0.0.2:80", "10.0.0.2"},
		{"remote with port", nil, nil, "192.0.2.1:1234", "192.0.2.1"},
		{"remote without port", nil, nil, "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req, tt.trusted); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
