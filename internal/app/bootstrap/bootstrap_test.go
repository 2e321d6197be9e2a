package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kinnected/kinnected/internal/app/system/pinning"
	"github.com/kinnected/kinnected/internal/app/system/timeouts"
	"github.com/kinnected/kinnected/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "kinnected",
		MongoMaxPoolSize: 100,
		MongoMinPoolSize: 10,
		AuditLogAccount:  "all",
		AuditLogFamily:   "db",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(*AppConfig) {}, false},
		{"bad uri", func(c *AppConfig) { c.MongoURI = "postgres://localhost" }, true},
		{"no database", func(c *AppConfig) { c.MongoDatabase = "" }, true},
		{"pool inverted", func(c *AppConfig) { c.MongoMinPoolSize = 200 }, true},
		{"bad account audit", func(c *AppConfig) { c.AuditLogAccount = "everywhere" }, true},
		{"bad family audit", func(c *AppConfig) { c.AuditLogFamily = "" }, true},
		{"audit off", func(c *AppConfig) { c.AuditLogAccount, c.AuditLogFamily = "off", "log" }, false},
		{"negative signup rate", func(c *AppConfig) { c.SignupRatePerMinute = -1 }, true},
		{"negative credential burst", func(c *AppConfig) { c.CredentialRateBurst = -1 }, true},
		{"trusted proxies", func(c *AppConfig) { c.TrustedProxies = []string{"10.0.0.0/8", "192.0.2.1"} }, false},
		{"bad trusted proxy", func(c *AppConfig) { c.TrustedProxies = []string{"10.0.0.0/99"} }, true},
		{"negative backfill interval", func(c *AppConfig) { c.PinBackfillInterval = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(nil, cfg, zap.NewNop())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartup_ConfiguresTimeouts(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	cfg := validConfig()
	cfg.TimeoutShort = 1 * time.Second
	cfg.TimeoutPin = 3 * time.Second

	if err := Startup(context.Background(), nil, cfg, DBDeps{}, zap.NewNop()); err != nil {
		t.Fatalf("Startup: %v", err)
	}

	got := timeouts.Current()
	if got.Short != time.Second || got.Pin != 3*time.Second {
		t.Errorf("timeouts = %+v, want overridden short and pin", got)
	}
	if got.Medium != timeouts.Defaults().Medium {
		t.Errorf("medium = %v, want default %v", got.Medium, timeouts.Defaults().Medium)
	}
}

func TestEnsureSchema(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, nil, validConfig(), deps, zap.NewNop()); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i+1, err)
		}
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames: %v", err)
	}
	want := map[string]bool{"users": false, "workspaces": false, "familyrelationships": false, "audit_events": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, found := range want {
		if !found {
			t.Errorf("collection %q not created", n)
		}
	}
}

func TestBuildHandler_Routes(t *testing.T) {
	db := testutil.SetupTestDB(t)

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	h, err := BuildHandler(nil, validConfig(), deps, zap.NewNop())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound},
		{"wrong method", http.MethodPatch, "/api/users/", http.StatusMethodNotAllowed},
		{"user bad id", http.MethodGet, "/api/users/xyz", http.StatusBadRequest},
		{"user missing", http.MethodGet, "/api/users/000000000000000000000000", http.StatusNotFound},
		{"user activity missing", http.MethodGet, "/api/users/000000000000000000000000/activity", http.StatusNotFound},
		{"credentials empty body", http.MethodPost, "/api/users/credentials", http.StatusBadRequest},
		{"kinship labels", http.MethodGet, "/api/relationships/labels", http.StatusOK},
		{"workspace activity bad limit", http.MethodGet, "/api/workspaces/000000000000000000000000/activity?limit=x", http.StatusBadRequest},
		{"workspace missing", http.MethodGet, "/api/workspaces/000000000000000000000000", http.StatusNotFound},
		{"nested relationships", http.MethodGet, "/api/workspaces/000000000000000000000000/relationships/missing-inverses", http.StatusOK},
		{"relationship delete", http.MethodDelete, "/api/relationships/000000000000000000000000", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			testutil.AssertStatus(t, rec, tt.status)
			if rec.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestNewPinnerAndLimiter(t *testing.T) {
	cfg := validConfig()
	if _, ok := pinning.New(pinningConfig(cfg)).(pinning.Noop); !ok {
		t.Error("pinner without JWT should be Noop")
	}
	cfg.PinataJWT = "jwt"
	if _, ok := pinning.New(pinningConfig(cfg)).(*pinning.Pinata); !ok {
		t.Error("pinner with JWT should be *pinning.Pinata")
	}

	limits := newUserLimits(cfg)
	if limits.Signup != nil || limits.Credentials != nil {
		t.Error("zero rates should disable both limiters")
	}
	cfg.SignupRatePerMinute, cfg.SignupRateBurst = 10, 5
	limits = newUserLimits(cfg)
	if limits.Signup == nil {
		t.Error("expected a signup limiter")
	}
	if limits.Credentials != nil {
		t.Error("credential limiter should stay disabled")
	}
	cfg.CredentialRatePerMinute, cfg.CredentialRateBurst = 20, 10
	if newUserLimits(cfg).Credentials == nil {
		t.Error("expected a credential limiter")
	}
}

func TestSharedPinner(t *testing.T) {
	t.Cleanup(func() {
		workersMu.Lock()
		pinClient = nil
		workersMu.Unlock()
	})

	cfg := validConfig()
	cfg.PinataJWT = "jwt"
	first := sharedPinner(cfg)
	if _, ok := first.(*pinning.Pinata); !ok {
		t.Fatalf("sharedPinner = %T, want *pinning.Pinata", first)
	}
	if sharedPinner(cfg) != first {
		t.Error("same settings built a second client")
	}

	cfg.PinataJWT = "rotated"
	if sharedPinner(cfg) == first {
		t.Error("changed settings reused the old client")
	}
}

func TestNewUserLimits_TrustedProxies(t *testing.T) {
	cfg := validConfig()
	cfg.CredentialRatePerMinute, cfg.CredentialRateBurst = 1, 1
	cfg.TrustedProxies = []string{"10.0.0.0/8"}
	lim := newUserLimits(cfg).Credentials

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := lim.Middleware(ok)
	send := func(remote, forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = remote
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	// Behind the proxy each forwarded client has its own bucket.
	if send("10.0.0.5:80", "198.51.100.1") != http.StatusNoContent || send("10.0.0.5:80", "198.51.100.2") != http.StatusNoContent {
		t.Error("clients behind a trusted proxy should not share a bucket")
	}
	// A direct peer cannot pick its bucket with the header.
	if send("203.0.113.7:80", "198.51.100.3") != http.StatusNoContent {
		t.Fatal("first direct request rejected")
	}
	if send("203.0.113.7:80", "198.51.100.4") != http.StatusTooManyRequests {
		t.Error("direct peer escaped its bucket by rotating X-Forwarded-For")
	}
}

func TestStartupShutdown_PinBackfillWorker(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(timeouts.Reset)

	cfg := validConfig()
	cfg.PinataJWT = "jwt"
	cfg.PinBackfillInterval = time.Hour
	deps := DBDeps{MongoDatabase: db}

	if err := Startup(context.Background(), nil, cfg, deps, zap.NewNop()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	workersMu.Lock()
	started := pinBackfill != nil
	built := pinClient
	workersMu.Unlock()
	if !started {
		t.Fatal("pin backfill worker not started")
	}
	if sharedPinner(cfg) != built {
		t.Error("handlers would get a different pinning client than the worker")
	}

	if err := Shutdown(context.Background(), nil, cfg, deps, zap.NewNop()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	workersMu.Lock()
	defer workersMu.Unlock()
	if pinBackfill != nil {
		t.Error("pin backfill worker not stopped")
	}
	if pinClient != nil {
		t.Error("pinning client not released")
	}
}
