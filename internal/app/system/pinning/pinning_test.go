package pinning_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/kinnected/kinnected/internal/app/system/pinning"
)

func TestNew_NoJWTIsNoop(t *testing.T) {
	p := pinning.New(pinning.Config{JWT: "  "})
	if _, ok := p.(pinning.Noop); !ok {
		t.Fatalf("expected Noop, got %T", p)
	}
	if _, err := p.PinJSON(context.Background(), "x", map[string]string{}); !errors.Is(err, pinning.ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}

func TestPinata_PinJSON(t *testing.T) {
	var gotAuth, gotName string
	var gotContent map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req struct {
			Content  map[string]any `json:"pinataContent"`
			Metadata struct {
				Name string `json:"name"`
			} `json:"pinataMetadata"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotName = req.Metadata.Name
		gotContent = req.Content
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"IpfsHash":"bafyTEST","PinSize":42,"Timestamp":"2024-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	p := pinning.NewPinata(pinning.Config{JWT: "secret", Endpoint: srv.URL})
	cid, err := p.PinJSON(context.Background(), "milestone-1", map[string]string{"title": "Born"})
	if err != nil {
		t.Fatalf("PinJSON failed: %v", err)
	}
	if cid != "bafyTEST" {
		t.Errorf("cid: got %q", cid)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization: got %q", gotAuth)
	}
	if gotName != "milestone-1" {
		t.Errorf("metadata name: got %q", gotName)
	}
	if gotContent["title"] != "Born" {
		t.Errorf("content: got %v", gotContent)
	}
	if p.URL(cid) != pinning.DefaultGateway+"bafyTEST" {
		t.Errorf("URL: got %q", p.URL(cid))
	}
}

func TestPinata_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"IpfsHash":"bafyRETRY"}`))
	}))
	defer srv.Close()

	p := pinning.NewPinata(pinning.Config{JWT: "secret", Endpoint: srv.URL})
	cid, err := p.PinJSON(context.Background(), "m", map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("PinJSON failed: %v", err)
	}
	if cid != "bafyRETRY" {
		t.Errorf("cid: got %q", cid)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestPinata_ClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad jwt", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := pinning.NewPinata(pinning.Config{JWT: "wrong", Endpoint: srv.URL, MaxTries: 5})
	_, err := p.PinJSON(context.Background(), "m", map[string]int{"a": 1})

	var se *pinning.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusUnauthorized {
		t.Errorf("code: got %d", se.Code)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("4xx must not be retried, got %d calls", calls)
	}
}

func TestPinata_GivesUpAfterMaxTries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := pinning.NewPinata(pinning.Config{JWT: "secret", Endpoint: srv.URL, MaxTries: 2})
	if _, err := p.PinJSON(context.Background(), "m", 1); err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}
