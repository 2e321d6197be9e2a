// Package pinning mirrors JSON documents to IPFS through a pinning service.
package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DefaultEndpoint is Pinata's JSON pinning API.
const DefaultEndpoint = "https://api.pinata.cloud/pinning/pinJSONToIPFS"

// DefaultGateway is the public gateway used to build content URLs.
const DefaultGateway = "https://gateway.pinata.cloud/ipfs/"

// ErrDisabled is returned by Noop.
var ErrDisabled = errors.New("pinning is not configured")

// Pinner stores v on IPFS under a human-readable name and returns its CID.
type Pinner interface {
	PinJSON(ctx context.Context, name string, v any) (string, error)
}

// Noop is used when no pinning credentials are configured.
type Noop struct{}

func (Noop) PinJSON(context.Context, string, any) (string, error) {
	return "", ErrDisabled
}

// Config configures a Pinata client.
type Config struct {
	JWT        string
	Endpoint   string
	Gateway    string
	MaxTries   uint
	HTTPClient *http.Client
}

// Pinata pins JSON through Pinata's pinJSONToIPFS endpoint.
type Pinata struct {
	jwt      string
	endpoint string
	gateway  string
	maxTries uint
	hc       *http.Client
}

// New returns a Pinata client, or Noop when cfg.JWT is empty.
func New(cfg Config) Pinner {
	if strings.TrimSpace(cfg.JWT) == "" {
		return Noop{}
	}
	return NewPinata(cfg)
}

// NewPinata returns a Pinata client with defaults filled in.
func NewPinata(cfg Config) *Pinata {
	p := &Pinata{
		jwt:      strings.TrimSpace(cfg.JWT),
		endpoint: cfg.Endpoint,
		gateway:  cfg.Gateway,
		maxTries: cfg.MaxTries,
		hc:       cfg.HTTPClient,
	}
	if p.endpoint == "" {
		p.endpoint = DefaultEndpoint
	}
	if p.gateway == "" {
		p.gateway = DefaultGateway
	}
	if !strings.HasSuffix(p.gateway, "/") {
		p.gateway += "/"
	}
	if p.maxTries == 0 {
		p.maxTries = 3
	}
	if p.hc == nil {
		p.hc = &http.Client{Timeout: 20 * time.Second}
	}
	return p
}

// URL returns the gateway URL for cid.
func (p *Pinata) URL(cid string) string {
	return p.gateway + cid
}

type pinRequest struct {
	Content  any         `json:"pinataContent"`
	Metadata pinMetadata `json:"pinataMetadata"`
}

type pinMetadata struct {
	Name string `json:"name,omitempty"`
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// StatusError is a non-2xx response from the pinning service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pinning service returned %d: %s", e.Code, e.Body)
}

// PinJSON uploads v and returns the IPFS hash. Server errors and 429 are
// retried with exponential backoff; other 4xx responses are not.
func (p *Pinata) PinJSON(ctx context.Context, name string, v any) (string, error) {
	body, err := json.Marshal(pinRequest{Content: v, Metadata: pinMetadata{Name: name}})
	if err != nil {
		return "", fmt.Errorf("encode pin request: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second

	return backoff.Retry(ctx, func() (string, error) {
		return p.post(ctx, body)
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(p.maxTries))
}

func (p *Pinata) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.jwt)

	resp, err := p.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(err)
		}
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", se
		}
		return "", backoff.Permanent(se)
	}

	var out pinResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", backoff.Permanent(fmt.Errorf("decode pin response: %w", err))
	}
	if out.IpfsHash == "" {
		return "", backoff.Permanent(errors.New("pin response has no IpfsHash"))
	}
	return out.IpfsHash, nil
}
