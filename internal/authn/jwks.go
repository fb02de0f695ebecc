package authn

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// jwkKey mirrors a single entry of the provider's published JWKS document.
type jwkKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksDocument struct {
	Keys []jwkKey `json:"keys"`
}

// keySet is an immutable snapshot of the provider's verification keys.
// Snapshots are replaced wholesale on refresh, never mutated.
type keySet struct {
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// RefreshRecorder counts key refresh outcomes for observability.
type RefreshRecorder interface {
	RecordKeyRefresh(outcome string)
}

// KeyProvider caches the identity provider's signing key set with a TTL.
// Refreshes are coalesced through singleflight so concurrent verifications
// sharing an expired cache trigger a single network fetch.
type KeyProvider struct {
	url     string
	ttl     time.Duration
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger
	metrics RefreshRecorder

	group   singleflight.Group
	current atomic.Pointer[keySet]
}

// NewKeyProvider constructs a KeyProvider for the given provider domain.
func NewKeyProvider(domain string, ttl, timeout time.Duration, logger *slog.Logger) *KeyProvider {
	return &KeyProvider{
		url:     "https://" + domain + "/.well-known/jwks.json",
		ttl:     ttl,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// NewKeyProviderURL constructs a KeyProvider against an explicit JWKS URL.
func NewKeyProviderURL(url string, ttl, timeout time.Duration, logger *slog.Logger) *KeyProvider {
	return &KeyProvider{
		url:     url,
		ttl:     ttl,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SetRecorder attaches a refresh-outcome recorder. Must be called before
// the provider is shared between goroutines.
func (p *KeyProvider) SetRecorder(rec RefreshRecorder) {
	p.metrics = rec
}

// Key returns the verification key for kid. When the cached set does not
// contain kid the set is refreshed once and the lookup retried exactly
// once, which tolerates key rotation between TTL refreshes.
func (p *KeyProvider) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	ks := p.current.Load()
	if ks == nil || time.Since(ks.fetchedAt) >= p.ttl {
		var err error
		if ks, err = p.refresh(ctx); err != nil {
			return nil, err
		}
	}
	if key, ok := ks.keys[kid]; ok {
		return key, nil
	}

	ks, err := p.refresh(ctx)
	if err != nil {
		return nil, err
	}
	if key, ok := ks.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: kid %q", ErrUnknownSigningKey, kid)
}

// Warm eagerly fetches the key set. Used at startup and by the warmup job.
func (p *KeyProvider) Warm(ctx context.Context) error {
	_, err := p.refresh(ctx)
	return err
}

func (p *KeyProvider) refresh(ctx context.Context) (*keySet, error) {
	ch := p.group.DoChan("jwks", func() (any, error) {
		ks, err := p.fetch()
		if err != nil {
			p.recordRefresh("error")
			return nil, err
		}
		p.recordRefresh("ok")
		p.current.Store(ks)
		return ks, nil
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrKeyFetchFailed, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*keySet), nil
	}
}

func (p *KeyProvider) recordRefresh(outcome string) {
	if p.metrics != nil {
		p.metrics.RecordKeyRefresh(outcome)
	}
}

// fetch runs under its own deadline, detached from any single caller, so
// one cancelled request cannot poison a refresh shared by others.
func (p *KeyProvider) fetch() (*keySet, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFetchFailed, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrKeyFetchFailed, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFetchFailed, err)
	}

	keys, err := parseJWKS(body)
	if err != nil {
		return nil, err
	}
	if p.logger != nil {
		p.logger.Debug("signing key set refreshed", slog.Int("keys", len(keys)))
	}
	return &keySet{keys: keys, fetchedAt: time.Now()}, nil
}

// parseJWKS builds RSA public keys from the raw JWKS document. Non-RSA
// and non-signature entries are skipped.
func parseJWKS(data []byte) (map[string]*rsa.PublicKey, error) {
	var doc jwksDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFetchFailed, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if !strings.EqualFold(k.Kty, "RSA") || k.Kid == "" {
			continue
		}
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		n, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return nil, fmt.Errorf("%w: modulus of kid %q: %v", ErrKeyFetchFailed, k.Kid, err)
		}
		e, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return nil, fmt.Errorf("%w: exponent of kid %q: %v", ErrKeyFetchFailed, k.Kid, err)
		}
		keys[k.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(n),
			E: int(new(big.Int).SetBytes(e).Int64()),
		}
	}
	return keys, nil
}
