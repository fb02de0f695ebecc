// Package authn converts opaque bearer tokens into verified claims using
// the identity provider's published signing keys.
package authn

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the validated payload of a bearer token. Created fresh per
// request, never persisted.
type Claims struct {
	Subject     string
	Issuer      string
	Audience    []string
	ExpiresAt   time.Time
	IssuedAt    time.Time
	Email       string
	Name        string
	Permissions []string
	// Raw preserves the full validated payload, including claims this
	// service does not interpret.
	Raw map[string]any
}

// KeySource resolves a kid to its verification key.
type KeySource interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// Verifier validates bearer tokens against the expected audience, issuer
// and allowed algorithms.
type Verifier struct {
	logger   *slog.Logger
	keys     KeySource
	audience string
	issuer   string
	methods  []string
}

// NewVerifier constructs a Verifier. Tokens must be issued by
// https://<domain>/ for the given audience, signed with one of algorithms.
func NewVerifier(logger *slog.Logger, keys KeySource, domain, audience string, algorithms []string) *Verifier {
	return &Verifier{
		logger:   logger,
		keys:     keys,
		audience: audience,
		issuer:   "https://" + domain + "/",
		methods:  algorithms,
	}
}

// Verify validates a compact token string and returns its claims, or one
// of the package's typed errors.
func (v *Verifier) Verify(ctx context.Context, token string) (*Claims, error) {
	unverified, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("%w: missing kid header", ErrMalformedToken)
	}

	key, err := v.keys.Key(ctx, kid)
	if err != nil {
		return nil, err
	}

	payload := jwt.MapClaims{}
	_, err = jwt.NewParser(
		jwt.WithValidMethods(v.methods),
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	).ParseWithClaims(token, payload, func(*jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		mapped := mapJWTError(err)
		if v.logger != nil {
			v.logger.Debug("token rejected", slog.Any("error", err))
		}
		return nil, mapped
	}

	return claimsFromPayload(payload)
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidAudience), errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrClaimsMismatch
	case errors.Is(err, jwt.ErrTokenUsedBeforeIssued), errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrClaimsMismatch
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ErrMalformedClaims
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}

func claimsFromPayload(payload jwt.MapClaims) (*Claims, error) {
	sub, err := payload.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMalformedClaims)
	}
	iss, err := payload.GetIssuer()
	if err != nil || iss == "" {
		return nil, fmt.Errorf("%w: iss", ErrMalformedClaims)
	}
	aud, err := payload.GetAudience()
	if err != nil || len(aud) == 0 {
		return nil, fmt.Errorf("%w: aud", ErrMalformedClaims)
	}
	exp, err := payload.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: exp", ErrMalformedClaims)
	}
	iat, err := payload.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, fmt.Errorf("%w: iat", ErrMalformedClaims)
	}

	claims := &Claims{
		Subject:   sub,
		Issuer:    iss,
		Audience:  aud,
		ExpiresAt: exp.Time,
		IssuedAt:  iat.Time,
		Raw:       payload,
	}
	claims.Email, _ = payload["email"].(string)
	claims.Name, _ = payload["name"].(string)
	if perms, ok := payload["permissions"].([]any); ok {
		for _, p := range perms {
			if s, ok := p.(string); ok {
				claims.Permissions = append(claims.Permissions, s)
			}
		}
	}
	return claims, nil
}
