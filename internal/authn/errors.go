package authn

import "errors"

// Verification failures. Everything except the fetch errors means the
// presented token is bad and retrying cannot help; the fetch errors mean
// an upstream dependency was unreachable and a later retry may succeed.
var (
	// ErrMalformedToken indicates the compact token could not be parsed
	// or carries no kid header.
	ErrMalformedToken = errors.New("authn: malformed token")
	// ErrMalformedClaims indicates a required claim (sub, aud, iss, exp,
	// iat) is missing or mistyped in an otherwise valid token.
	ErrMalformedClaims = errors.New("authn: malformed claims")
	// ErrUnknownSigningKey indicates the token references a kid that is
	// absent even after a forced key-set refresh.
	ErrUnknownSigningKey = errors.New("authn: unknown signing key")
	// ErrTokenExpired indicates the token is past its expiry.
	ErrTokenExpired = errors.New("authn: token expired")
	// ErrClaimsMismatch indicates an audience, issuer, or timestamp claim
	// does not match what this service expects.
	ErrClaimsMismatch = errors.New("authn: claims mismatch")
	// ErrSignatureInvalid indicates the signature does not verify with
	// the matched key.
	ErrSignatureInvalid = errors.New("authn: signature invalid")
	// ErrKeyFetchFailed indicates the signing key set could not be
	// fetched from the identity provider.
	ErrKeyFetchFailed = errors.New("authn: signing key fetch failed")
	// ErrProfileFetchFailed indicates the userinfo endpoint could not be
	// reached or returned an error.
	ErrProfileFetchFailed = errors.New("authn: userinfo fetch failed")
)

// IsUpstreamFailure reports whether err means the identity provider was
// unavailable, as opposed to the token being invalid.
func IsUpstreamFailure(err error) bool {
	return errors.Is(err, ErrKeyFetchFailed) || errors.Is(err, ErrProfileFetchFailed)
}
