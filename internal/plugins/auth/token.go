package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single failure returned by Verify. Malformed,
// tampered, expired, and wrongly-signed tokens are deliberately
// indistinguishable so the verifier can't be used as an oracle.
var ErrInvalidToken = errors.New("invalid or expired token")

// SessionClaims is the payload carried inside a session token.
type SessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-limited session tokens.
// Stateless: a token is a pure function of the payload, the signing secret,
// and the clock. Shared by every request handler; all fields are set at
// construction and never mutated.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. It refuses an empty secret:
// running without one would mean issuing unsigned sessions, and the server
// must fail closed instead.
func NewTokenService(secret []byte, ttl time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token service: signing secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token service: ttl must be positive")
	}
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue produces a signed token for the given user, expiring ttl from now.
func (ts *TokenService) Issue(userID, name string) (string, error) {
	now := ts.now()
	claims := &SessionClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Verify validates the signature and expiry of a token and returns its
// claims. Every failure collapses to ErrInvalidToken.
func (ts *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		// Pinning HMAC rejects alg-substitution tokens (e.g. "none").
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.secret, nil
	}, jwt.WithTimeFunc(ts.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TTL returns the configured token lifetime. The cookie max-age is derived
// from it so the cookie and the token expire together.
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}
