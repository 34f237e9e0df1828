package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verify for every rejection class: bad
// signature, malformed payload, wrong algorithm, missing subject, or
// expiry in the past. Callers must not distinguish between them.
var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer issues and verifies signed, self-contained bearer tokens.
// Tokens are JWTs signed with HS256; the payload carries only the subject
// user ID and an expiry instant. Validity is determined purely by the
// signature check plus a strict expiry comparison - there is no
// server-side session state and no revocation list.
//
// The signing secret and token lifetime come from configuration at
// construction time and are never mutated afterwards.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer with the given symmetric secret
// and token lifetime.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl}
}

// Issue creates a signed token binding the user ID as subject, expiring
// after the configured lifetime.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify decodes and validates a token string, returning the subject
// user ID. Any failure yields an error wrapping ErrInvalidToken.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims.Subject, nil
}
