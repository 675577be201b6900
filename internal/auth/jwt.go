// Package auth provides JWT issuing/validation, bcrypt password hashing, and
// the HTTP middleware that resolves the authenticated caller.
//
// AUTHENTICATION FLOW:
//  1. Client registers or logs in with username/password → server issues a JWT
//  2. Client sends the token on each request: Authorization: Bearer <jwt>
//  3. Middleware validates the signature and expiry, puts the userID in the
//     request context
//  4. Handlers resolve the full user record and pass it into the services as
//     an explicit actor parameter
//
// JWT is stateless — no session store. Everything needed (userID in "sub",
// expiry) lives inside the signed token, and the HMAC signature means nobody
// can forge or alter one without the secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer is checked on validation so tokens minted by another app that
// happens to share a secret (misconfiguration) are rejected.
const tokenIssuer = "movielist"

// tokenLifetime is deliberately long for a personal-tracker deployment;
// there is no refresh-token flow.
const tokenLifetime = 24 * time.Hour

// TokenService handles JWT creation and validation. It holds the HMAC secret
// used for both signing and verifying.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production,
// e.g. JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims embeds jwt.RegisteredClaims; the user's internal ID travels in the
// standard "sub" claim.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new access token for the given userID.
//
// HS256 (HMAC-SHA256): symmetric, fast, and fine for a single-server
// deployment where one process both signs and verifies.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, tokenLifetime)
}

// GenerateWithDuration creates a token with a custom expiry. Used by tests
// to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string, returning the userID from the
// "sub" claim.
//
// jwt.WithValidMethods pins the algorithm to HS256 — without it, an attacker
// could attempt an algorithm-confusion downgrade.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	userID := c.Subject
	if userID == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return userID, nil
}
