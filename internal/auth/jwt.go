// Package auth provides the session credential codec, the GitHub OAuth
// provider, and the authentication middleware.
//
// The session credential is a signed, self-contained JWT handed to the
// browser as an HttpOnly cookie. It binds the GitHub user ID and expires one
// hour after issuance. Because the token is independently verifiable, an
// authentication check never needs a lookup against the per-user record.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/selcukcihan/title-generator/internal/apperror"
)

const (
	// Issuer and Audience are fixed strings baked into every session token.
	// A token minted by any other application fails verification.
	Issuer   = "title-generator"
	Audience = "title-generator"

	// SessionTTL is how long an issued session credential stays valid.
	SessionTTL = time.Hour
)

// TokenService signs and verifies session credentials with an HMAC secret.
// The same secret must be used for both operations.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// claims embeds jwt.RegisteredClaims; the GitHub user ID travels in the
// standard "sub" claim as its decimal string form.
type claims struct {
	jwt.RegisteredClaims
}

// Issue creates and signs a session credential for the given GitHub user ID.
// The only varying input is the timestamp; two calls for the same user
// differ solely because of issued-at.
func (s *TokenService) Issue(githubID int64) (string, error) {
	now := s.now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(githubID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// IssueWithTTL creates a token with a custom expiry duration. Used in tests
// to mint already-expired credentials.
func (s *TokenService) IssueWithTTL(githubID int64, ttl time.Duration) (string, error) {
	now := s.now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(githubID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses a session credential and returns the GitHub user ID it
// binds. Signature, signing method, issuer, audience and expiry are all
// checked; any failure collapses into apperror.ErrUnauthorized so callers
// treat every invalid token the same way.
func (s *TokenService) Verify(tokenStr string) (int64, error) {
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
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, apperror.Unauthorized("invalid or expired session")
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return 0, apperror.Unauthorized("invalid session claims")
	}

	githubID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || githubID == 0 {
		return 0, apperror.Unauthorized("session carries no user identity")
	}

	return githubID, nil
}
