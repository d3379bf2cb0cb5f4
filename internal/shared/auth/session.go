package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "promotore_session"

var (
	ErrMissingSecret = errors.New("session secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Identity is the authenticated user resolved from a session.
type Identity struct {
	UserID   int64
	Username string
	FullName string
}

type sessionClaims struct {
	Username string `json:"username"`
	FullName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// SessionSigner issues and verifies HS256 session tokens.
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionSigner builds a signer. A non-positive ttl defaults to 12 hours.
func NewSessionSigner(secret string, ttl time.Duration) (*SessionSigner, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionSigner{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime of issued tokens.
func (s *SessionSigner) TTL() time.Duration {
	return s.ttl
}

// Sign issues a token for the given identity.
func (s *SessionSigner) Sign(id Identity) (string, error) {
	if id.UserID <= 0 || id.Username == "" {
		return "", fmt.Errorf("%w: identity incomplete", ErrInvalidToken)
	}
	now := s.now().UTC()
	claims := sessionClaims{
		Username: id.Username,
		FullName: id.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses a token and returns the identity it carries.
func (s *SessionSigner) Verify(raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, ErrInvalidToken
	}
	var claims sessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	// jwt/v4 validates exp against the wall clock; re-check with the signer clock.
	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return Identity{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 || claims.Username == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: userID, Username: claims.Username, FullName: claims.FullName}, nil
}
