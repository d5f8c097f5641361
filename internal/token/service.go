// Package token issues and verifies the stateless bearer tokens that replace
// server-side sessions. Tokens are HS256 JWTs; any instance holding the
// signing secret can verify them, so horizontal scaling needs no shared
// session table.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/onchain-academy/gatekeeper/core"
)

// DefaultTTL is the session token lifetime when none is configured.
const DefaultTTL = 30 * time.Minute

// MinSecretLen is the shortest signing secret the service accepts. Startup
// fails fast on anything shorter.
const MinSecretLen = 32

// Claims are the session claims carried by an issued token.
type Claims struct {
	jwt.RegisteredClaims
	Wallet string `json:"wallet,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Service signs and verifies session tokens with one HMAC secret.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// New creates a token service. The secret must be at least MinSecretLen
// bytes; the caller is expected to treat an error here as fatal.
func New(secret []byte, issuer string, ttl time.Duration) (*Service, error) {
	if len(secret) < MinSecretLen {
		return nil, errors.New("token: signing secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue creates a signed token binding a subject to a wallet address.
// Role is carried for admin tokens and left empty for wallet sessions.
func (s *Service) Issue(subjectID, walletAddr, role string) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Wallet: walletAddr,
		Role:   role,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify parses and validates a token. It returns the session it describes,
// or nil for anything malformed, mis-signed, or expired. Verification is
// stateless and never mutates the service.
func (s *Service) Verify(tokenStr string) *core.Session {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, core.ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.ExpiresAt == nil {
		return nil
	}

	session := &core.Session{
		ID:        claims.ID,
		Subject:   claims.Subject,
		Wallet:    claims.Wallet,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	return session
}
