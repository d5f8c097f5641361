// Package signedstate encodes tamper-evident server state carried in
// cookies: base64url(payload JSON) + "." + base64url(HMAC-SHA256). The MAC
// must validate before any field of the payload is trusted, and validation
// failures of every kind decode to nothing rather than an error the caller
// could mishandle.
package signedstate

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Expirer lets payloads carry their own deadline. Verify rejects payloads
// whose deadline has passed even when the MAC is valid.
type Expirer interface {
	Expiry() time.Time
}

// Codec signs and verifies one payload type with a server-held secret.
type Codec[T any] struct {
	secret []byte
	now    func() time.Time
}

// New creates a codec over the given secret.
func New[T any](secret []byte) *Codec[T] {
	return &Codec[T]{secret: secret, now: time.Now}
}

// NewWithClock creates a codec with an injected clock, for tests.
func NewWithClock[T any](secret []byte, now func() time.Time) *Codec[T] {
	return &Codec[T]{secret: secret, now: now}
}

// Sign serializes the payload and appends its MAC.
func (c *Codec[T]) Sign(payload T) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw) + "." + c.mac(raw), nil
}

// Verify decodes a cookie value. It returns the payload and true only when
// the value is well-formed, the MAC matches under constant-time comparison,
// and any embedded expiry has not passed. Everything else returns the zero
// value and false.
func (c *Codec[T]) Verify(value string) (T, bool) {
	var zero T

	encodedPayload, encodedMAC, found := strings.Cut(value, ".")
	if !found {
		return zero, false
	}

	raw, err := base64.RawURLEncoding.DecodeString(encodedPayload)
	if err != nil {
		return zero, false
	}

	theirMAC, err := base64.RawURLEncoding.DecodeString(encodedMAC)
	if err != nil {
		return zero, false
	}

	ourMAC := hmac.New(sha256.New, c.secret)
	ourMAC.Write(raw)
	if !hmac.Equal(ourMAC.Sum(nil), theirMAC) {
		return zero, false
	}

	var payload T
	if err := json.Unmarshal(raw, &payload); err != nil {
		return zero, false
	}

	if e, ok := any(payload).(Expirer); ok {
		if exp := e.Expiry(); !exp.IsZero() && c.now().After(exp) {
			return zero, false
		}
	}

	return payload, true
}

func (c *Codec[T]) mac(raw []byte) string {
	h := hmac.New(sha256.New, c.secret)
	h.Write(raw)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
