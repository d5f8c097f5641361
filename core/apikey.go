package core

import "time"

// APIKeyRole restricts what a generated API key may do.
type APIKeyRole string

const (
	RoleAdmin  APIKeyRole = "admin"
	RoleClient APIKeyRole = "client"
)

// Valid reports whether the role is one of the known values.
func (r APIKeyRole) Valid() bool {
	return r == RoleAdmin || r == RoleClient
}

// APIKeyRecord is the server-side view of an issued API key. The secret
// itself is returned once at creation and never stored; only its SHA-256
// digest is kept for lookup.
type APIKeyRecord struct {
	ID        string     `json:"id"`
	Digest    string     `json:"digest"` // hex-encoded SHA-256 of the key
	Role      APIKeyRole `json:"role"`
	Label     string     `json:"label,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
