package core

import "time"

// Intent describes why a wallet is being asked to sign a challenge.
type Intent string

const (
	// IntentSignIn is a first-party wallet sign-in.
	IntentSignIn Intent = "signin"

	// IntentLink attaches a wallet to an existing account.
	IntentLink Intent = "link"
)

// Valid reports whether the intent is one of the known values.
func (i Intent) Valid() bool {
	return i == IntentSignIn || i == IntentLink
}

// Challenge represents an authentication challenge issued to a wallet.
type Challenge struct {
	Wallet      string    // Base58-encoded Solana address of the user
	Nonce       string    // Random nonce embedded in the message to sign
	Intent      Intent    // Why the signature is being requested
	CallbackURL string    // Relative path to return the user to after login
	IssuedAt    time.Time // When the challenge was created
	ExpiresAt   time.Time // When the challenge expires
}

// Session represents an authenticated user session carried by a bearer token.
type Session struct {
	ID        string    // Token ID (jti)
	Subject   string    // Stable user identifier
	Wallet    string    // Base58-encoded Solana address
	Role      string    // Role claim; empty for regular wallet sessions
	IssuedAt  time.Time // When the session was created
	ExpiresAt time.Time // When the session expires
}

// LinkState is the signed state carried across an OAuth linking redirect.
type LinkState struct {
	UserID    string    `json:"userId"`
	Provider  string    `json:"provider"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ChallengeState is the signed state set alongside a wallet challenge. The
// verify step trusts it only after the cookie MAC checks out, and then only
// where it agrees with the message the wallet actually signed.
type ChallengeState struct {
	Wallet      string    `json:"wallet"`
	Nonce       string    `json:"nonce"`
	Intent      Intent    `json:"intent"`
	CallbackURL string    `json:"callbackUrl"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Expiry implements signedstate.Expirer.
func (s LinkState) Expiry() time.Time { return s.ExpiresAt }

// Expiry implements signedstate.Expirer.
func (s ChallengeState) Expiry() time.Time { return s.ExpiresAt }

// HealthStatus is the readiness verdict reported by the health check.
type HealthStatus string

const (
	HealthOK        HealthStatus = "ok"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)
