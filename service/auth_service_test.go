package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onchain-academy/gatekeeper/adapters/store"
	"github.com/onchain-academy/gatekeeper/core"
	"github.com/onchain-academy/gatekeeper/internal/logging"
	"github.com/onchain-academy/gatekeeper/internal/token"
)

const testDomain = "academy.superteam.fun"

func newTokenService(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.New([]byte("session-secret-session-secret-42"), "gatekeeper", 30*time.Minute)
	require.NoError(t, err)
	return svc
}

func newAuthService(t *testing.T, opts ...AuthOption) *AuthService {
	t.Helper()
	return NewAuthService(store.NewMemoryStore(), newTokenService(t), logging.NewSilent(), testDomain, opts...)
}

func newWallet(t *testing.T) (string, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return base58.Encode(pub), priv
}

func stateFor(c core.Challenge) core.ChallengeState {
	return core.ChallengeState{
		Wallet:      c.Wallet,
		Nonce:       c.Nonce,
		Intent:      c.Intent,
		CallbackURL: c.CallbackURL,
		IssuedAt:    c.IssuedAt,
		ExpiresAt:   c.ExpiresAt,
	}
}

func TestIssueChallenge_RejectsBadAddress(t *testing.T) {
	svc := newAuthService(t)

	for _, addr := range []string{"", "not-base58-0OIl", base58.Encode(make([]byte, 16))} {
		_, _, err := svc.IssueChallenge(context.Background(), addr, core.IntentSignIn, "/")
		assert.ErrorIs(t, err, core.ErrInvalidAddress, "address %q", addr)
	}
}

func TestIssueChallenge_RejectsUnknownIntent(t *testing.T) {
	svc := newAuthService(t)
	addr, _ := newWallet(t)

	_, _, err := svc.IssueChallenge(context.Background(), addr, core.Intent("replay"), "/")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestIssueChallenge_MessageContainsWalletAndNonce(t *testing.T) {
	svc := newAuthService(t)
	addr, _ := newWallet(t)

	msg, c, err := svc.IssueChallenge(context.Background(), addr, core.IntentSignIn, "/courses/intro")
	require.NoError(t, err)

	assert.Contains(t, msg, "Wallet: "+addr)
	assert.Contains(t, msg, "Nonce: "+c.Nonce)
	assert.Equal(t, "/courses/intro", c.CallbackURL)
	assert.GreaterOrEqual(t, len(c.Nonce), 22, "nonce must carry at least 16 bytes of entropy")
}

func TestIssueChallenge_SanitizesCallbackURL(t *testing.T) {
	svc := newAuthService(t)
	addr, _ := newWallet(t)

	_, c, err := svc.IssueChallenge(context.Background(), addr, core.IntentSignIn, "https://evil.example/phish")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", c.CallbackURL)
}

func TestVerifyChallenge_EndToEnd(t *testing.T) {
	svc := newAuthService(t)
	addr, priv := newWallet(t)

	msg, c, err := svc.IssueChallenge(context.Background(), addr, core.IntentSignIn, "/")
	require.NoError(t, err)

	sig := base58.Encode(ed25519.Sign(priv, []byte(msg)))

	tok, session, err := svc.VerifyChallenge(context.Background(), stateFor(c), sig)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, addr, session.Wallet)

	// The token round-trips through per-request verification.
	verified := svc.VerifyAccessToken(tok)
	require.NotNil(t, verified)
	assert.Equal(t, addr, verified.Wallet)
}

func TestVerifyChallenge_NonceSingleUse(t *testing.T) {
	svc := newAuthService(t)
	addr, priv := newWallet(t)

	msg, c, err := svc.IssueChallenge(context.Background(), addr, core.IntentSignIn, "/")
	require.NoError(t, err)
	sig := base58.Encode(ed25519.Sign(priv, []byte(msg)))

	_, _, err = svc.VerifyChallenge(context.Background(), stateFor(c), sig)
	require.NoError(t, err)

	// Replaying the same signed challenge must fail: the nonce is spent.
	_, _, err = svc.VerifyChallenge(context.Background(), stateFor(c), sig)
	assert.ErrorIs(t, err, core.ErrInvalidChallenge)
}

func TestVerifyChallenge_BadSignature(t *testing.T) {
	svc := newAuthService(t)
	addr, _ := newWallet(t)
	_, otherPriv := newWallet(t)

	msg, c, err := svc.IssueChallenge(context.Background(), addr, core.IntentSignIn, "/")
	require.NoError(t, err)

	sig := base58.Encode(ed25519.Sign(otherPriv, []byte(msg)))
	_, _, err = svc.VerifyChallenge(context.Background(), stateFor(c), sig)
	assert.ErrorIs(t, err, core.ErrInvalidSignature)
}

func TestVerifyChallenge_ExpiredChallenge(t *testing.T) {
	now := time.Now()
	svc := newAuthService(t, WithClock(func() time.Time { return now }))
	addr, priv := newWallet(t)

	msg, c, err := svc.IssueChallenge(context.Background(), addr, core.IntentSignIn, "/")
	require.NoError(t, err)
	sig := base58.Encode(ed25519.Sign(priv, []byte(msg)))

	now = now.Add(6 * time.Minute)
	_, _, err = svc.VerifyChallenge(context.Background(), stateFor(c), sig)
	assert.ErrorIs(t, err, core.ErrInvalidChallenge)
}

func TestVerifyChallenge_ReissueReplacesNonce(t *testing.T) {
	svc := newAuthService(t)
	addr, priv := newWallet(t)

	msg1, c1, err := svc.IssueChallenge(context.Background(), addr, core.IntentSignIn, "/")
	require.NoError(t, err)
	_, _, err = svc.IssueChallenge(context.Background(), addr, core.IntentSignIn, "/")
	require.NoError(t, err)

	// The first challenge's nonce was overwritten by the reissue.
	sig := base58.Encode(ed25519.Sign(priv, []byte(msg1)))
	_, _, err = svc.VerifyChallenge(context.Background(), stateFor(c1), sig)
	assert.ErrorIs(t, err, core.ErrInvalidChallenge)
}

func TestVerifyChallenge_IntentsTrackedIndependently(t *testing.T) {
	svc := newAuthService(t)
	addr, priv := newWallet(t)

	signinMsg, signinC, err := svc.IssueChallenge(context.Background(), addr, core.IntentSignIn, "/")
	require.NoError(t, err)
	linkMsg, linkC, err := svc.IssueChallenge(context.Background(), addr, core.IntentLink, "/")
	require.NoError(t, err)

	assert.False(t, strings.Contains(signinMsg, linkC.Nonce))

	_, _, err = svc.VerifyChallenge(context.Background(), stateFor(signinC), base58.Encode(ed25519.Sign(priv, []byte(signinMsg))))
	require.NoError(t, err)

	_, _, err = svc.VerifyChallenge(context.Background(), stateFor(linkC), base58.Encode(ed25519.Sign(priv, []byte(linkMsg))))
	require.NoError(t, err)
}
