package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/mr-tron/base58"

	"github.com/onchain-academy/gatekeeper/core"
	"github.com/onchain-academy/gatekeeper/internal/challenge"
	"github.com/onchain-academy/gatekeeper/internal/logging"
	"github.com/onchain-academy/gatekeeper/internal/token"
	"github.com/onchain-academy/gatekeeper/internal/wallet"
	"github.com/onchain-academy/gatekeeper/ports"
)

const (
	// DefaultChallengeTTL bounds how long a challenge may be signed.
	DefaultChallengeTTL = 5 * time.Minute

	// nonceBytes is the nonce entropy before encoding. The floor is 16; we
	// issue 24 so the base58 form stays comfortably above it.
	nonceBytes = 24
)

// AuthService orchestrates the wallet challenge-response flow: nonce
// issuance, challenge construction, signature verification, and session
// token issuance.
type AuthService struct {
	store    ports.Store
	tokens   *token.Service
	eventPub ports.EventPublisher
	logger   *logging.Logger

	domain       string
	challengeTTL time.Duration
	now          func() time.Time
}

// AuthOption configures the service.
type AuthOption func(*AuthService)

// WithChallengeTTL overrides the challenge lifetime.
func WithChallengeTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		s.challengeTTL = ttl
	}
}

// WithEventPublisher attaches an event publisher.
func WithEventPublisher(pub ports.EventPublisher) AuthOption {
	return func(s *AuthService) {
		s.eventPub = pub
	}
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) {
		s.now = now
	}
}

// NewAuthService creates the wallet auth service. domain is the site domain
// rendered into challenge messages.
func NewAuthService(store ports.Store, tokens *token.Service, logger *logging.Logger, domain string, opts ...AuthOption) *AuthService {
	s := &AuthService{
		store:        store,
		tokens:       tokens,
		logger:       logger,
		domain:       domain,
		challengeTTL: DefaultChallengeTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueChallenge generates a nonce bound to (wallet, intent), records it
// with an expiry, and renders the canonical message for the wallet to sign.
// Issuing again for the same pair replaces the previous nonce.
func (s *AuthService) IssueChallenge(ctx context.Context, walletAddr string, intent core.Intent, callbackURL string) (string, core.Challenge, error) {
	if !wallet.ValidAddress(walletAddr) {
		return "", core.Challenge{}, core.ErrInvalidAddress
	}
	if intent == "" {
		intent = core.IntentSignIn
	}
	if !intent.Valid() {
		return "", core.Challenge{}, fmt.Errorf("%w: unknown intent %q", core.ErrInvalidInput, intent)
	}

	nonce, err := generateNonce()
	if err != nil {
		return "", core.Challenge{}, fmt.Errorf("generate nonce: %w", err)
	}

	now := s.now()
	c := core.Challenge{
		Wallet:      walletAddr,
		Nonce:       nonce,
		Intent:      intent,
		CallbackURL: challenge.SafeCallbackURL(callbackURL),
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.challengeTTL),
	}

	if err := s.store.Set(ctx, nonceKey(walletAddr, intent), nonce, s.challengeTTL); err != nil {
		return "", core.Challenge{}, fmt.Errorf("%w: %v", core.ErrStoreFailed, err)
	}

	s.logger.Debug().
		Str("wallet", walletAddr).
		Str("intent", string(intent)).
		Msg("challenge issued")

	return challenge.Build(s.domain, c), c, nil
}

// VerifyChallenge checks a wallet's signature against the challenge state
// recovered from the signed cookie. The nonce is consumed exactly once; a
// replay, an expired challenge, and a bad signature are all reported as the
// same ErrInvalidChallenge / ErrInvalidSignature pair so a client cannot
// tell which defense fired. On success a bearer session token is issued.
func (s *AuthService) VerifyChallenge(ctx context.Context, state core.ChallengeState, signature string) (string, *core.Session, error) {
	if s.now().After(state.ExpiresAt) {
		return "", nil, core.ErrInvalidChallenge
	}

	// Rebuild the exact message the wallet was asked to sign, then make the
	// message and the cookie agree on wallet and nonce before verifying.
	msg := challenge.Build(s.domain, core.Challenge{
		Wallet:   state.Wallet,
		Nonce:    state.Nonce,
		Intent:   state.Intent,
		IssuedAt: state.IssuedAt,
	})
	parsedWallet, parsedNonce := challenge.Parse(msg)
	if parsedWallet != state.Wallet || parsedNonce != state.Nonce {
		return "", nil, core.ErrInvalidChallenge
	}

	if !s.consumeNonce(ctx, state.Wallet, state.Intent, state.Nonce) {
		return "", nil, core.ErrInvalidChallenge
	}

	if !wallet.Verify(state.Wallet, msg, signature) {
		return "", nil, core.ErrInvalidSignature
	}

	// The wallet address is the subject: the platform's user records key off
	// it, and the token stays self-contained either way.
	tok, err := s.tokens.Issue(state.Wallet, state.Wallet, "")
	if err != nil {
		return "", nil, fmt.Errorf("issue session token: %w", err)
	}

	session := s.tokens.Verify(tok)
	if session == nil {
		return "", nil, errors.New("issued token failed self-verification")
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogin(ctx, state.Wallet, session.ID); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish login event")
		}
	}

	s.logger.Info().
		Str("wallet", state.Wallet).
		Str("intent", string(state.Intent)).
		Msg("wallet login")

	return tok, session, nil
}

// VerifyAccessToken validates a bearer token. Nil means invalid or expired.
func (s *AuthService) VerifyAccessToken(tokenStr string) *core.Session {
	return s.tokens.Verify(tokenStr)
}

// consumeNonce atomically removes the stored nonce for (wallet, intent) and
// reports whether it matched the presented one. First consumer wins; the
// comparison is constant-time.
func (s *AuthService) consumeNonce(ctx context.Context, walletAddr string, intent core.Intent, presented string) bool {
	stored, err := s.store.GetDel(ctx, nonceKey(walletAddr, intent))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

func nonceKey(walletAddr string, intent core.Intent) string {
	return fmt.Sprintf("nonce:%s:%s", intent, walletAddr)
}

func generateNonce() (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base58.Encode(buf), nil
}
