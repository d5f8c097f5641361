package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/onchain-academy/gatekeeper/core"
	"github.com/onchain-academy/gatekeeper/internal/logging"
	"github.com/onchain-academy/gatekeeper/ports"
)

// DefaultLinkStateTTL bounds how long an OAuth linking redirect may take.
const DefaultLinkStateTTL = 10 * time.Minute

// ProviderConfig holds one OAuth provider's client credentials.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// LinkService starts OAuth account-linking flows. It issues the signed
// state carried across the redirect; the callback that completes the link
// is handled by the platform, not this service.
type LinkService struct {
	configs  map[string]oauth2.Config
	eventPub ports.EventPublisher
	logger   *logging.Logger

	stateTTL time.Duration
	now      func() time.Time
}

// NewLinkService creates the linking service from per-provider credentials.
// Providers with empty client IDs are left unconfigured and rejected at
// request time.
func NewLinkService(googleCfg, githubCfg ProviderConfig, logger *logging.Logger, eventPub ports.EventPublisher) *LinkService {
	configs := make(map[string]oauth2.Config)
	if googleCfg.ClientID != "" {
		configs["google"] = oauth2.Config{
			ClientID:     googleCfg.ClientID,
			ClientSecret: googleCfg.ClientSecret,
			RedirectURL:  googleCfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	if githubCfg.ClientID != "" {
		configs["github"] = oauth2.Config{
			ClientID:     githubCfg.ClientID,
			ClientSecret: githubCfg.ClientSecret,
			RedirectURL:  githubCfg.RedirectURL,
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		}
	}

	return &LinkService{
		configs:  configs,
		eventPub: eventPub,
		logger:   logger,
		stateTTL: DefaultLinkStateTTL,
		now:      time.Now,
	}
}

// WithStateTTL overrides the linking state lifetime.
func (s *LinkService) WithStateTTL(ttl time.Duration) *LinkService {
	s.stateTTL = ttl
	return s
}

// StateTTL returns the linking state lifetime.
func (s *LinkService) StateTTL() time.Duration {
	return s.stateTTL
}

// Supported reports whether the provider is configured.
func (s *LinkService) Supported(provider string) bool {
	_, ok := s.configs[provider]
	return ok
}

// StartLink builds the linking state for an authenticated user and the
// provider's authorization URL. The returned state goes into a signed,
// per-provider cookie that the OAuth callback consumes.
func (s *LinkService) StartLink(ctx context.Context, userID, provider string) (core.LinkState, string, error) {
	cfg, ok := s.configs[provider]
	if !ok {
		return core.LinkState{}, "", fmt.Errorf("%w: unsupported provider %q", core.ErrInvalidInput, provider)
	}

	state := core.LinkState{
		UserID:    userID,
		Provider:  provider,
		ExpiresAt: s.now().Add(s.stateTTL),
	}

	authorizeURL := cfg.AuthCodeURL(userID, oauth2.AccessTypeOnline)

	if s.eventPub != nil {
		if err := s.eventPub.PublishLinkStarted(ctx, userID, provider); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish link event")
		}
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("provider", provider).
		Msg("oauth link started")

	return state, authorizeURL, nil
}

// CookieName namespaces the linking cookie per provider so concurrent flows
// against different providers cannot clobber each other's state.
func CookieName(provider string) string {
	return "gk_link_" + provider
}
