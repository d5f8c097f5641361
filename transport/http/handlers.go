package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/onchain-academy/gatekeeper/core"
	"github.com/onchain-academy/gatekeeper/internal/logging"
	"github.com/onchain-academy/gatekeeper/internal/signedstate"
	"github.com/onchain-academy/gatekeeper/service"
)

// Handlers holds the HTTP handlers and the codecs for their state cookies.
type Handlers struct {
	auth   *service.AuthService
	admin  *service.AdminService
	links  *service.LinkService
	health *service.HealthService

	challengeCodec *signedstate.Codec[core.ChallengeState]
	linkCodec      *signedstate.Codec[core.LinkState]

	logger        *logging.Logger
	secureCookies bool
}

// NewHandlers creates the handler set.
func NewHandlers(
	auth *service.AuthService,
	admin *service.AdminService,
	links *service.LinkService,
	health *service.HealthService,
	challengeCodec *signedstate.Codec[core.ChallengeState],
	linkCodec *signedstate.Codec[core.LinkState],
	logger *logging.Logger,
	secureCookies bool,
) *Handlers {
	return &Handlers{
		auth:           auth,
		admin:          admin,
		links:          links,
		health:         health,
		challengeCodec: challengeCodec,
		linkCodec:      linkCodec,
		logger:         logger,
		secureCookies:  secureCookies,
	}
}

// Challenge issues a wallet sign-in challenge and sets the signed
// challenge cookie.
func (h *Handlers) Challenge(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"walletAddress" binding:"required"`
		Intent        string `json:"intent"`
		CallbackURL   string `json:"callbackUrl"`
	}

	// The rate limiter already buffered the body to extract the wallet.
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	message, ch, err := h.auth.IssueChallenge(c.Request.Context(), req.WalletAddress, core.Intent(req.Intent), req.CallbackURL)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidAddress), errors.Is(err, core.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address or intent"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue challenge"})
		}
		return
	}

	state := core.ChallengeState{
		Wallet:      ch.Wallet,
		Nonce:       ch.Nonce,
		Intent:      ch.Intent,
		CallbackURL: ch.CallbackURL,
		IssuedAt:    ch.IssuedAt,
		ExpiresAt:   ch.ExpiresAt,
	}
	signed, err := h.challengeCodec.Sign(state)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue challenge"})
		return
	}
	setStateCookie(c, ChallengeCookie, signed, ch.ExpiresAt.Sub(ch.IssuedAt), h.secureCookies)

	c.JSON(http.StatusOK, gin.H{
		"message":       message,
		"walletAddress": ch.Wallet,
		"nonce":         ch.Nonce,
	})
}

// Verify checks a wallet signature against the signed challenge cookie and
// issues a session token. Every failure mode answers 401 with the same body
// so a probing client learns nothing about which check tripped.
func (h *Handlers) Verify(c *gin.Context) {
	var req struct {
		Signature string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cookie, err := c.Cookie(ChallengeCookie)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	state, ok := h.challengeCodec.Verify(cookie)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	token, session, err := h.auth.VerifyChallenge(c.Request.Context(), state, req.Signature)
	if err != nil {
		if errors.Is(err, core.ErrStoreFailed) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	clearStateCookie(c, ChallengeCookie, h.secureCookies)

	c.JSON(http.StatusOK, gin.H{
		"token":         token,
		"walletAddress": session.Wallet,
		"callbackUrl":   state.CallbackURL,
	})
}

// StartLink begins an OAuth account link for the authenticated user and
// sets the per-provider signed link cookie.
func (h *Handlers) StartLink(c *gin.Context) {
	var req struct {
		Provider string `json:"provider" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session := sessionFrom(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	state, authorizeURL, err := h.links.StartLink(c.Request.Context(), session.Subject, req.Provider)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported provider"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start link"})
		return
	}

	signed, err := h.linkCodec.Sign(state)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start link"})
		return
	}
	setStateCookie(c, service.CookieName(req.Provider), signed, h.links.StateTTL(), h.secureCookies)

	c.JSON(http.StatusOK, gin.H{
		"authorizeUrl": authorizeURL,
		"provider":     req.Provider,
	})
}

// AdminLogin exchanges the admin password for a short-lived admin token.
func (h *Handlers) AdminLogin(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, err := h.admin.Login(req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GenerateAPIKey mints a new API key. The plaintext key appears in this
// response and nowhere else.
func (h *Handlers) GenerateAPIKey(c *gin.Context) {
	var req struct {
		Role  string `json:"role" binding:"required"`
		Label string `json:"label"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	key, record, err := h.admin.GenerateAPIKey(c.Request.Context(), core.APIKeyRole(req.Role), req.Label)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"apiKey": key,
		"role":   record.Role,
		"label":  record.Label,
	})
}

// Me returns the identity behind the bearer token.
func (h *Handlers) Me(c *gin.Context) {
	session := sessionFrom(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sub":           session.Subject,
		"walletAddress": session.Wallet,
	})
}

// Healthz reports service readiness. Degraded still answers 200 so load
// balancers keep routing while the RPC dependency flaps.
func (h *Handlers) Healthz(c *gin.Context) {
	status := h.health.Check(c.Request.Context())

	code := http.StatusOK
	if status == core.HealthUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status})
}
