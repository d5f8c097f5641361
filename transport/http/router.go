package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/onchain-academy/gatekeeper/internal/logging"
	"github.com/onchain-academy/gatekeeper/internal/ratelimit"
	"github.com/onchain-academy/gatekeeper/service"
)

// RouterConfig bundles the handlers, limiters, and logger for the router.
type RouterConfig struct {
	Handlers *Handlers
	Auth     *service.AuthService
	Admin    *service.AdminService

	// APILimiter caps requests per IP and route across all endpoints.
	APILimiter *ratelimit.Limiter

	// ChallengeLimiter caps challenge issuance per IP and wallet.
	ChallengeLimiter *ratelimit.Limiter

	Logger *logging.Logger
}

// NewRouter assembles the gin engine with the full middleware chain.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		CorrelationID(),
		RequestLogger(cfg.Logger),
		Recovery(cfg.Logger),
		RateLimit(cfg.APILimiter, perIPRoute),
	)

	auth := router.Group("/auth")
	{
		auth.POST("/wallet/challenge",
			RateLimit(cfg.ChallengeLimiter, perIPWallet),
			cfg.Handlers.Challenge)
		auth.POST("/wallet/verify", cfg.Handlers.Verify)
		auth.POST("/oauth/start-link",
			SessionAuth(cfg.Auth),
			cfg.Handlers.StartLink)
	}

	admin := router.Group("/admin")
	{
		admin.POST("/login", cfg.Handlers.AdminLogin)
		admin.POST("/generate-api-key",
			AdminAuth(cfg.Admin),
			cfg.Handlers.GenerateAPIKey)
	}

	api := router.Group("/api")
	api.Use(SessionAuth(cfg.Auth))
	{
		api.GET("/me", cfg.Handlers.Me)
	}

	router.GET("/healthz", cfg.Handlers.Healthz)

	return router
}

func perIPRoute(c *gin.Context) string {
	return c.ClientIP() + " " + c.FullPath()
}

// perIPWallet keys challenge issuance on IP plus the requested wallet so a
// single caller cannot burn through nonces for many wallets, nor one wallet
// from many addresses unbounded.
func perIPWallet(c *gin.Context) string {
	var req struct {
		WalletAddress string `json:"walletAddress"`
	}
	// ShouldBindBodyWith buffers the body so the handler can bind it again.
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		return c.ClientIP()
	}
	return c.ClientIP() + " " + strings.TrimSpace(req.WalletAddress)
}
