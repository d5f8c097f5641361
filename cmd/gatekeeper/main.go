package main

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/onchain-academy/gatekeeper/adapters/chain"
	"github.com/onchain-academy/gatekeeper/adapters/events"
	"github.com/onchain-academy/gatekeeper/adapters/store"
	"github.com/onchain-academy/gatekeeper/config"
	"github.com/onchain-academy/gatekeeper/core"
	"github.com/onchain-academy/gatekeeper/internal/logging"
	"github.com/onchain-academy/gatekeeper/internal/ratelimit"
	"github.com/onchain-academy/gatekeeper/internal/signedstate"
	"github.com/onchain-academy/gatekeeper/internal/token"
	"github.com/onchain-academy/gatekeeper/ports"
	"github.com/onchain-academy/gatekeeper/service"
	"github.com/onchain-academy/gatekeeper/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("error").Fatal().Err(err).Msg("configuration")
	}

	logger := logging.New(cfg.LogLevel)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, eventPub := buildBackend(ctx, cfg, logger)

	sessionTokens, err := token.New([]byte(cfg.SessionTokenSecret), "gatekeeper", cfg.SessionTokenTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("session token service")
	}
	adminTokens, err := token.New([]byte(cfg.AdminTokenSecret), "gatekeeper", cfg.AdminTokenTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("admin token service")
	}

	authSvc := service.NewAuthService(kv, sessionTokens, logger, cfg.ChallengeDomain,
		service.WithChallengeTTL(cfg.ChallengeTTL),
		service.WithEventPublisher(eventPub),
	)
	adminSvc := service.NewAdminService(kv, adminTokens, logger, cfg.AdminPassword, eventPub)
	linkSvc := service.NewLinkService(
		service.ProviderConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.OAuthRedirectBase + "/auth/oauth/callback/google",
		},
		service.ProviderConfig{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.OAuthRedirectBase + "/auth/oauth/callback/github",
		},
		logger, eventPub,
	).WithStateTTL(cfg.LinkStateTTL)

	rpc := chain.NewClient(
		chain.WithRPCURL(cfg.RPCURL),
		chain.WithTimeout(cfg.RPCTimeout),
	)
	healthSvc := service.NewHealthService(rpc, logger, cfg.SignerPublicKey, cfg.RPCTimeout, cfg.RPCMaxRetries)

	stateSecret := []byte(cfg.StateSigningSecret)
	handlers := http.NewHandlers(
		authSvc, adminSvc, linkSvc, healthSvc,
		signedstate.New[core.ChallengeState](stateSecret),
		signedstate.New[core.LinkState](stateSecret),
		logger,
		cfg.Production(),
	)

	apiLimiter := ratelimit.New(cfg.APIRateLimit, cfg.APIRateWindow)
	challengeLimiter := ratelimit.New(cfg.ChallengeRateLimit, cfg.ChallengeRateWindow)
	apiLimiter.StartSweeper(ctx, cfg.SweepInterval)
	challengeLimiter.StartSweeper(ctx, cfg.SweepInterval)

	router := http.NewRouter(http.RouterConfig{
		Handlers:         handlers,
		Auth:             authSvc,
		Admin:            adminSvc,
		APILimiter:       apiLimiter,
		ChallengeLimiter: challengeLimiter,
		Logger:           logger,
	})

	server := &stdhttp.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
		os.Exit(1)
	}
	logger.Info().Msg("stopped")
}

// buildBackend selects the store and event publisher. With REDIS_URL set the
// service uses Redis for nonces and API keys and a Redis Stream publisher
// for events; without it everything stays in process and events are dropped.
func buildBackend(ctx context.Context, cfg *config.Config, logger *logging.Logger) (ports.Store, ports.EventPublisher) {
	if cfg.RedisURL == "" {
		logger.Warn().Msg("REDIS_URL not set, using in-memory store; state will not survive restarts")
		mem := store.NewMemoryStore()
		mem.StartSweeper(ctx, cfg.SweepInterval)
		return mem, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse REDIS_URL")
	}
	client := redis.NewClient(opts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: client},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("create event publisher")
	}

	return store.NewRedisStore(client), events.NewWatermillPublisher(publisher)
}
