// Package config loads service configuration from the environment. A .env
// file is honored in development; real deployments inject the environment
// directly. Secrets are validated at load time so a misconfigured process
// dies at startup instead of limping into traffic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full service configuration.
type Config struct {
	ListenAddr string
	Env        string // "development" or "production"
	LogLevel   string

	// Challenge domain rendered into sign-in messages.
	ChallengeDomain string

	// Independent signing secrets. A compromised cookie secret must not be
	// able to forge bearer tokens, so these never default to each other.
	SessionTokenSecret string
	AdminTokenSecret   string
	StateSigningSecret string

	AdminPassword string

	SessionTokenTTL time.Duration
	AdminTokenTTL   time.Duration
	ChallengeTTL    time.Duration
	LinkStateTTL    time.Duration

	// Backend signer public key (base58) used by readiness checks.
	SignerPublicKey string

	RPCURL        string
	RPCTimeout    time.Duration
	RPCMaxRetries int

	// Empty RedisURL selects the in-memory store (single instance only).
	RedisURL string

	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
	OAuthRedirectBase  string

	// Rate limit tunables.
	APIRateLimit        int
	APIRateWindow       time.Duration
	ChallengeRateLimit  int
	ChallengeRateWindow time.Duration
	SweepInterval       time.Duration
}

// Load reads configuration from the environment, applying defaults for
// everything except secrets.
func Load() (*Config, error) {
	// Best effort; absence of a .env file is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:      getenv("LISTEN_ADDR", ":9000"),
		Env:             getenv("APP_ENV", "development"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		ChallengeDomain: getenv("CHALLENGE_DOMAIN", "academy.superteam.fun"),

		SessionTokenSecret: os.Getenv("SESSION_TOKEN_SECRET"),
		AdminTokenSecret:   os.Getenv("ADMIN_TOKEN_SECRET"),
		StateSigningSecret: os.Getenv("STATE_SIGNING_SECRET"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),

		SessionTokenTTL: getduration("SESSION_TOKEN_TTL", 30*time.Minute),
		AdminTokenTTL:   getduration("ADMIN_TOKEN_TTL", 15*time.Minute),
		ChallengeTTL:    getduration("CHALLENGE_TTL", 5*time.Minute),
		LinkStateTTL:    getduration("LINK_STATE_TTL", 10*time.Minute),

		SignerPublicKey: os.Getenv("SIGNER_PUBLIC_KEY"),

		RPCURL:        getenv("RPC_URL", "https://api.devnet.solana.com"),
		RPCTimeout:    time.Duration(getint("RPC_TIMEOUT_MS", 3000)) * time.Millisecond,
		RPCMaxRetries: getint("RPC_MAX_RETRIES", 2),

		RedisURL: os.Getenv("REDIS_URL"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		OAuthRedirectBase:  getenv("OAUTH_REDIRECT_BASE", "https://academy.superteam.fun"),

		APIRateLimit:        getint("API_RATE_LIMIT", 10),
		APIRateWindow:       getduration("API_RATE_WINDOW", time.Minute),
		ChallengeRateLimit:  getint("CHALLENGE_RATE_LIMIT", 1),
		ChallengeRateWindow: getduration("CHALLENGE_RATE_WINDOW", time.Minute),
		SweepInterval:       getduration("SWEEP_INTERVAL", time.Minute),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	for name, value := range map[string]string{
		"SESSION_TOKEN_SECRET": c.SessionTokenSecret,
		"ADMIN_TOKEN_SECRET":   c.AdminTokenSecret,
		"STATE_SIGNING_SECRET": c.StateSigningSecret,
		"ADMIN_PASSWORD":       c.AdminPassword,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment: %s", strings.Join(missing, ", "))
	}

	for name, value := range map[string]string{
		"SESSION_TOKEN_SECRET": c.SessionTokenSecret,
		"ADMIN_TOKEN_SECRET":   c.AdminTokenSecret,
		"STATE_SIGNING_SECRET": c.StateSigningSecret,
	} {
		if len(value) < 32 {
			return fmt.Errorf("%s must be at least 32 bytes", name)
		}
	}

	if c.RPCMaxRetries < 0 {
		return fmt.Errorf("RPC_MAX_RETRIES must not be negative")
	}
	return nil
}

// Production reports whether the service runs with production hardening
// (secure cookies, release-mode router).
func (c *Config) Production() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getint(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getduration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
