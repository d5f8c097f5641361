package service

import (
	"context"
	"time"

	"github.com/onchain-academy/gatekeeper/core"
	"github.com/onchain-academy/gatekeeper/internal/logging"
	"github.com/onchain-academy/gatekeeper/internal/retry"
	"github.com/onchain-academy/gatekeeper/internal/wallet"
	"github.com/onchain-academy/gatekeeper/ports"
)

// HealthService reports service readiness: whether the backend signer is
// configured and whether the chain RPC answers a lightweight read within
// the retry budget.
type HealthService struct {
	chain  ports.ChainReader
	logger *logging.Logger

	signerPublicKey string
	rpcTimeout      time.Duration
	rpcMaxRetries   int
}

// NewHealthService creates the readiness checker.
func NewHealthService(chain ports.ChainReader, logger *logging.Logger, signerPublicKey string, rpcTimeout time.Duration, rpcMaxRetries int) *HealthService {
	return &HealthService{
		chain:           chain,
		logger:          logger,
		signerPublicKey: signerPublicKey,
		rpcTimeout:      rpcTimeout,
		rpcMaxRetries:   rpcMaxRetries,
	}
}

// Check classifies readiness. A missing or malformed signer key is
// unhealthy: the platform cannot perform any privileged action without it.
// A configured signer with a failing chain read is degraded: auth still
// works, on-chain operations will not.
func (s *HealthService) Check(ctx context.Context) core.HealthStatus {
	if !wallet.ValidAddress(s.signerPublicKey) {
		return core.HealthUnhealthy
	}

	opts := retry.Options{Timeout: s.rpcTimeout, MaxRetries: s.rpcMaxRetries}
	_, err := retry.Do(ctx, opts, func(ctx context.Context) (uint64, error) {
		return s.chain.Slot(ctx)
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("chain read failed during health check")
		return core.HealthDegraded
	}

	return core.HealthOK
}
