package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/onchain-academy/gatekeeper/core"
	"github.com/onchain-academy/gatekeeper/internal/logging"
	"github.com/onchain-academy/gatekeeper/internal/token"
	"github.com/onchain-academy/gatekeeper/ports"
)

// apiKeyTTL caps how long an unused key record survives in the store.
const apiKeyTTL = 365 * 24 * time.Hour

// AdminService implements the admin authentication gate: password login
// issuing a short-lived admin token, and API key issuance for
// service-to-service calls.
type AdminService struct {
	store    ports.Store
	tokens   *token.Service
	eventPub ports.EventPublisher
	logger   *logging.Logger

	passwordDigest [32]byte
}

// NewAdminService creates the admin gate. tokens must be the admin token
// service (its own secret, independent from wallet sessions).
func NewAdminService(store ports.Store, tokens *token.Service, logger *logging.Logger, adminPassword string, eventPub ports.EventPublisher) *AdminService {
	return &AdminService{
		store:          store,
		tokens:         tokens,
		eventPub:       eventPub,
		logger:         logger,
		passwordDigest: sha256.Sum256([]byte(adminPassword)),
	}
}

// Login compares the submitted password against the configured secret and
// issues an admin bearer token on match. Digests are compared so the check
// is constant-time regardless of where the inputs differ.
func (s *AdminService) Login(password string) (string, error) {
	digest := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(digest[:], s.passwordDigest[:]) != 1 {
		return "", core.ErrUnauthorized
	}

	tok, err := s.tokens.Issue("admin", "", string(core.RoleAdmin))
	if err != nil {
		return "", fmt.Errorf("issue admin token: %w", err)
	}

	s.logger.Info().Msg("admin login")
	return tok, nil
}

// VerifyToken validates an admin bearer token. Nil means invalid/expired.
func (s *AdminService) VerifyToken(tokenStr string) *core.Session {
	return s.tokens.Verify(tokenStr)
}

// GenerateAPIKey mints a high-entropy API key for the given role, stores
// its record keyed by digest, and returns the key once. It is never
// retrievable again.
func (s *AdminService) GenerateAPIKey(ctx context.Context, role core.APIKeyRole, label string) (string, core.APIKeyRecord, error) {
	if !role.Valid() {
		return "", core.APIKeyRecord{}, fmt.Errorf("%w: unknown role %q", core.ErrInvalidInput, role)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", core.APIKeyRecord{}, fmt.Errorf("generate api key: %w", err)
	}
	key := "gk_" + base64.RawURLEncoding.EncodeToString(raw)

	record := core.APIKeyRecord{
		ID:        uuid.New().String(),
		Digest:    digestOf(key),
		Role:      role,
		Label:     label,
		CreatedAt: time.Now().UTC(),
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		return "", core.APIKeyRecord{}, fmt.Errorf("marshal api key record: %w", err)
	}
	if err := s.store.Set(ctx, apiKeyStoreKey(record.Digest), string(encoded), apiKeyTTL); err != nil {
		return "", core.APIKeyRecord{}, fmt.Errorf("%w: %v", core.ErrStoreFailed, err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishAPIKeyIssued(ctx, record.ID, string(role)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish api key event")
		}
	}

	s.logger.Info().
		Str("key_id", record.ID).
		Str("role", string(role)).
		Str("label", label).
		Msg("api key issued")

	return key, record, nil
}

// AuthenticateAPIKey resolves a presented API key to its record. Lookup is
// by digest, and the stored digest is re-compared in constant time before
// the record is trusted. Unknown or malformed keys return nil.
func (s *AdminService) AuthenticateAPIKey(ctx context.Context, key string) *core.APIKeyRecord {
	if key == "" {
		return nil
	}

	digest := digestOf(key)
	encoded, err := s.store.Get(ctx, apiKeyStoreKey(digest))
	if err != nil {
		return nil
	}

	var record core.APIKeyRecord
	if err := json.Unmarshal([]byte(encoded), &record); err != nil {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(record.Digest), []byte(digest)) != 1 {
		return nil
	}
	return &record
}

func digestOf(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func apiKeyStoreKey(digest string) string {
	return "apikey:" + digest
}
