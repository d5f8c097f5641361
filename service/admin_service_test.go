package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onchain-academy/gatekeeper/adapters/store"
	"github.com/onchain-academy/gatekeeper/core"
	"github.com/onchain-academy/gatekeeper/internal/logging"
)

const testAdminPassword = "correct horse battery staple"

func newAdminService(t *testing.T) *AdminService {
	t.Helper()
	return NewAdminService(store.NewMemoryStore(), newTokenService(t), logging.NewSilent(), testAdminPassword, nil)
}

func TestAdminLogin_CorrectPassword(t *testing.T) {
	svc := newAdminService(t)

	tok, err := svc.Login(testAdminPassword)
	require.NoError(t, err)

	session := svc.VerifyToken(tok)
	require.NotNil(t, session)
	assert.Equal(t, string(core.RoleAdmin), session.Role)
}

func TestAdminLogin_OneCharacterOff(t *testing.T) {
	svc := newAdminService(t)

	_, err := svc.Login("correct horse battery stapl3")
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = svc.Login("")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestGenerateAPIKey_RoundTrip(t *testing.T) {
	svc := newAdminService(t)
	ctx := context.Background()

	key, record, err := svc.GenerateAPIKey(ctx, core.RoleAdmin, "ci-pipeline")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "gk_"))
	assert.Equal(t, core.RoleAdmin, record.Role)
	assert.Equal(t, "ci-pipeline", record.Label)

	got := svc.AuthenticateAPIKey(ctx, key)
	require.NotNil(t, got)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, core.RoleAdmin, got.Role)
}

func TestGenerateAPIKey_RejectsUnknownRole(t *testing.T) {
	svc := newAdminService(t)

	_, _, err := svc.GenerateAPIKey(context.Background(), core.APIKeyRole("superuser"), "")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestAuthenticateAPIKey_UnknownKey(t *testing.T) {
	svc := newAdminService(t)
	ctx := context.Background()

	assert.Nil(t, svc.AuthenticateAPIKey(ctx, "gk_does-not-exist"))
	assert.Nil(t, svc.AuthenticateAPIKey(ctx, ""))
}

func TestAuthenticateAPIKey_KeysAreDistinct(t *testing.T) {
	svc := newAdminService(t)
	ctx := context.Background()

	adminKey, _, err := svc.GenerateAPIKey(ctx, core.RoleAdmin, "a")
	require.NoError(t, err)
	clientKey, _, err := svc.GenerateAPIKey(ctx, core.RoleClient, "b")
	require.NoError(t, err)

	assert.NotEqual(t, adminKey, clientKey)
	assert.Equal(t, core.RoleAdmin, svc.AuthenticateAPIKey(ctx, adminKey).Role)
	assert.Equal(t, core.RoleClient, svc.AuthenticateAPIKey(ctx, clientKey).Role)
}
