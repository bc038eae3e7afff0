package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Anandhg36/RMIT-Hackathon/internal/models"
	"github.com/Anandhg36/RMIT-Hackathon/pkg/crypto"
	appErrors "github.com/Anandhg36/RMIT-Hackathon/pkg/errors"
)

type fakeSecretRepo struct {
	byUser map[string]*models.UserSecret
}

func newFakeSecretRepo() *fakeSecretRepo {
	return &fakeSecretRepo{byUser: map[string]*models.UserSecret{}}
}

func (f *fakeSecretRepo) Upsert(_ context.Context, secret *models.UserSecret) error {
	f.byUser[secret.UserID] = secret
	return nil
}

func (f *fakeSecretRepo) FindByUserID(_ context.Context, userID string) (*models.UserSecret, error) {
	secret, ok := f.byUser[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return secret, nil
}

const testSecretsKey = "4242424242424242424242424242424242424242424242424242424242424242"

func newTestSecretService(t *testing.T, repo secretRepository) *SecretService {
	t.Helper()
	box, err := crypto.NewBox(testSecretsKey)
	require.NoError(t, err)
	return NewSecretService(repo, box, zap.NewNop())
}

func TestStoreTokenSealsAtRest(t *testing.T) {
	repo := newFakeSecretRepo()
	svc := newTestSecretService(t, repo)
	ctx := context.Background()

	require.NoError(t, svc.StoreToken(ctx, "u1", "canvas-token-abc"))

	stored := repo.byUser["u1"]
	require.NotNil(t, stored)
	assert.NotContains(t, string(stored.UpstreamTokenEnc), "canvas-token-abc")

	token, err := svc.Token(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "canvas-token-abc", token)
}

func TestStoreTokenReplacesPrevious(t *testing.T) {
	repo := newFakeSecretRepo()
	svc := newTestSecretService(t, repo)
	ctx := context.Background()

	require.NoError(t, svc.StoreToken(ctx, "u1", "old"))
	require.NoError(t, svc.StoreToken(ctx, "u1", "new"))

	token, err := svc.Token(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new", token)
}

func TestTokenMissingReturnsTokenNotSet(t *testing.T) {
	svc := newTestSecretService(t, newFakeSecretRepo())

	_, err := svc.Token(context.Background(), "nobody")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenNotSet.Code, appErrors.FromError(err).Code)
}

func TestTokenUnreadableAfterKeyRotation(t *testing.T) {
	repo := newFakeSecretRepo()
	svc := newTestSecretService(t, repo)
	ctx := context.Background()

	require.NoError(t, svc.StoreToken(ctx, "u1", "canvas-token-abc"))

	otherKey := "9999999999999999999999999999999999999999999999999999999999999999"
	box, err := crypto.NewBox(otherKey)
	require.NoError(t, err)
	rotated := NewSecretService(repo, box, zap.NewNop())

	_, err = rotated.Token(ctx, "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenNotSet.Code, appErrors.FromError(err).Code)
}

func TestHasToken(t *testing.T) {
	repo := newFakeSecretRepo()
	svc := newTestSecretService(t, repo)
	ctx := context.Background()

	ok, err := svc.HasToken(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.StoreToken(ctx, "u1", "tok"))
	ok, err = svc.HasToken(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
}
