package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Anandhg36/RMIT-Hackathon/internal/models"
	"github.com/Anandhg36/RMIT-Hackathon/pkg/crypto"
	appErrors "github.com/Anandhg36/RMIT-Hackathon/pkg/errors"
)

type secretRepository interface {
	Upsert(ctx context.Context, secret *models.UserSecret) error
	FindByUserID(ctx context.Context, userID string) (*models.UserSecret, error)
}

// SecretService stores each user's upstream LMS token sealed at rest. Tokens
// are only ever opened on the way out to an upstream request.
type SecretService struct {
	repo   secretRepository
	box    *crypto.Box
	logger *zap.Logger
}

// NewSecretService constructs a SecretService.
func NewSecretService(repo secretRepository, box *crypto.Box, logger *zap.Logger) *SecretService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecretService{repo: repo, box: box, logger: logger}
}

// StoreToken seals and persists the user's upstream token, replacing any
// previously stored one.
func (s *SecretService) StoreToken(ctx context.Context, userID, token string) error {
	sealed, err := s.box.Seal([]byte(token))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seal token")
	}
	secret := &models.UserSecret{
		UserID:           userID,
		UpstreamTokenEnc: sealed,
		UpdatedAt:        time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, secret); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store token")
	}
	s.logger.Info("upstream token stored", zap.String("user_id", userID))
	return nil
}

// Token opens the stored token for the user. Users without a stored token
// get ErrTokenNotSet.
func (s *SecretService) Token(ctx context.Context, userID string) (string, error) {
	secret, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrTokenNotSet, "")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load token")
	}
	plaintext, err := s.box.Open(secret.UpstreamTokenEnc)
	if err != nil {
		// A key rotation invalidates stored tokens; the user must store
		// a fresh one.
		s.logger.Warn("stored token could not be opened", zap.String("user_id", userID), zap.Error(err))
		return "", appErrors.Clone(appErrors.ErrTokenNotSet, "stored upstream token is unreadable, store it again")
	}
	return string(plaintext), nil
}

// HasToken reports whether the user has a stored token.
func (s *SecretService) HasToken(ctx context.Context, userID string) (bool, error) {
	_, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load token")
	}
	return true, nil
}
