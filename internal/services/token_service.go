package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"gorm.io/gorm"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/models"
)

// tokenService issues and validates opaque API tokens. A user holds exactly
// one token; repeated logins hand back the same key until it is revoked.
type tokenService struct {
	db *gorm.DB
}

// NewTokenService creates a new TokenServicer.
func NewTokenService(db *gorm.DB) TokenServicer {
	return &tokenService{db: db}
}

// Issue returns the user's API token, minting one on first use. The key
// stays stable across logins; Revoke is the only way to invalidate it.
func (s *tokenService) Issue(userID uint) (string, error) {
	var existing models.AuthToken
	err := s.db.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return existing.Key, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	token := hex.EncodeToString(raw)

	if err := s.db.Create(&models.AuthToken{UserID: userID, Key: token}).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return token, nil
}

// Authenticate resolves a token key to its active user.
func (s *tokenService) Authenticate(token string) (*models.User, error) {
	if token == "" {
		return nil, apperrors.ErrUnauthorized
	}

	var record models.AuthToken
	if err := s.db.Where("key = ?", token).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var user models.User
	if err := s.db.First(&user, record.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}

	return &user, nil
}

// Revoke deletes the user's token. Requests carrying the old token fail from
// this point on; the next Issue mints a fresh key.
func (s *tokenService) Revoke(userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&models.AuthToken{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
