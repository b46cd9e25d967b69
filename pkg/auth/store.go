package auth

import (
	"context"
	"errors"
	"fmt"

	"torrent-catalog/pkg/models"

	"gorm.io/gorm"
)

type gormCredentialStore struct {
	db *gorm.DB
}

func NewGormCredentialStore(db *gorm.DB) CredentialStore {
	return &gormCredentialStore{db: db}
}

func (s *gormCredentialStore) FindByID(ctx context.Context, id string) (*Principal, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *gormCredentialStore) FindByUsername(ctx context.Context, username string) (*Principal, error) {
	return s.findOne(ctx, "username = ?", username)
}

func (s *gormCredentialStore) UpdateBanState(ctx context.Context, id string, banned bool, reason string) error {
	if !banned {
		reason = ""
	}
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"banned": banned, "ban_reason": reason})
	if result.Error != nil {
		return fmt.Errorf("update ban state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPrincipalNotFound
	}
	return nil
}

func (s *gormCredentialStore) findOne(ctx context.Context, query string, arg string) (*Principal, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find principal: %w", err)
	}
	return PrincipalFromUser(&user), nil
}

func PrincipalFromUser(u *models.User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{
		ID:        u.ID,
		Username:  u.Username,
		Role:      Role(u.Role),
		Banned:    u.Banned,
		BanReason: u.BanReason,
	}
}
