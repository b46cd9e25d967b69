package persistent

import (
	"torrent-catalog/pkg/auth"
	"torrent-catalog/pkg/models"
	"torrent-catalog/services/auth/internal/entity"
)

func ToUserEntity(m *models.User) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:        m.ID,
		Email:     m.Email,
		Username:  m.Username,
		Password:  m.Password,
		Role:      auth.Role(m.Role),
		Banned:    m.Banned,
		BanReason: m.BanReason,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToUserModel(e *entity.User) *models.User {
	if e == nil {
		return nil
	}

	return &models.User{
		ID:        e.ID,
		Email:     e.Email,
		Username:  e.Username,
		Password:  e.Password,
		Role:      models.UserRole(e.Role),
		Banned:    e.Banned,
		BanReason: e.BanReason,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
