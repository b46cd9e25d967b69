package persistent

import (
	"context"
	"errors"
	"time"

	"torrent-catalog/pkg/models"
	"torrent-catalog/services/catalog/internal/entity"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	GetActiveByID(ctx context.Context, id string) (*entity.Comment, error)
	ListActiveByTorrent(ctx context.Context, torrentID string) ([]*entity.Comment, error)
	UpdateFields(ctx context.Context, id string, patch entity.CommentPatch) (*entity.Comment, error)
	SoftDelete(ctx context.Context, id string) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	m := ToCommentModel(comment)
	m.Deleted = false
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*comment = *ToCommentEntity(m)
	return nil
}

func (r *commentRepository) GetActiveByID(ctx context.Context, id string) (*entity.Comment, error) {
	var m models.Comment
	err := r.db.WithContext(ctx).Where("id = ? AND deleted = ?", id, false).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrCommentNotFound
		}
		return nil, err
	}
	return ToCommentEntity(&m), nil
}

// ListActiveByTorrent returns live comments, newest first.
func (r *commentRepository) ListActiveByTorrent(ctx context.Context, torrentID string) ([]*entity.Comment, error) {
	var rows []models.Comment
	err := r.db.WithContext(ctx).
		Where("torrent_id = ? AND deleted = ?", torrentID, false).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	comments := make([]*entity.Comment, len(rows))
	for i := range rows {
		comments[i] = ToCommentEntity(&rows[i])
	}
	return comments, nil
}

func (r *commentRepository) UpdateFields(ctx context.Context, id string, patch entity.CommentPatch) (*entity.Comment, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if patch.Text != nil {
		updates["text"] = *patch.Text
	}
	if patch.Rating != nil {
		updates["rating"] = *patch.Rating
	}

	result := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, entity.ErrCommentNotFound
	}
	return r.GetActiveByID(ctx, id)
}

// SoftDelete marks a live comment deleted. Deleted comments are terminal, so
// a second delete reports ErrCommentNotFound.
func (r *commentRepository) SoftDelete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]interface{}{
			"deleted":    true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrCommentNotFound
	}
	return nil
}
