package persistent

import (
	"context"
	"errors"
	"time"

	"torrent-catalog/pkg/models"
	"torrent-catalog/services/catalog/internal/entity"

	"gorm.io/gorm"
)

type TorrentRepository interface {
	Create(ctx context.Context, torrent *entity.Torrent) error
	GetByID(ctx context.Context, id string) (*entity.Torrent, error)
	List(ctx context.Context, filter entity.TorrentFilter) ([]*entity.Torrent, error)
	Update(ctx context.Context, torrent *entity.Torrent) error
	Delete(ctx context.Context, id string) error
	SetAggregate(ctx context.Context, id string, average float64, count int) error
}

type torrentRepository struct {
	db *gorm.DB
}

func NewTorrentRepository(db *gorm.DB) TorrentRepository {
	return &torrentRepository{db: db}
}

func (r *torrentRepository) Create(ctx context.Context, torrent *entity.Torrent) error {
	m := ToTorrentModel(torrent)
	m.AverageRating = 0
	m.RatingsCount = 0
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*torrent = *ToTorrentEntity(m)
	return nil
}

func (r *torrentRepository) GetByID(ctx context.Context, id string) (*entity.Torrent, error) {
	var m models.Torrent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrTorrentNotFound
		}
		return nil, err
	}
	return ToTorrentEntity(&m), nil
}

func (r *torrentRepository) List(ctx context.Context, filter entity.TorrentFilter) ([]*entity.Torrent, error) {
	var rows []models.Torrent
	if err := applyTorrentFilter(r.db.WithContext(ctx), filter).Find(&rows).Error; err != nil {
		return nil, err
	}

	torrents := make([]*entity.Torrent, len(rows))
	for i := range rows {
		torrents[i] = ToTorrentEntity(&rows[i])
	}
	return torrents, nil
}

// Update writes the descriptive columns only. The rating columns belong to
// SetAggregate and are never rewritten from a possibly stale copy.
func (r *torrentRepository) Update(ctx context.Context, torrent *entity.Torrent) error {
	m := ToTorrentModel(torrent)
	result := r.db.WithContext(ctx).Model(&models.Torrent{}).
		Where("id = ?", torrent.ID).
		Select("title", "description", "size", "categories", "file_key", "file_url", "updated_at").
		Updates(map[string]interface{}{
			"title":       m.Title,
			"description": m.Description,
			"size":        m.Size,
			"categories":  m.Categories,
			"file_key":    m.FileKey,
			"file_url":    m.FileURL,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrTorrentNotFound
	}
	return nil
}

// Delete removes the torrent and every comment attached to it.
func (r *torrentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("torrent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Torrent{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entity.ErrTorrentNotFound
		}
		return nil
	})
}

func (r *torrentRepository) SetAggregate(ctx context.Context, id string, average float64, count int) error {
	result := r.db.WithContext(ctx).Model(&models.Torrent{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"average_rating": average,
			"ratings_count":  count,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrTorrentNotFound
	}
	return nil
}
