package persistent

import (
	"torrent-catalog/pkg/models"
	"torrent-catalog/services/catalog/internal/entity"

	"github.com/lib/pq"
)

func ToTorrentEntity(m *models.Torrent) *entity.Torrent {
	if m == nil {
		return nil
	}

	return &entity.Torrent{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Size:          m.Size,
		Categories:    []string(m.Categories),
		UploadedBy:    m.UploadedBy,
		FileKey:       m.FileKey,
		FileURL:       m.FileURL,
		AverageRating: m.AverageRating,
		RatingsCount:  m.RatingsCount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func ToTorrentModel(e *entity.Torrent) *models.Torrent {
	if e == nil {
		return nil
	}

	return &models.Torrent{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		Size:          e.Size,
		Categories:    pq.StringArray(e.Categories),
		UploadedBy:    e.UploadedBy,
		FileKey:       e.FileKey,
		FileURL:       e.FileURL,
		AverageRating: e.AverageRating,
		RatingsCount:  e.RatingsCount,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func ToCommentEntity(m *models.Comment) *entity.Comment {
	if m == nil {
		return nil
	}

	return &entity.Comment{
		ID:         m.ID,
		TorrentID:  m.TorrentID,
		AuthorID:   m.AuthorID,
		AuthorName: m.AuthorName,
		Rating:     m.Rating,
		Text:       m.Text,
		Deleted:    m.Deleted,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func ToCommentModel(e *entity.Comment) *models.Comment {
	if e == nil {
		return nil
	}

	return &models.Comment{
		ID:         e.ID,
		TorrentID:  e.TorrentID,
		AuthorID:   e.AuthorID,
		AuthorName: e.AuthorName,
		Rating:     e.Rating,
		Text:       e.Text,
		Deleted:    e.Deleted,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}
