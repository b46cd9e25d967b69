package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment carries its own deleted flag instead of gorm.DeletedAt: a deleted
// comment keeps its content and only drops out of the rating aggregate.
type Comment struct {
	ID         string    `gorm:"type:uuid;primary_key" json:"id"`
	TorrentID  string    `gorm:"type:uuid;not null;index:idx_comments_torrent_live,priority:1" json:"torrent_id"`
	AuthorID   *string   `gorm:"type:uuid;index" json:"author_id"`
	AuthorName string    `gorm:"type:varchar(50);not null" json:"author_name"`
	Rating     int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Text       string    `gorm:"type:varchar(160);not null" json:"text"`
	Deleted    bool      `gorm:"not null;default:false;index:idx_comments_torrent_live,priority:2" json:"deleted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
