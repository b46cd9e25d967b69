package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Torrent struct {
	ID            string         `gorm:"type:uuid;primary_key" json:"id"`
	Title         string         `gorm:"not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	Size          float64        `gorm:"not null;default:0" json:"size"`
	Categories    pq.StringArray `gorm:"type:text[]" json:"categories"`
	UploadedBy    string         `gorm:"type:uuid;index" json:"uploaded_by"`
	FileKey       string         `gorm:"type:varchar(500)" json:"-"`
	FileURL       string         `gorm:"type:varchar(500)" json:"file_url,omitempty"`
	AverageRating float64        `gorm:"type:numeric(4,2);not null;default:0" json:"average_rating"`
	RatingsCount  int            `gorm:"not null;default:0" json:"ratings_count"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	Comments []Comment `gorm:"foreignKey:TorrentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Torrent) TableName() string {
	return "torrents"
}

func (t *Torrent) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
