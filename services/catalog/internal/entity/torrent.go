package entity

import "time"

type Torrent struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Size          float64   `json:"size"`
	Categories    []string  `json:"categories"`
	UploadedBy    string    `json:"uploaded_by"`
	FileKey       string    `json:"-"`
	FileURL       string    `json:"file_url,omitempty"`
	AverageRating float64   `json:"average_rating"`
	RatingsCount  int       `json:"ratings_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RatingSummary is the derived view of a torrent's live comments.
type RatingSummary struct {
	TorrentID     string  `json:"torrent_id"`
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int     `json:"ratings_count"`
}

func (t *Torrent) RatingSummary() RatingSummary {
	return RatingSummary{
		TorrentID:     t.ID,
		AverageRating: t.AverageRating,
		RatingsCount:  t.RatingsCount,
	}
}

type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortBySize      SortField = "size"
	SortByTitle     SortField = "title"
)

// TorrentFilter is the parsed form of the catalog search query. Nil bounds
// are not applied.
type TorrentFilter struct {
	Title       string
	Description string
	Categories  []string
	From        *time.Time
	To          *time.Time
	MinSize     *float64
	MaxSize     *float64
	SortField   SortField
	Descending  bool
	Limit       int
}
