package entity

import "time"

const (
	MinRating     = 1
	MaxRating     = 5
	MaxCommentLen = 160
)

type Comment struct {
	ID         string    `json:"id"`
	TorrentID  string    `json:"torrent_id"`
	AuthorID   *string   `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	Deleted    bool      `json:"deleted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Author returns the author id, or "" for anonymous comments.
func (c *Comment) Author() string {
	if c.AuthorID == nil {
		return ""
	}
	return *c.AuthorID
}

// CommentPatch holds the fields an edit may change. Nil means unchanged.
type CommentPatch struct {
	Text   *string
	Rating *int
}

func (p CommentPatch) Empty() bool {
	return p.Text == nil && p.Rating == nil
}
