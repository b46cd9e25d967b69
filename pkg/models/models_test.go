package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_BeforeCreate(t *testing.T) {
	user := &User{
		Email:    "test@example.com",
		Username: "testuser",
		Password: "password",
		Role:     RoleUser,
	}

	err := user.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
}

func TestUser_BeforeCreate_WithID(t *testing.T) {
	existingID := "existing-id-123"
	user := &User{
		ID:       existingID,
		Email:    "test@example.com",
		Username: "testuser",
		Password: "password",
	}

	err := user.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.Equal(t, existingID, user.ID)
}

func TestTorrent_BeforeCreate(t *testing.T) {
	torrent := &Torrent{
		Title:      "Big Buck Bunny",
		Size:       263.4,
		Categories: []string{"Film", "Animation"},
	}

	err := torrent.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, torrent.ID)
	assert.Zero(t, torrent.AverageRating)
	assert.Zero(t, torrent.RatingsCount)
}

func TestTorrent_BeforeCreate_WithID(t *testing.T) {
	torrent := &Torrent{ID: "existing-torrent-id", Title: "Sintel"}

	err := torrent.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.Equal(t, "existing-torrent-id", torrent.ID)
}

func TestComment_BeforeCreate(t *testing.T) {
	comment := &Comment{
		TorrentID:  "torrent-123",
		AuthorName: "alice",
		Rating:     4,
		Text:       "Great quality",
	}

	err := comment.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.False(t, comment.Deleted)
	assert.Nil(t, comment.AuthorID)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName())
	assert.Equal(t, "torrents", Torrent{}.TableName())
	assert.Equal(t, "comments", Comment{}.TableName())
}
