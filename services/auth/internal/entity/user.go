package entity

import (
	"time"

	"torrent-catalog/pkg/auth"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Role      auth.Role `json:"role"`
	Banned    bool      `json:"banned"`
	BanReason string    `json:"ban_reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
