package entity

import "errors"

var (
	ErrTorrentNotFound = errors.New("torrent not found")
	ErrCommentNotFound = errors.New("comment not found")
)
