package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectURL(t *testing.T) {
	assert.Equal(t,
		"http://localhost:9000/torrent-files/torrents/u1/abc.torrent",
		ObjectURL("http://localhost:9000", "us-east-1", "torrent-files", "torrents/u1/abc.torrent", true))

	assert.Equal(t,
		"https://minio.example.com/torrent-files/k",
		ObjectURL("https://minio.example.com", "", "torrent-files", "k", false))

	assert.Equal(t,
		"https://torrent-files.s3.eu-west-1.amazonaws.com/k",
		ObjectURL("", "eu-west-1", "torrent-files", "k", false))

	assert.Equal(t,
		"https://torrent-files.s3.us-east-1.amazonaws.com/k",
		ObjectURL("", "", "torrent-files", "k", false))
}
