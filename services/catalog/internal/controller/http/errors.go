package http

import (
	"errors"
	"net/http"

	"torrent-catalog/pkg/logger"
	"torrent-catalog/services/catalog/internal/entity"
	"torrent-catalog/services/catalog/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps usecase errors onto status codes. Unknown errors are
// logged and hidden behind a 500.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	switch {
	case usecase.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrTorrentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Torrent not found"})
	case errors.Is(err, entity.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
	case errors.Is(err, usecase.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, usecase.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
	default:
		log.Error("Request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// pathID reads a uuid path parameter, answering 400 when it is malformed.
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return "", false
	}
	return id, true
}
