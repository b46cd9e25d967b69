package http

import (
	"net/http"
	"strings"

	"torrent-catalog/pkg/logger"
	"torrent-catalog/pkg/middleware"
	"torrent-catalog/services/catalog/internal/usecase"

	"github.com/gin-gonic/gin"
)

type TorrentHandler struct {
	torrentUseCase usecase.TorrentUseCase
	logger         *logger.Logger
}

func NewTorrentHandler(torrentUseCase usecase.TorrentUseCase, logger *logger.Logger) *TorrentHandler {
	return &TorrentHandler{
		torrentUseCase: torrentUseCase,
		logger:         logger,
	}
}

type CreateTorrentRequest struct {
	Title       string   `json:"title" form:"title"`
	Description string   `json:"description" form:"description"`
	Size        float64  `json:"size" form:"size"`
	Categories  []string `json:"categories" form:"categories"`
}

type UpdateTorrentRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Size        *float64 `json:"size"`
	Categories  []string `json:"categories"`
}

// ListTorrents godoc
// @Summary      Search torrents
// @Description  Case-insensitive title/description search, category any-match, date and size ranges. At most 100 results.
// @Tags         torrents
// @Produce      json
// @Param        title query string false "Title substring"
// @Param        description query string false "Description substring"
// @Param        categories query string false "Comma separated categories"
// @Param        fromDate query string false "YYYY-MM-DD"
// @Param        toDate query string false "YYYY-MM-DD, inclusive"
// @Param        minSize query number false "Minimum size in MB"
// @Param        maxSize query number false "Maximum size in MB"
// @Param        sort query string false "Sort column" Enums(created_at, size, title)
// @Param        order query string false "Sort order" Enums(asc, desc)
// @Success      200  {array}   entity.Torrent
// @Failure      500  {object}  map[string]string
// @Router       /torrents [get]
func (h *TorrentHandler) ListTorrents(c *gin.Context) {
	torrents, err := h.torrentUseCase.ListTorrents(c.Request.Context(), ParseTorrentFilter(c.Request.URL.Query()))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, torrents)
}

// GetTorrent godoc
// @Summary      Get torrent
// @Tags         torrents
// @Produce      json
// @Param        id path string true "Torrent ID"
// @Success      200  {object}  entity.Torrent
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /torrents/{id} [get]
func (h *TorrentHandler) GetTorrent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	torrent, err := h.torrentUseCase.GetTorrent(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, torrent)
}

// GetRatingSummary godoc
// @Summary      Get rating summary
// @Description  Average rating and count over live comments.
// @Tags         torrents
// @Produce      json
// @Param        id path string true "Torrent ID"
// @Success      200  {object}  entity.RatingSummary
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /torrents/{id}/rating [get]
func (h *TorrentHandler) GetRatingSummary(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	summary, err := h.torrentUseCase.GetRatingSummary(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// CreateTorrent godoc
// @Summary      Create torrent
// @Description  Accepts JSON, or multipart/form-data with an optional .torrent file.
// @Tags         torrents
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateTorrentRequest true "Torrent metadata"
// @Success      201  {object}  entity.Torrent
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /torrents [post]
func (h *TorrentHandler) CreateTorrent(c *gin.Context) {
	var req CreateTorrentRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var file *usecase.TorrentFile
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if header, err := c.FormFile("file"); err == nil {
			src, err := header.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
				return
			}
			defer src.Close()
			file = &usecase.TorrentFile{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Body:        src,
			}
		}
	}

	torrent, err := h.torrentUseCase.CreateTorrent(c.Request.Context(), middleware.CurrentPrincipal(c), usecase.TorrentInput{
		Title:       req.Title,
		Description: req.Description,
		Size:        req.Size,
		Categories:  req.Categories,
	}, file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, torrent)
}

// UpdateTorrent godoc
// @Summary      Update torrent
// @Description  Uploader or moderator only. Rating fields are not editable.
// @Tags         torrents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Torrent ID"
// @Param        request body UpdateTorrentRequest true "Fields to change"
// @Success      200  {object}  entity.Torrent
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /torrents/{id} [put]
func (h *TorrentHandler) UpdateTorrent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateTorrentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	torrent, err := h.torrentUseCase.UpdateTorrent(c.Request.Context(), middleware.CurrentPrincipal(c), id, usecase.TorrentPatch{
		Title:       req.Title,
		Description: req.Description,
		Size:        req.Size,
		Categories:  req.Categories,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, torrent)
}

// DeleteTorrent godoc
// @Summary      Delete torrent
// @Description  Moderator only. Removes the torrent and all of its comments.
// @Tags         torrents
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Torrent ID"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /torrents/{id} [delete]
func (h *TorrentHandler) DeleteTorrent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.torrentUseCase.DeleteTorrent(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Torrent deleted"})
}
