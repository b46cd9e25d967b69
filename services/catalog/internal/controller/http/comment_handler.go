package http

import (
	"net/http"

	"torrent-catalog/pkg/logger"
	"torrent-catalog/pkg/middleware"
	"torrent-catalog/services/catalog/internal/entity"
	"torrent-catalog/services/catalog/internal/usecase"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentUseCase usecase.CommentUseCase
	logger         *logger.Logger
}

func NewCommentHandler(commentUseCase usecase.CommentUseCase, logger *logger.Logger) *CommentHandler {
	return &CommentHandler{
		commentUseCase: commentUseCase,
		logger:         logger,
	}
}

type CreateCommentRequest struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

type UpdateCommentRequest struct {
	Text   *string `json:"text"`
	Rating *int    `json:"rating"`
}

// ListComments godoc
// @Summary      List comments
// @Description  Live comments of a torrent, newest first.
// @Tags         comments
// @Produce      json
// @Param        id path string true "Torrent ID"
// @Success      200  {array}   entity.Comment
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /torrents/{id}/comments [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	torrentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	comments, err := h.commentUseCase.ListComments(c.Request.Context(), torrentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// CreateComment godoc
// @Summary      Comment on a torrent
// @Description  Text is trimmed and cut to 160 characters. Rating must be 1-5.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Torrent ID"
// @Param        request body CreateCommentRequest true "Comment"
// @Success      201  {object}  entity.Comment
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /torrents/{id}/comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	torrentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comment, err := h.commentUseCase.CreateComment(c.Request.Context(), middleware.CurrentPrincipal(c), torrentID, req.Text, req.Rating)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// UpdateComment godoc
// @Summary      Edit a comment
// @Description  Author or moderator only.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Comment ID"
// @Param        request body UpdateCommentRequest true "Fields to change"
// @Success      200  {object}  entity.Comment
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /comments/{id} [put]
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comment, err := h.commentUseCase.UpdateComment(c.Request.Context(), middleware.CurrentPrincipal(c), commentID, entity.CommentPatch{
		Text:   req.Text,
		Rating: req.Rating,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Description  Author or moderator only. The comment stops counting towards the rating.
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Comment ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.commentUseCase.DeleteComment(c.Request.Context(), middleware.CurrentPrincipal(c), commentID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
