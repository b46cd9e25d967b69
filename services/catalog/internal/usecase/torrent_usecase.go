package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"torrent-catalog/pkg/auth"
	"torrent-catalog/pkg/logger"
	"torrent-catalog/services/catalog/internal/entity"
	"torrent-catalog/services/catalog/internal/repo/cache"
	"torrent-catalog/services/catalog/internal/repo/persistent"

	"github.com/google/uuid"
)

// FileStorage stores .torrent attachments. *s3.Client satisfies it.
type FileStorage interface {
	UploadFile(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}

type TorrentInput struct {
	Title       string
	Description string
	Size        float64
	Categories  []string
}

// TorrentPatch holds the editable metadata. Nil fields are left unchanged.
type TorrentPatch struct {
	Title       *string
	Description *string
	Size        *float64
	Categories  []string
}

type TorrentFile struct {
	Name        string
	ContentType string
	Body        io.ReadSeeker
}

type TorrentUseCase interface {
	ListTorrents(ctx context.Context, filter entity.TorrentFilter) ([]*entity.Torrent, error)
	GetTorrent(ctx context.Context, id string) (*entity.Torrent, error)
	CreateTorrent(ctx context.Context, actor *auth.Principal, input TorrentInput, file *TorrentFile) (*entity.Torrent, error)
	UpdateTorrent(ctx context.Context, actor *auth.Principal, id string, patch TorrentPatch) (*entity.Torrent, error)
	DeleteTorrent(ctx context.Context, id string) error
	GetRatingSummary(ctx context.Context, id string) (*entity.RatingSummary, error)
}

type torrentUseCase struct {
	torrentRepo persistent.TorrentRepository
	storage     FileStorage
	ratingCache cache.RatingCache
	cacheTTL    time.Duration
	logger      *logger.Logger
}

func NewTorrentUseCase(
	torrentRepo persistent.TorrentRepository,
	storage FileStorage,
	ratingCache cache.RatingCache,
	cacheTTL time.Duration,
	logger *logger.Logger,
) TorrentUseCase {
	if ratingCache == nil {
		ratingCache = cache.NewRatingCache(nil)
	}
	return &torrentUseCase{
		torrentRepo: torrentRepo,
		storage:     storage,
		ratingCache: ratingCache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

func (uc *torrentUseCase) ListTorrents(ctx context.Context, filter entity.TorrentFilter) ([]*entity.Torrent, error) {
	return uc.torrentRepo.List(ctx, filter)
}

func (uc *torrentUseCase) GetTorrent(ctx context.Context, id string) (*entity.Torrent, error) {
	return uc.torrentRepo.GetByID(ctx, id)
}

func (uc *torrentUseCase) CreateTorrent(ctx context.Context, actor *auth.Principal, input TorrentInput, file *TorrentFile) (*entity.Torrent, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	torrent := &entity.Torrent{
		Title:       input.Title,
		Description: input.Description,
		Size:        input.Size,
		Categories:  input.Categories,
		UploadedBy:  actor.ID,
	}
	if err := ValidateTorrent(torrent); err != nil {
		return nil, err
	}

	if file != nil {
		if uc.storage == nil {
			return nil, ErrUploadsDisabled
		}
		key := AttachmentKey(actor.ID, file.Name)
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/x-bittorrent"
		}

		url, err := uc.storage.UploadFile(ctx, key, file.Body, contentType)
		if err != nil {
			uc.logger.Error("Failed to upload torrent file: %v", err)
			return nil, fmt.Errorf("failed to upload torrent file: %w", err)
		}
		torrent.FileKey = key
		torrent.FileURL = url
	}

	if err := uc.torrentRepo.Create(ctx, torrent); err != nil {
		uc.logger.Error("Failed to create torrent: %v", err)
		uc.discardFile(torrent.FileKey)
		return nil, fmt.Errorf("failed to create torrent: %w", err)
	}

	return torrent, nil
}

func (uc *torrentUseCase) UpdateTorrent(ctx context.Context, actor *auth.Principal, id string, patch TorrentPatch) (*entity.Torrent, error) {
	if patch.Title == nil && patch.Description == nil && patch.Size == nil && patch.Categories == nil {
		return nil, ErrNothingToUpdate
	}

	torrent, err := uc.torrentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(actor, torrent.UploadedBy); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		torrent.Title = *patch.Title
	}
	if patch.Description != nil {
		torrent.Description = *patch.Description
	}
	if patch.Size != nil {
		torrent.Size = *patch.Size
	}
	if patch.Categories != nil {
		torrent.Categories = patch.Categories
	}
	if err := ValidateTorrent(torrent); err != nil {
		return nil, err
	}

	if err := uc.torrentRepo.Update(ctx, torrent); err != nil {
		return nil, err
	}
	return uc.torrentRepo.GetByID(ctx, id)
}

// DeleteTorrent removes the torrent with its comments and attachment. The
// moderator check happens at the route.
func (uc *torrentUseCase) DeleteTorrent(ctx context.Context, id string) error {
	torrent, err := uc.torrentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.torrentRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := uc.ratingCache.Invalidate(ctx, id); err != nil {
		uc.logger.Warn("Failed to invalidate rating cache for torrent %s: %v", id, err)
	}
	uc.discardFile(torrent.FileKey)
	return nil
}

// GetRatingSummary serves the rating from cache and falls back to the
// torrent row. Every aggregate write invalidates the cached entry.
func (uc *torrentUseCase) GetRatingSummary(ctx context.Context, id string) (*entity.RatingSummary, error) {
	cached, err := uc.ratingCache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		uc.logger.Warn("Rating cache read failed for torrent %s: %v", id, err)
	}

	torrent, err := uc.torrentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := torrent.RatingSummary()
	if err := uc.ratingCache.Set(ctx, summary, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache rating for torrent %s: %v", id, err)
	}
	return &summary, nil
}

func (uc *torrentUseCase) discardFile(key string) {
	if key == "" || uc.storage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := uc.storage.DeleteFile(ctx, key); err != nil {
		uc.logger.Error("Failed to delete torrent file %s: %v", key, err)
	}
}

// AttachmentKey places uploads under the uploader with a random name that
// keeps the original extension.
func AttachmentKey(uploaderID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".torrent"
	}
	return fmt.Sprintf("torrents/%s/%s%s", uploaderID, uuid.New().String(), ext)
}
