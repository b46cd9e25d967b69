package usecase

import (
	"context"
	"fmt"
	"time"

	"torrent-catalog/pkg/auth"
	"torrent-catalog/pkg/logger"
	"torrent-catalog/pkg/queue"
	"torrent-catalog/services/catalog/internal/entity"
	"torrent-catalog/services/catalog/internal/repo/persistent"
)

// Notifier publishes events for the notification consumer. *queue.Client
// satisfies it.
type Notifier interface {
	Publish(ctx context.Context, event queue.Event) error
}

type CommentUseCase interface {
	ListComments(ctx context.Context, torrentID string) ([]*entity.Comment, error)
	CreateComment(ctx context.Context, actor *auth.Principal, torrentID, text string, rating int) (*entity.Comment, error)
	UpdateComment(ctx context.Context, actor *auth.Principal, commentID string, patch entity.CommentPatch) (*entity.Comment, error)
	DeleteComment(ctx context.Context, actor *auth.Principal, commentID string) error
}

type commentUseCase struct {
	commentRepo persistent.CommentRepository
	torrentRepo persistent.TorrentRepository
	aggregator  RatingAggregator
	notifier    Notifier
	logger      *logger.Logger
}

func NewCommentUseCase(
	commentRepo persistent.CommentRepository,
	torrentRepo persistent.TorrentRepository,
	aggregator RatingAggregator,
	notifier Notifier,
	logger *logger.Logger,
) CommentUseCase {
	return &commentUseCase{
		commentRepo: commentRepo,
		torrentRepo: torrentRepo,
		aggregator:  aggregator,
		notifier:    notifier,
		logger:      logger,
	}
}

func (uc *commentUseCase) ListComments(ctx context.Context, torrentID string) ([]*entity.Comment, error) {
	if _, err := uc.torrentRepo.GetByID(ctx, torrentID); err != nil {
		return nil, err
	}
	return uc.commentRepo.ListActiveByTorrent(ctx, torrentID)
}

func (uc *commentUseCase) CreateComment(ctx context.Context, actor *auth.Principal, torrentID, text string, rating int) (*entity.Comment, error) {
	text, err := ValidateComment(text, rating)
	if err != nil {
		return nil, err
	}

	torrent, err := uc.torrentRepo.GetByID(ctx, torrentID)
	if err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		TorrentID:  torrentID,
		AuthorName: "Anonymous",
		Rating:     rating,
		Text:       text,
	}
	if actor != nil {
		authorID := actor.ID
		comment.AuthorID = &authorID
		comment.AuthorName = actor.Username
	}

	if err := uc.commentRepo.Create(ctx, comment); err != nil {
		uc.logger.Error("Failed to create comment on torrent %s: %v", torrentID, err)
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	uc.recompute(ctx, torrentID)

	if uc.notifier != nil && torrent.UploadedBy != "" && torrent.UploadedBy != comment.Author() {
		go uc.notifyUploader(torrent, comment)
	}

	return comment, nil
}

func (uc *commentUseCase) UpdateComment(ctx context.Context, actor *auth.Principal, commentID string, patch entity.CommentPatch) (*entity.Comment, error) {
	patch, err := ValidatePatch(patch)
	if err != nil {
		return nil, err
	}

	existing, err := uc.commentRepo.GetActiveByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(actor, existing.Author()); err != nil {
		return nil, err
	}

	updated, err := uc.commentRepo.UpdateFields(ctx, commentID, patch)
	if err != nil {
		return nil, err
	}

	uc.recompute(ctx, existing.TorrentID)
	return updated, nil
}

func (uc *commentUseCase) DeleteComment(ctx context.Context, actor *auth.Principal, commentID string) error {
	existing, err := uc.commentRepo.GetActiveByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := checkOwnership(actor, existing.Author()); err != nil {
		return err
	}

	if err := uc.commentRepo.SoftDelete(ctx, commentID); err != nil {
		return err
	}

	uc.recompute(ctx, existing.TorrentID)
	return nil
}

// recompute refreshes the torrent aggregate after a comment write. The
// comment write already succeeded, so a failure here is only logged.
func (uc *commentUseCase) recompute(ctx context.Context, torrentID string) {
	if _, err := uc.aggregator.Recompute(ctx, torrentID); err != nil {
		uc.logger.Error("Failed to recompute rating for torrent %s: %v", torrentID, err)
	}
}

func (uc *commentUseCase) notifyUploader(torrent *entity.Torrent, comment *entity.Comment) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := queue.Event{
		Type:   queue.EventCommentCreated,
		UserID: torrent.UploadedBy,
		Payload: map[string]interface{}{
			"torrent_id":    torrent.ID,
			"torrent_title": torrent.Title,
			"comment_id":    comment.ID,
			"author_name":   comment.AuthorName,
			"rating":        comment.Rating,
		},
		Priority: 3,
	}
	if err := uc.notifier.Publish(ctx, event); err != nil {
		uc.logger.Error("[NOTIFICATION QUEUE] Failed to notify uploader %s: %v", torrent.UploadedBy, err)
	}
}

func checkOwnership(actor *auth.Principal, ownerID string) error {
	decision := auth.CanActOn(actor, ownerID)
	if decision.Allowed {
		return nil
	}
	if decision.Reason == auth.ReasonUnauthenticated {
		return ErrUnauthenticated
	}
	return ErrForbidden
}
