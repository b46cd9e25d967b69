package usecase

import (
	"context"
	"fmt"

	"torrent-catalog/pkg/logger"
	"torrent-catalog/services/catalog/internal/entity"
	"torrent-catalog/services/catalog/internal/repo/cache"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LiveCommentLister reads the comments that count towards a rating.
type LiveCommentLister interface {
	ListActiveByTorrent(ctx context.Context, torrentID string) ([]*entity.Comment, error)
}

// AggregateWriter persists the derived rating fields of a torrent.
type AggregateWriter interface {
	SetAggregate(ctx context.Context, torrentID string, average float64, count int) error
}

// RatingAggregator rebuilds a torrent's average rating and count from its live
// comments. Recompute is idempotent and takes no lock: two concurrent runs
// both read committed state, so whichever writes last still stores the
// aggregate of that state.
type RatingAggregator interface {
	Recompute(ctx context.Context, torrentID string) (entity.RatingSummary, error)
}

type ratingAggregator struct {
	comments LiveCommentLister
	torrents AggregateWriter
	cache    cache.RatingCache
	logger   *logger.Logger
	tracer   trace.Tracer
}

func NewRatingAggregator(
	comments LiveCommentLister,
	torrents AggregateWriter,
	ratingCache cache.RatingCache,
	logger *logger.Logger,
) RatingAggregator {
	if ratingCache == nil {
		ratingCache = cache.NewRatingCache(nil)
	}
	return &ratingAggregator{
		comments: comments,
		torrents: torrents,
		cache:    ratingCache,
		logger:   logger,
		tracer:   otel.Tracer("torrent-catalog/services/catalog/usecase"),
	}
}

func (a *ratingAggregator) Recompute(ctx context.Context, torrentID string) (entity.RatingSummary, error) {
	ctx, span := a.tracer.Start(ctx, "RatingAggregator.Recompute",
		trace.WithAttributes(attribute.String("torrent.id", torrentID)))
	defer span.End()

	live, err := a.comments.ListActiveByTorrent(ctx, torrentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list comments")
		return entity.RatingSummary{}, fmt.Errorf("list live comments: %w", err)
	}

	ratings := make([]int, len(live))
	for i, c := range live {
		ratings[i] = c.Rating
	}
	average, count := Summarize(ratings)
	summary := entity.RatingSummary{TorrentID: torrentID, AverageRating: average, RatingsCount: count}

	span.SetAttributes(
		attribute.Float64("rating.average", average),
		attribute.Int("rating.count", count),
	)

	if err := a.torrents.SetAggregate(ctx, torrentID, average, count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "set aggregate")
		return summary, fmt.Errorf("write aggregate: %w", err)
	}

	if err := a.cache.Invalidate(ctx, torrentID); err != nil {
		a.logger.Warn("Failed to invalidate rating cache for torrent %s: %v", torrentID, err)
	}

	return summary, nil
}

// Summarize returns the mean of ratings rounded half up to two decimals, and
// the number of ratings. An empty slice yields 0, 0.
func Summarize(ratings []int) (float64, int) {
	n := len(ratings)
	if n == 0 {
		return 0, 0
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}

	// round(100*sum/n) half up, in integers to avoid binary fractions
	cents := (200*sum + n) / (2 * n)
	return float64(cents) / 100, n
}
