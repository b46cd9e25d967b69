package usecase

import (
	"context"
	"sync"
	"testing"

	"torrent-catalog/pkg/auth"
	"torrent-catalog/pkg/logger"
	"torrent-catalog/services/catalog/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice     = &auth.Principal{ID: "user-alice", Username: "alice", Role: auth.RoleUser}
	bob       = &auth.Principal{ID: "user-bob", Username: "bob", Role: auth.RoleUser}
	moderator = &auth.Principal{ID: "user-mod", Username: "mod", Role: auth.RoleModerator}
)

type catalogFixture struct {
	store      *memCatalog
	cache      *memRatingCache
	aggregator RatingAggregator
	comments   CommentUseCase
}

func newCatalogFixture() *catalogFixture {
	store := newMemCatalog()
	ratingCache := newMemRatingCache()
	log := logger.New()
	aggregator := NewRatingAggregator(commentStore{store}, store, ratingCache, log)
	return &catalogFixture{
		store:      store,
		cache:      ratingCache,
		aggregator: aggregator,
		comments:   NewCommentUseCase(commentStore{store}, store, aggregator, nil, log),
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		average float64
		count   int
	}{
		{"empty", nil, 0, 0},
		{"single", []int{4}, 4, 1},
		{"two", []int{5, 3}, 4, 2},
		{"thirds round down", []int{1, 1, 2}, 1.33, 3},
		{"thirds round up", []int{5, 5, 4}, 4.67, 3},
		{"half cent rounds up", []int{3, 3, 3, 2, 2, 2, 1, 1}, 2.13, 8},
		{"all fives", []int{5, 5, 5, 5}, 5, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			average, count := Summarize(tt.ratings)
			assert.Equal(t, tt.average, average)
			assert.Equal(t, tt.count, count)
		})
	}
}

func TestSummarize_ExactHalfCent(t *testing.T) {
	// 423/200 = 2.115 exactly
	ratings := make([]int, 0, 200)
	for i := 0; i < 200; i++ {
		r := 2
		if i < 23 {
			r = 3
		}
		ratings = append(ratings, r)
	}

	average, count := Summarize(ratings)
	assert.Equal(t, 2.12, average)
	assert.Equal(t, 200, count)
}

func TestRecompute_CreateThenDelete(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	torrentID := f.store.addTorrent("uploader")

	five, err := f.comments.CreateComment(ctx, alice, torrentID, "great", 5)
	require.NoError(t, err)
	three, err := f.comments.CreateComment(ctx, bob, torrentID, "fine", 3)
	require.NoError(t, err)

	got := f.store.torrent(torrentID)
	assert.Equal(t, 4.0, got.AverageRating)
	assert.Equal(t, 2, got.RatingsCount)

	require.NoError(t, f.comments.DeleteComment(ctx, bob, three.ID))
	got = f.store.torrent(torrentID)
	assert.Equal(t, 5.0, got.AverageRating)
	assert.Equal(t, 1, got.RatingsCount)

	require.NoError(t, f.comments.DeleteComment(ctx, alice, five.ID))
	got = f.store.torrent(torrentID)
	assert.Equal(t, 0.0, got.AverageRating)
	assert.Equal(t, 0, got.RatingsCount)
}

func TestRecompute_EditChangesAverage(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	torrentID := f.store.addTorrent("uploader")

	_, err := f.comments.CreateComment(ctx, alice, torrentID, "great", 5)
	require.NoError(t, err)
	three, err := f.comments.CreateComment(ctx, bob, torrentID, "meh", 3)
	require.NoError(t, err)

	rating := 5
	_, err = f.comments.UpdateComment(ctx, bob, three.ID, entity.CommentPatch{Rating: &rating})
	require.NoError(t, err)

	got := f.store.torrent(torrentID)
	assert.Equal(t, 5.0, got.AverageRating)
	assert.Equal(t, 2, got.RatingsCount)
}

func TestRecompute_Idempotent(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	torrentID := f.store.addTorrent("uploader")

	for _, r := range []int{1, 2, 2} {
		_, err := f.comments.CreateComment(ctx, alice, torrentID, "x", r)
		require.NoError(t, err)
	}

	first, err := f.aggregator.Recompute(ctx, torrentID)
	require.NoError(t, err)
	second, err := f.aggregator.Recompute(ctx, torrentID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1.67, second.AverageRating)
	assert.Equal(t, 3, second.RatingsCount)
}

func TestRecompute_IgnoresOtherTorrents(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	a := f.store.addTorrent("uploader")
	b := f.store.addTorrent("uploader")

	_, err := f.comments.CreateComment(ctx, alice, a, "x", 1)
	require.NoError(t, err)
	_, err = f.comments.CreateComment(ctx, alice, b, "x", 5)
	require.NoError(t, err)

	assert.Equal(t, 1.0, f.store.torrent(a).AverageRating)
	assert.Equal(t, 5.0, f.store.torrent(b).AverageRating)
}

func TestRecompute_InvalidatesCache(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	torrentID := f.store.addTorrent("uploader")
	require.NoError(t, f.cache.Set(ctx, entity.RatingSummary{TorrentID: torrentID, AverageRating: 3, RatingsCount: 9}, 0))

	_, err := f.aggregator.Recompute(ctx, torrentID)
	require.NoError(t, err)

	_, err = f.cache.Get(ctx, torrentID)
	assert.Error(t, err)
	assert.Contains(t, f.cache.invalidated, torrentID)
}

func TestRecompute_ReadFailure(t *testing.T) {
	f := newCatalogFixture()
	torrentID := f.store.addTorrent("uploader")
	f.store.listErr = errStoreDown

	_, err := f.aggregator.Recompute(context.Background(), torrentID)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 0, f.store.aggregates)
}

func TestRecompute_WriteFailure(t *testing.T) {
	f := newCatalogFixture()
	torrentID := f.store.addTorrent("uploader")
	f.store.aggregateErr = errStoreDown

	_, err := f.aggregator.Recompute(context.Background(), torrentID)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, f.cache.invalidated)
}

func TestRecompute_ConcurrentWritersConverge(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	torrentID := f.store.addTorrent("uploader")

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := alice
			if i%2 == 0 {
				actor = bob
			}
			_, err := f.comments.CreateComment(ctx, actor, torrentID, "concurrent", i%5+1)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// once writes stop, any recompute lands on the true aggregate
	summary, err := f.aggregator.Recompute(ctx, torrentID)
	require.NoError(t, err)

	live, err := commentStore{f.store}.ListActiveByTorrent(ctx, torrentID)
	require.NoError(t, err)
	ratings := make([]int, len(live))
	for i, c := range live {
		ratings[i] = c.Rating
	}
	wantAvg, wantCount := Summarize(ratings)

	assert.Equal(t, writers, wantCount)
	assert.Equal(t, 3.0, wantAvg)
	assert.Equal(t, wantAvg, summary.AverageRating)
	got := f.store.torrent(torrentID)
	assert.Equal(t, wantAvg, got.AverageRating)
	assert.Equal(t, wantCount, got.RatingsCount)
}
