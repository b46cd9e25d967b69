package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"torrent-catalog/pkg/queue"
	"torrent-catalog/services/catalog/internal/entity"
	"torrent-catalog/services/catalog/internal/repo/cache"
)

// memCatalog is an in-memory comment and torrent store shared by the
// aggregator and usecase tests.
type memCatalog struct {
	mu           sync.Mutex
	seq          int
	clock        time.Time
	torrents     map[string]*entity.Torrent
	comments     map[string]*entity.Comment
	aggregateErr error
	listErr      error
	aggregates   int
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		torrents: make(map[string]*entity.Torrent),
		comments: make(map[string]*entity.Comment),
	}
}

func (m *memCatalog) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memCatalog) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memCatalog) addTorrent(uploader string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID("torrent")
	m.torrents[id] = &entity.Torrent{ID: id, Title: "title " + id, UploadedBy: uploader, CreatedAt: m.tick()}
	return id
}

func (m *memCatalog) torrent(id string) entity.Torrent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.torrents[id]
}

func (m *memCatalog) comment(id string) entity.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.comments[id]
}

// TorrentRepository

func (m *memCatalog) Create(ctx context.Context, t *entity.Torrent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	cp.ID = m.nextID("torrent")
	cp.CreatedAt = m.tick()
	cp.UpdatedAt = cp.CreatedAt
	m.torrents[cp.ID] = &cp
	*t = cp
	return nil
}

func (m *memCatalog) GetByID(ctx context.Context, id string) (*entity.Torrent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.torrents[id]
	if !ok {
		return nil, entity.ErrTorrentNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memCatalog) List(ctx context.Context, filter entity.TorrentFilter) ([]*entity.Torrent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Torrent, 0, len(m.torrents))
	for _, t := range m.torrents {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memCatalog) Update(ctx context.Context, t *entity.Torrent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.torrents[t.ID]
	if !ok {
		return entity.ErrTorrentNotFound
	}
	cur.Title = t.Title
	cur.Description = t.Description
	cur.Size = t.Size
	cur.Categories = t.Categories
	cur.FileKey = t.FileKey
	cur.FileURL = t.FileURL
	cur.UpdatedAt = m.tick()
	return nil
}

func (m *memCatalog) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.torrents[id]; !ok {
		return entity.ErrTorrentNotFound
	}
	delete(m.torrents, id)
	for cid, c := range m.comments {
		if c.TorrentID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

func (m *memCatalog) SetAggregate(ctx context.Context, id string, average float64, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.aggregateErr != nil {
		return m.aggregateErr
	}
	t, ok := m.torrents[id]
	if !ok {
		return entity.ErrTorrentNotFound
	}
	t.AverageRating = average
	t.RatingsCount = count
	m.aggregates++
	return nil
}

// commentStore exposes the comment half of memCatalog under the
// CommentRepository method names.
type commentStore struct {
	*memCatalog
}

func (s commentStore) Create(ctx context.Context, c *entity.Comment) error {
	m := s.memCatalog
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	cp.ID = m.nextID("comment")
	cp.Deleted = false
	cp.CreatedAt = m.tick()
	cp.UpdatedAt = cp.CreatedAt
	m.comments[cp.ID] = &cp
	*c = cp
	return nil
}

func (s commentStore) GetActiveByID(ctx context.Context, id string) (*entity.Comment, error) {
	m := s.memCatalog
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok || c.Deleted {
		return nil, entity.ErrCommentNotFound
	}
	cp := *c
	return &cp, nil
}

func (s commentStore) ListActiveByTorrent(ctx context.Context, torrentID string) ([]*entity.Comment, error) {
	m := s.memCatalog
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*entity.Comment
	for _, c := range m.comments {
		if c.TorrentID == torrentID && !c.Deleted {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s commentStore) UpdateFields(ctx context.Context, id string, patch entity.CommentPatch) (*entity.Comment, error) {
	m := s.memCatalog
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok || c.Deleted {
		return nil, entity.ErrCommentNotFound
	}
	if patch.Text != nil {
		c.Text = *patch.Text
	}
	if patch.Rating != nil {
		c.Rating = *patch.Rating
	}
	c.UpdatedAt = m.tick()
	cp := *c
	return &cp, nil
}

func (s commentStore) SoftDelete(ctx context.Context, id string) error {
	m := s.memCatalog
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok || c.Deleted {
		return entity.ErrCommentNotFound
	}
	c.Deleted = true
	c.UpdatedAt = m.tick()
	return nil
}

type memRatingCache struct {
	mu          sync.Mutex
	entries     map[string]entity.RatingSummary
	invalidated []string
}

func newMemRatingCache() *memRatingCache {
	return &memRatingCache{entries: make(map[string]entity.RatingSummary)}
}

func (c *memRatingCache) Get(ctx context.Context, torrentID string) (*entity.RatingSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[torrentID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &s, nil
}

func (c *memRatingCache) Set(ctx context.Context, summary entity.RatingSummary, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[summary.TorrentID] = summary
	return nil
}

func (c *memRatingCache) Invalidate(ctx context.Context, torrentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, torrentID)
	c.invalidated = append(c.invalidated, torrentID)
	return nil
}

type chanNotifier struct {
	events chan queue.Event
	err    error
}

func newChanNotifier() *chanNotifier {
	return &chanNotifier{events: make(chan queue.Event, 8)}
}

func (n *chanNotifier) Publish(ctx context.Context, event queue.Event) error {
	n.events <- event
	return n.err
}

var errStoreDown = errors.New("store unavailable")
