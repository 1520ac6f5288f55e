package songs

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"karaoke/pkg/cache"
	"karaoke/pkg/logger"
)

type fakeRepository struct {
	mu       sync.Mutex
	songs    []Song
	searches int
}

func (r *fakeRepository) Create(_ context.Context, song *Song) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.songs {
		if existing.VenueKey == song.VenueKey &&
			strings.EqualFold(existing.Title, song.Title) &&
			strings.EqualFold(existing.Artist, song.Artist) {
			return ErrSongExists
		}
	}
	r.songs = append(r.songs, *song)
	return nil
}

func (r *fakeRepository) Search(_ context.Context, venueKey, query string, limit int) ([]Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches++
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Song
	for _, s := range r.songs {
		if s.VenueKey != venueKey {
			continue
		}
		if q == "" || strings.Contains(strings.ToLower(s.Title), q) || strings.Contains(strings.ToLower(s.Artist), q) {
			out = append(out, s)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeRepository) Delete(_ context.Context, venueKey string, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.songs {
		if s.VenueKey == venueKey && s.ID == id {
			r.songs = append(r.songs[:i], r.songs[i+1:]...)
			return nil
		}
	}
	return ErrSongNotFound
}

// memoryCache stores JSON like the Redis-backed service does
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	data, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = data
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *memoryCache) Exists(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func (m *memoryCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if err := m.Get(ctx, key, dest); err == nil {
		return nil
	}
	data, err := fetcher()
	if err != nil {
		return err
	}
	if err := m.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	return m.Get(ctx, key, dest)
}

func (m *memoryCache) Ping(context.Context) error { return nil }

func (m *memoryCache) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func TestCreateSongTrimsAndRejectsDuplicates(t *testing.T) {
	svc := NewService(&fakeRepository{}, nil, logger.Discard())
	ctx := context.Background()

	song, err := svc.CreateSong(ctx, "v1", "u1", CreateSongRequest{Title: "  Dancing Queen ", Artist: "ABBA"})
	if err != nil {
		t.Fatalf("CreateSong: %v", err)
	}
	if song.Title != "Dancing Queen" || song.Label != "Dancing Queen - ABBA" {
		t.Errorf("unexpected song %+v", song)
	}

	if _, err := svc.CreateSong(ctx, "v1", "u1", CreateSongRequest{Title: "dancing queen", Artist: "abba"}); !errors.Is(err, ErrSongExists) {
		t.Errorf("expected ErrSongExists, got %v", err)
	}
	if _, err := svc.CreateSong(ctx, "v2", "u2", CreateSongRequest{Title: "Dancing Queen", Artist: "ABBA"}); err != nil {
		t.Errorf("other venues keep their own catalogue, got %v", err)
	}
	if _, err := svc.CreateSong(ctx, "v1", "u1", CreateSongRequest{Title: "   "}); err == nil {
		t.Error("expected error for blank title")
	}
}

func TestSearchSongsUsesCache(t *testing.T) {
	repo := &fakeRepository{}
	mc := newMemoryCache()
	svc := NewService(repo, mc, logger.Discard())
	ctx := context.Background()

	_, _ = svc.CreateSong(ctx, "v1", "u1", CreateSongRequest{Title: "Bohemian Rhapsody", Artist: "Queen"})
	_, _ = svc.CreateSong(ctx, "v1", "u1", CreateSongRequest{Title: "Dancing Queen", Artist: "ABBA"})
	_, _ = svc.CreateSong(ctx, "v1", "u1", CreateSongRequest{Title: "Wonderwall", Artist: "Oasis"})

	for i := 0; i < 3; i++ {
		found, err := svc.SearchSongs(ctx, "v1", SongSearchQuery{Query: "queen"})
		if err != nil {
			t.Fatalf("SearchSongs: %v", err)
		}
		if len(found) != 2 {
			t.Fatalf("expected 2 matches, got %d", len(found))
		}
	}
	if repo.searches != 1 {
		t.Errorf("expected 1 repository search, got %d", repo.searches)
	}

	if _, err := svc.CreateSong(ctx, "v1", "u1", CreateSongRequest{Title: "Killer Queen", Artist: "Queen"}); err != nil {
		t.Fatalf("CreateSong: %v", err)
	}
	if mc.size() != 0 {
		t.Errorf("expected search cache invalidated, %d entries left", mc.size())
	}
	found, _ := svc.SearchSongs(ctx, "v1", SongSearchQuery{Query: "QUEEN"})
	if len(found) != 3 {
		t.Errorf("expected 3 matches after insert, got %d", len(found))
	}
}

func TestSearchSongsClampsLimit(t *testing.T) {
	repo := &fakeRepository{}
	svc := NewService(repo, nil, logger.Discard())
	ctx := context.Background()
	for i := 0; i < 60; i++ {
		repo.songs = append(repo.songs, Song{ID: uuid.New(), VenueKey: "v1", Title: "Song"})
	}

	found, _ := svc.SearchSongs(ctx, "v1", SongSearchQuery{})
	if len(found) != defaultSearchLimit {
		t.Errorf("expected default limit %d, got %d", defaultSearchLimit, len(found))
	}
	found, _ = svc.SearchSongs(ctx, "v1", SongSearchQuery{Limit: 500})
	if len(found) != maxSearchLimit {
		t.Errorf("expected max limit %d, got %d", maxSearchLimit, len(found))
	}
}

func TestDeleteSong(t *testing.T) {
	repo := &fakeRepository{}
	svc := NewService(repo, newMemoryCache(), logger.Discard())
	ctx := context.Background()

	song, _ := svc.CreateSong(ctx, "v1", "u1", CreateSongRequest{Title: "Wonderwall"})
	id := uuid.MustParse(song.ID)

	if err := svc.DeleteSong(ctx, "v2", id); !errors.Is(err, ErrSongNotFound) {
		t.Errorf("expected ErrSongNotFound across venues, got %v", err)
	}
	if err := svc.DeleteSong(ctx, "v1", id); err != nil {
		t.Fatalf("DeleteSong: %v", err)
	}
	if found, _ := svc.SearchSongs(ctx, "v1", SongSearchQuery{}); len(found) != 0 {
		t.Errorf("expected empty catalogue, got %d", len(found))
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`100%_a\b`); got != `100\%\_a\\b` {
		t.Errorf("unexpected escape %q", got)
	}
}
