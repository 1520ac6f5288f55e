package songs

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"karaoke/internal/shared/constants"
	"karaoke/pkg/cache"
	"karaoke/pkg/logger"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

type Service interface {
	CreateSong(ctx context.Context, venueKey, userID string, req CreateSongRequest) (*SongResponse, error)
	SearchSongs(ctx context.Context, venueKey string, query SongSearchQuery) ([]SongResponse, error)
	DeleteSong(ctx context.Context, venueKey string, id uuid.UUID) error
}

type service struct {
	repo  Repository
	cache cache.Service
	log   *logger.Logger
}

// NewService builds the catalogue service. cacheService may be nil, in
// which case every search goes to the repository.
func NewService(repo Repository, cacheService cache.Service, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{repo: repo, cache: cacheService, log: log}
}

func (s *service) CreateSong(ctx context.Context, venueKey, userID string, req CreateSongRequest) (*SongResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("song title cannot be empty")
	}

	song := &Song{
		ID:        uuid.New(),
		VenueKey:  venueKey,
		Title:     title,
		Artist:    strings.TrimSpace(req.Artist),
		CreatedBy: userID,
	}
	if err := s.repo.Create(ctx, song); err != nil {
		return nil, err
	}

	s.invalidate(ctx, venueKey)
	response := song.ToResponse()
	return &response, nil
}

func (s *service) SearchSongs(ctx context.Context, venueKey string, query SongSearchQuery) ([]SongResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	fetch := func() (interface{}, error) {
		found, err := s.repo.Search(ctx, venueKey, query.Query, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to search songs: %w", err)
		}
		out := make([]SongResponse, 0, len(found))
		for i := range found {
			out = append(out, found[i].ToResponse())
		}
		return out, nil
	}

	if s.cache == nil {
		data, err := fetch()
		if err != nil {
			return nil, err
		}
		return data.([]SongResponse), nil
	}

	var results []SongResponse
	key := constants.BuildSongSearchKey(venueKey, fmt.Sprintf("%d:%s", limit, query.Query))
	if err := s.cache.GetOrSet(ctx, key, constants.TTL_SONGS_SEARCH, fetch, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *service) DeleteSong(ctx context.Context, venueKey string, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, venueKey, id); err != nil {
		return err
	}
	s.invalidate(ctx, venueKey)
	return nil
}

func (s *service) invalidate(ctx context.Context, venueKey string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, constants.BuildSongSearchPattern(venueKey)); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to invalidate song search cache", err, map[string]interface{}{
			"venue_key": venueKey,
		})
	}
}
