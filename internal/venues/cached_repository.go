package venues

import (
	"context"
	"errors"
	"time"

	"karaoke/internal/session"
	"karaoke/internal/shared/constants"
	"karaoke/pkg/cache"
	"karaoke/pkg/logger"
)

// CachedRepository puts a read-through Redis cache in front of a Store.
// Every save drops the cached document so a reload never sees stale state.
type CachedRepository struct {
	inner  Store
	cache  cache.Service
	ttl    time.Duration
	logger *logger.Logger
}

func NewCachedRepository(inner Store, cacheService cache.Service, ttl time.Duration, log *logger.Logger) *CachedRepository {
	if ttl <= 0 {
		ttl = constants.TTL_VENUE_STATE
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &CachedRepository{inner: inner, cache: cacheService, ttl: ttl, logger: log}
}

func (r *CachedRepository) Load(ctx context.Context, venueKey string) (*session.VenueState, error) {
	key := constants.BuildVenueStateKey(venueKey)

	var cached session.VenueState
	err := r.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.ErrorWithContext(ctx, "venue cache read failed", err, map[string]interface{}{"venue_key": venueKey})
	}

	state, fromBackup, err := r.loadInner(ctx, venueKey)
	if err != nil {
		return nil, err
	}
	// a backup copy is only good until the remote store is back
	if fromBackup {
		return state, nil
	}
	if err := r.cache.Set(ctx, key, state, r.ttl); err != nil {
		r.logger.ErrorWithContext(ctx, "venue cache write failed", err, map[string]interface{}{"venue_key": venueKey})
	}
	return state, nil
}

// sourceLoader is implemented by stores that can serve a backup copy
type sourceLoader interface {
	LoadWithSource(ctx context.Context, venueKey string) (*session.VenueState, bool, error)
}

func (r *CachedRepository) loadInner(ctx context.Context, venueKey string) (*session.VenueState, bool, error) {
	if s, ok := r.inner.(sourceLoader); ok {
		return s.LoadWithSource(ctx, venueKey)
	}
	state, err := r.inner.Load(ctx, venueKey)
	return state, false, err
}

func (r *CachedRepository) Save(ctx context.Context, venueKey string, update session.Update) error {
	err := r.inner.Save(ctx, venueKey, update)
	r.invalidate(ctx, venueKey)
	return err
}

func (r *CachedRepository) CreateVenue(ctx context.Context, venueKey, venueName string) error {
	err := r.inner.CreateVenue(ctx, venueKey, venueName)
	r.invalidate(ctx, venueKey)
	return err
}

func (r *CachedRepository) invalidate(ctx context.Context, venueKey string) {
	if err := r.cache.Delete(ctx, constants.BuildVenueStateKey(venueKey)); err != nil {
		r.logger.ErrorWithContext(ctx, "venue cache invalidation failed", err, map[string]interface{}{"venue_key": venueKey})
	}
}
