package constants

import (
	"strings"
	"time"
)

// Redis cache keys and TTLs.
// Pattern: karaoke:{module}:{operation}:{identifier}:{params?}

const (
	CACHE_PREFIX = "karaoke"
)

// Venue documents. Cached reads are invalidated on every save, so the TTL
// only bounds memory for venues that went idle.
const (
	CACHE_KEY_VENUE_STATE = CACHE_PREFIX + ":venues:state:" // + venue-key

	TTL_VENUE_STATE = 10 * time.Minute
)

// Song catalogue
const (
	CACHE_KEY_SONGS_SEARCH = CACHE_PREFIX + ":songs:search:" // + venue-key:query

	TTL_SONGS_SEARCH = 1 * time.Hour
)

// Rate limiting windows
const (
	CACHE_KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + ip:type
)

func BuildVenueStateKey(venueKey string) string {
	return CACHE_KEY_VENUE_STATE + venueKey
}

func BuildSongSearchKey(venueKey, query string) string {
	return CACHE_KEY_SONGS_SEARCH + venueKey + ":" + strings.ToLower(strings.TrimSpace(query))
}

// BuildSongSearchPattern matches every cached search of one venue
func BuildSongSearchPattern(venueKey string) string {
	return CACHE_KEY_SONGS_SEARCH + venueKey + ":*"
}

func BuildRateLimitKey(clientIP, limitType string) string {
	return CACHE_KEY_RATE_LIMIT + clientIP + ":" + limitType
}
