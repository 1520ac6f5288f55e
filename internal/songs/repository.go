package songs

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSongNotFound = errors.New("song not found")
	ErrSongExists   = errors.New("song already in catalogue")
)

type Repository interface {
	Create(ctx context.Context, song *Song) error
	Search(ctx context.Context, venueKey, query string, limit int) ([]Song, error)
	Delete(ctx context.Context, venueKey string, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, song *Song) error {
	err := r.db.WithContext(ctx).Create(song).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSongExists
	}
	return err
}

// Search matches title or artist by substring. The trigram indexes created in
// MigrateIndexes keep ILIKE off a sequential scan.
func (r *repository) Search(ctx context.Context, venueKey, query string, limit int) ([]Song, error) {
	var songs []Song

	db := r.db.WithContext(ctx).Where("venue_key = ?", venueKey)
	if query = strings.TrimSpace(query); query != "" {
		term := "%" + escapeLike(query) + "%"
		db = db.Where("title ILIKE ? OR artist ILIKE ?", term, term)
	}

	err := db.Order("LOWER(title) ASC").Limit(limit).Find(&songs).Error
	return songs, err
}

func (r *repository) Delete(ctx context.Context, venueKey string, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("venue_key = ? AND id = ?", venueKey, id).Delete(&Song{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSongNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
