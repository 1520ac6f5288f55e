package database

import (
	"gorm.io/gorm"
)

// MigrateIndexes adds the indexes AutoMigrate cannot express
func MigrateIndexes(db *gorm.DB) error {
	statements := []string{
		// trigram matching for ILIKE song search
		`CREATE EXTENSION IF NOT EXISTS pg_trgm;`,
		`CREATE INDEX IF NOT EXISTS idx_songs_title_trgm
			ON songs USING GIN (title gin_trgm_ops);`,
		`CREATE INDEX IF NOT EXISTS idx_songs_artist_trgm
			ON songs USING GIN (artist gin_trgm_ops);`,

		// one catalogue entry per title and artist within a venue
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_songs_venue_title_artist
			ON songs (venue_key, LOWER(title), LOWER(artist));`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
