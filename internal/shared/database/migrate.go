package database

import (
	"karaoke/internal/songs"
	"karaoke/internal/users"
	"karaoke/internal/venues"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&venues.VenueDocument{},
		&songs.Song{},
	)
}
