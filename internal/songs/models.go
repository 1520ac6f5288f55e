package songs

import (
	"time"

	"github.com/google/uuid"
)

// Song is an entry in a venue's request catalogue. Titles are unique per
// venue and artist, case-insensitively.
type Song struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	VenueKey  string    `json:"venue_key" gorm:"not null;index;size:64"`
	Title     string    `json:"title" gorm:"not null;size:200"`
	Artist    string    `json:"artist" gorm:"size:200"`
	CreatedBy string    `json:"created_by" gorm:"size:64"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (s *Song) ToResponse() SongResponse {
	return SongResponse{
		ID:     s.ID.String(),
		Title:  s.Title,
		Artist: s.Artist,
		Label:  s.Label(),
	}
}

// Label is what a DJ types into the request form
func (s *Song) Label() string {
	if s.Artist == "" {
		return s.Title
	}
	return s.Title + " - " + s.Artist
}

func (Song) TableName() string {
	return "songs"
}
