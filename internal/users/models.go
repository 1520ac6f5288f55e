package users

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner Role = "OWNER"
	RoleDJ    Role = "DJ"
)

// User is a venue account. Owners and their DJs share one VenueKey, which
// addresses the venue document.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	VenueName string    `json:"venue_name" gorm:"not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"` // hide in json
	Role      Role      `json:"role" gorm:"not null;default:'OWNER'"`
	VenueKey  string    `json:"venue_key" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func IsValidRole(role string) bool {
	switch role {
	case string(RoleOwner), string(RoleDJ):
		return true
	default:
		return false
	}
}
