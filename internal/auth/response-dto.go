package auth

import (
	"time"

	"karaoke/internal/users"
)

// represents the authentication response
type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

// represents user data in responses (without sensitive info)
type UserResponse struct {
	ID        string    `json:"id"`
	VenueName string    `json:"venue_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	VenueKey  string    `json:"venue_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(user *users.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		VenueName: user.VenueName,
		Email:     user.Email,
		Role:      string(user.Role),
		VenueKey:  user.VenueKey,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
