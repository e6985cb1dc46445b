package dto

import (
	"time"

	"github.com/skilllink/marketplace/internal/domain"
)

// UserRegisterRequest payload for new accounts.
type UserRegisterRequest struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Password   string      `json:"password"`
	Role       domain.Role `json:"role"`
	Category   string      `json:"category"`
	HourlyRate int64       `json:"hourlyRate"`
	Bio        string      `json:"bio"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionResponse pairs the acting identity with its public profile.
type SessionResponse struct {
	Session domain.Session `json:"session"`
	User    domain.User    `json:"user"`
	Auth    *AuthResponse  `json:"auth,omitempty"`
}

// AvailabilityRequest sets or toggles a worker's availability. Toggle wins
// when both are sent.
type AvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable"`
	Toggle      bool  `json:"toggle"`
}
