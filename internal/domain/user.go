package domain

import (
	"math"
	"slices"
	"strings"
)

// Role differentiates the two sides of the marketplace.
type Role string

const (
	RoleSeeker Role = "SEEKER"
	RoleWorker Role = "WORKER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleSeeker || r == RoleWorker
}

// ParseRole normalizes user input into a Role.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	return role, role.Valid()
}

// User is the identity record for both seekers and workers. Worker-only
// fields stay zero for seekers.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role"`
	Balance  int64  `json:"balance"`

	Category    string   `json:"category,omitempty"`
	Skills      []string `json:"skills"`
	HourlyRate  int64    `json:"hourlyRate,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"reviewCount"`
	IsAvailable bool     `json:"isAvailable"`
	Reviews     []Review `json:"reviews"`
}

// IsWorker reports whether the user offers services.
func (u *User) IsWorker() bool {
	return u.Role == RoleWorker
}

// AddReview appends a review and refreshes the cached aggregate fields.
func (u *User) AddReview(review Review) {
	u.Reviews = append(u.Reviews, review)
	u.RecomputeRating()
}

// RecomputeRating derives Rating and ReviewCount from Reviews.
func (u *User) RecomputeRating() {
	u.ReviewCount = len(u.Reviews)
	u.Rating = AverageRating(u.Reviews)
}

// AverageRating is the mean review rating rounded to one decimal, or 0 when
// there are no reviews.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	mean := float64(total) / float64(len(reviews))
	return math.Round(mean*10) / 10
}

// Clone returns a deep copy so callers can mutate without aliasing table rows.
// Nil and empty slices keep their distinction.
func (u User) Clone() User {
	u.Skills = slices.Clone(u.Skills)
	u.Reviews = slices.Clone(u.Reviews)
	return u
}

// Public strips the credential before a user leaves the service boundary.
func (u User) Public() User {
	out := u.Clone()
	out.Password = ""
	return out
}
