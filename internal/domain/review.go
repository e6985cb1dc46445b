package domain

import "time"

const (
	MinReviewRating = 1
	MaxReviewRating = 5
)

// Review is an immutable rating left by a seeker on a worker.
type Review struct {
	ID           string    `json:"id"`
	ReviewerName string    `json:"reviewerName"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	Date         time.Time `json:"date"`
}

// ValidReviewRating reports whether rating is within the star range.
func ValidReviewRating(rating int) bool {
	return rating >= MinReviewRating && rating <= MaxReviewRating
}
