package service

import (
	"fmt"
	"time"

	"github.com/skilllink/marketplace/internal/auth"
	"github.com/skilllink/marketplace/internal/domain"
)

const demoPassword = "123"

var demoReviewers = []string{"Alice", "Bilal", "Chen", "Dana", "Emeka", "Fatima", "Goran"}

// DemoWorkers returns the three seeded workers. Their review histories
// average to the advertised ratings.
func DemoWorkers(bcryptCost int) ([]domain.User, error) {
	hash, err := auth.HashPassword(demoPassword, bcryptCost)
	if err != nil {
		return nil, err
	}

	workers := []domain.User{
		{
			ID: "w1", Name: "John Carpenter", Email: "john@work.com", Balance: 100,
			Category: "Carpenter", Skills: []string{"Furniture Repair", "Woodworking"}, HourlyRate: 45,
			Bio:     "Expert carpenter with 10 years experience.",
			Reviews: seedReviews("w1", 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 4, 4),
		},
		{
			ID: "w2", Name: "Dr. Sarah Smith", Email: "sarah@work.com", Balance: 500,
			Category: "Doctor", Skills: []string{"General Consultation", "Pediatrics"}, HourlyRate: 100,
			Bio:     "Board certified general practitioner.",
			Reviews: seedReviews("w2", repeat(5, 25)...),
		},
		{
			ID: "w3", Name: "Mike Fixit", Email: "mike@work.com", Balance: 50,
			Category: "Mechanic", Skills: []string{"Car Repair", "Oil Change"}, HourlyRate: 60,
			Bio:     "Quick and reliable auto service.",
			Reviews: seedReviews("w3", 5, 5, 4, 4, 3),
		},
	}
	for i := range workers {
		workers[i].Password = hash
		workers[i].Role = domain.RoleWorker
		workers[i].IsAvailable = true
		workers[i].RecomputeRating()
	}
	return workers, nil
}

func seedReviews(workerID string, ratings ...int) []domain.Review {
	base := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	reviews := make([]domain.Review, 0, len(ratings))
	for i, rating := range ratings {
		reviews = append(reviews, domain.Review{
			ID:           fmt.Sprintf("%s-r%d", workerID, i+1),
			ReviewerName: demoReviewers[i%len(demoReviewers)],
			Rating:       rating,
			Date:         base.AddDate(0, 0, 7*i),
		})
	}
	return reviews
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}
