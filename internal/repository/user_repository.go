package repository

import (
	"context"
	"strings"

	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/persistence"
)

// WorkerFilter narrows the worker directory.
type WorkerFilter struct {
	Category      string
	AvailableOnly bool
}

// UserRepository defines persistence access for seekers and workers.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmailAndRole(ctx context.Context, email string, role domain.Role) (*domain.User, error)
	ListWorkers(ctx context.Context, filter WorkerFilter) ([]domain.User, error)
}

type userRepository struct {
	store *persistence.Store
}

// NewUserRepository returns a Store-backed implementation.
func NewUserRepository(store *persistence.Store) UserRepository {
	return &userRepository{store: store}
}

// Create appends user. Emails are not required to be unique.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.store.Update(ctx, func(t *persistence.Tables) error {
		t.Users = append(t.Users, user.Clone())
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := r.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

// FindByEmailAndRole returns the first user whose email matches
// case-insensitively and whose role equals role.
func (r *userRepository) FindByEmailAndRole(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	users, err := r.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	for i := range users {
		if users[i].Role == role && strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *userRepository) ListWorkers(ctx context.Context, filter WorkerFilter) ([]domain.User, error) {
	users, err := r.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	allCategories := filter.Category == "" || filter.Category == domain.CategoryAll

	result := make([]domain.User, 0, len(users))
	for _, u := range users {
		if !u.IsWorker() {
			continue
		}
		if filter.AvailableOnly && !u.IsAvailable {
			continue
		}
		if !allCategories && u.Category != filter.Category {
			continue
		}
		result = append(result, u)
	}
	return result, nil
}
