package persistence

import "github.com/skilllink/marketplace/internal/domain"

// Tables is the working copy handed to Store.Update callbacks.
type Tables struct {
	Users  []domain.User
	Jobs   []domain.Job
	Ledger []domain.LedgerEntry
}

// User returns a pointer into Users so callers can edit in place.
func (t *Tables) User(id string) *domain.User {
	for i := range t.Users {
		if t.Users[i].ID == id {
			return &t.Users[i]
		}
	}
	return nil
}

// Job returns a pointer into Jobs so callers can edit in place.
func (t *Tables) Job(id string) *domain.Job {
	for i := range t.Jobs {
		if t.Jobs[i].ID == id {
			return &t.Jobs[i]
		}
	}
	return nil
}

// UpsertUser replaces the record with the same ID or appends it.
func (t *Tables) UpsertUser(u domain.User) {
	if existing := t.User(u.ID); existing != nil {
		*existing = u
		return
	}
	t.Users = append(t.Users, u)
}
