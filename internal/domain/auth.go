package domain

import "time"

// Session identifies the acting user for one operation. It is passed
// explicitly instead of being read from shared state.
type Session struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// SessionFor builds a session from a user record.
func SessionFor(u User) Session {
	return Session{UserID: u.ID, Name: u.Name, Role: u.Role}
}

// Token represents issued JWT metadata.
type Token struct {
	Value     string
	SubjectID string
	Role      Role
	ExpiresAt time.Time
}
