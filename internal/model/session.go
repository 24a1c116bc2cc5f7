package model

import "time"

// Session is the server-side record behind a client's session handle.
type Session struct {
	ID        string
	UserID    string
	Username  string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Identity returns the user identity bound to the session.
func (s *Session) Identity() Identity {
	return Identity{ID: s.UserID, Username: s.Username, Email: s.Email}
}

// Expired reports whether the session is past its absolute expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
