package domain

import "time"

// DefaultSessionTTL is how long a login stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Session represents a time-bounded proof of authentication for one user.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserEmail string    `json:"user_email"`
	UserName  string    `json:"user_name"`
	UserRole  Role      `json:"user_role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// Denormalize copies the user fields a session carries.
func (s *Session) Denormalize(u *User) {
	if s == nil || u == nil {
		return
	}
	s.UserID = u.ID
	s.UserEmail = u.Email
	s.UserName = u.Name
	s.UserRole = u.Role
}

// Principal is a resolved caller: a valid session and its user.
type Principal struct {
	Session *Session `json:"session"`
	User    *User    `json:"user"`
}
