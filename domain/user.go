package domain

import (
	"strings"
	"time"
)

// Role enumerates marketplace account kinds.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleBusiness Role = "business"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleBusiness, RoleAdmin:
		return true
	}
	return false
}

// UserStatus enumerates account states.
type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserBlocked UserStatus = "blocked"
	UserPending UserStatus = "pending"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserBlocked, UserPending:
		return true
	}
	return false
}

// BusinessProfile holds the fields only business accounts fill in.
type BusinessProfile struct {
	BusinessName        string `json:"business_name,omitempty"`
	BusinessType        string `json:"business_type,omitempty"`
	BusinessAddress     string `json:"business_address,omitempty"`
	BusinessDescription string `json:"business_description,omitempty"`
}

// User represents an authenticated identity in the marketplace.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	PasswordHash string     `json:"password_hash,omitempty"`
	BusinessProfile
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (u *User) IsBlocked() bool {
	return u != nil && u.Status == UserBlocked
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CanSell reports whether the user may publish listings.
func (u *User) CanSell() bool {
	return u != nil && (u.Role == RoleBusiness || u.Role == RoleAdmin)
}

// DisplayBusinessName is the name denormalized onto listings.
func (u *User) DisplayBusinessName() string {
	if u == nil {
		return ""
	}
	if u.BusinessName != "" {
		return u.BusinessName
	}
	return u.Name
}

// Public strips the credential before the user leaves the core.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// NormalizeEmail is the case-insensitive identity of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
