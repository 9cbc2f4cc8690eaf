package entity

import "time"

// Role is the three-value access level attached to every account.
type Role string

const (
	RoleUser     Role = "user"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// ValidSignupRole reports whether r may be requested at signup time.
// Admin accounts are only created through the seed bootstrap.
func ValidSignupRole(r Role) bool {
	return r == RoleUser || r == RoleProvider
}

// User is the aggregate root for accounts. Password holds a bcrypt hash.
// A freshly signed-up user is inactive and unverified until the email_verify
// OTP flow completes; the seed bootstrap creates admin users already verified.
type User struct {
	ID              string
	FullName        string
	Email           string
	Role            Role
	Password        string
	ProfileImageURL string
	IsActive        bool
	IsEmailVerified bool
	IsStaff         bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
