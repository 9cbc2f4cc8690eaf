package entity

import "time"

// OTPPurpose scopes every code lookup; codes issued for one purpose are never
// matched against the other.
type OTPPurpose string

const (
	PurposeEmailVerify   OTPPurpose = "email_verify"
	PurposePasswordReset OTPPurpose = "password_reset"
)

// OTP is one issued challenge code. Records are never deleted: the per-user
// history backs the resend cooldown and hourly cap.
type OTP struct {
	ID           string
	UserID       string
	Email        string
	Purpose      OTPPurpose
	Code         string // 6 digits, leading zeros preserved
	AttemptCount int
	ResendCount  int
	IsVerified   bool
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Expired reports whether the code can no longer be verified at the given time.
func (o *OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// PasswordReset proves a password_reset OTP was verified. It is consumed
// exactly once by the reset-password flow.
type PasswordReset struct {
	ID        string
	UserID    string
	OTPID     string
	TokenHash string
	IsUsed    bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the reset capability has lapsed.
func (p *PasswordReset) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
