package repository

import (
	"context"
	"time"

	"github.com/ineedllc/ineed-api/internal/domain/entity"
)

// OTPRepository is the persisted one-time-code ledger. Rows are append-only
// except for the attempt counter and the verified flag; history is retained
// indefinitely so the resend limiter can count past issuances.
type OTPRepository interface {
	Create(ctx context.Context, o *entity.OTP) error

	// FindActive returns the most recently created unverified code for the
	// (user, email, purpose) triple, or nil when none exists. Verified codes
	// and codes for other purposes are never returned.
	FindActive(ctx context.Context, userID, email string, purpose entity.OTPPurpose) (*entity.OTP, error)

	// Latest returns the newest code for the triple regardless of verification
	// state, or nil. Backs the resend cooldown.
	Latest(ctx context.Context, userID, email string, purpose entity.OTPPurpose) (*entity.OTP, error)

	// CountSince returns how many codes were issued for the triple at or after
	// the given instant. Backs the hourly cap.
	CountSince(ctx context.Context, userID, email string, purpose entity.OTPPurpose, since time.Time) (int, error)

	// IncrementAttempts bumps the attempt counter atomically and returns the
	// new value, so concurrent guesses cannot both observe a pre-lockout count.
	IncrementAttempts(ctx context.Context, id string) (int, error)

	MarkVerified(ctx context.Context, id string) error
}

// PasswordResetRepository persists reset capabilities minted when a
// password_reset OTP is verified.
type PasswordResetRepository interface {
	Create(ctx context.Context, r *entity.PasswordReset) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordReset, error)
	MarkUsed(ctx context.Context, id string) error
}
