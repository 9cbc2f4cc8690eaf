package entity

import "time"

// RefreshToken is one row of the outstanding-token ledger. The ID doubles as
// the JWT "jti" claim, so revocation checks never need the token string itself.
// A token is blacklisted once RevokedAt is set; re-revoking is a no-op.
type RefreshToken struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Revoked reports whether the token has been blacklisted.
func (t *RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}
