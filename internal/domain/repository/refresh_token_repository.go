package repository

import (
	"context"

	"github.com/ineedllc/ineed-api/internal/domain/entity"
)

// RefreshTokenRepository is the outstanding/blacklisted token ledger. Every
// issued refresh token is recorded here by its jti; revocation is expressed
// by setting revoked_at and is idempotent.
type RefreshTokenRepository interface {
	Create(ctx context.Context, t *entity.RefreshToken) error
	GetByID(ctx context.Context, id string) (*entity.RefreshToken, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}
