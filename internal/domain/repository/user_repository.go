package repository

import (
	"context"
	"errors"

	"github.com/ineedllc/ineed-api/internal/domain/entity"
)

// ErrDuplicateEmail is returned by Create when the email unique constraint
// fires. The pre-insert existence check cannot catch a concurrent writer, so
// callers must handle it on the insert as well.
var ErrDuplicateEmail = errors.New("duplicate email")

// UserRepository defines persistence for account records. Lookups by email
// expect the address already lower-cased by the caller. Single-row lookups
// return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *entity.User) error
	SetVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
